// Package guard decides which application region the user may see.
package guard

import "github.com/tipslap/tipslap/internal/session"

// Route names an application region.
type Route int

const (
	// RouteAuth is the phone-number entry point.
	RouteAuth Route = iota
	// RouteCompleteProfile asks for full name and alias.
	RouteCompleteProfile
	// RouteMain is the balance, tipping and history area.
	RouteMain
)

func (r Route) String() string {
	switch r {
	case RouteAuth:
		return "auth"
	case RouteCompleteProfile:
		return "complete-profile"
	case RouteMain:
		return "main"
	default:
		return "unknown"
	}
}

// Decide maps the current session state to a route. It is recomputed on every
// call; callers must not cache the result across session changes.
func Decide(store session.Store) Route {
	s, ok := store.Get()
	switch {
	case !ok:
		return RouteAuth
	case !s.Complete():
		return RouteCompleteProfile
	default:
		return RouteMain
	}
}
