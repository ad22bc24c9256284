package guard

import (
	"testing"

	"github.com/tipslap/tipslap/internal/session"
)

func TestDecide(t *testing.T) {
	store := session.NewMemoryStore()
	if got := Decide(store); got != RouteAuth {
		t.Fatalf("expected auth route, got %s", got)
	}

	store.Set(session.Session{ID: "u1", Credential: "tok"}.WithProfileComplete(false))
	if got := Decide(store); got != RouteCompleteProfile {
		t.Fatalf("expected complete-profile route, got %s", got)
	}

	store.Set(session.Session{ID: "u1", Credential: "tok", Alias: "@abc", DisplayName: "x"})
	if got := Decide(store); got != RouteMain {
		t.Fatalf("expected main route, got %s", got)
	}
}

func TestLogoutRedirectsToAuth(t *testing.T) {
	store := session.NewMemoryStore()
	store.Set(session.Session{ID: "u1", Credential: "tok", Alias: "@abc", DisplayName: "x"})

	var routes []Route
	store.Subscribe(func() { routes = append(routes, Decide(store)) })

	store.Clear()
	if session.IsAuthenticated(store) {
		t.Fatal("expected logged out")
	}
	if len(routes) != 1 || routes[0] != RouteAuth {
		t.Fatalf("expected redirect to auth, got %v", routes)
	}
}
