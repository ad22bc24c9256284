// Package apitest provides a scriptable stand-in for the remote API.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is one call received by the fake.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          []byte
}

// Reply is the canned answer for a route.
type Reply struct {
	Status int
	Body   any
}

// Server is an httptest server answering from per-route queues.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string][]Reply
	requests []Request
}

// New starts a fake and registers its shutdown with t.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{replies: make(map[string][]Reply)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// On queues a reply for "METHOD /path". The last queued reply repeats once the queue drains.
func (s *Server) On(route string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[route] = append(s.replies[route], Reply{Status: status, Body: body})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests received for "METHOD /path".
func (s *Server) RequestsTo(route string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method+" "+r.Path == route {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	route := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	queue := s.replies[route]
	var reply Reply
	found := len(queue) > 0
	if found {
		reply = queue[0]
		if len(queue) > 1 {
			s.replies[route] = queue[1:]
		}
	}
	s.mu.Unlock()

	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no route"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	switch b := reply.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(b))
	default:
		_ = json.NewEncoder(w).Encode(b)
	}
}
