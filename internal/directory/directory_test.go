package directory

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/tipslap/tipslap/internal/api"
	"github.com/tipslap/tipslap/internal/api/apitest"
	"github.com/tipslap/tipslap/internal/logging"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/profile"
	"github.com/tipslap/tipslap/internal/session"
)

func newService(t *testing.T) (*Service, *apitest.Server, *session.MemoryStore, *notification.Recorder) {
	t.Helper()
	fake := apitest.New(t)
	client := api.NewClient(fake.URL, fake.Client(), logging.Discard())
	store := session.NewMemoryStore()
	rec := &notification.Recorder{}
	return NewService(client, store, rec, logging.Discard()), fake, store, rec
}

func TestSearchMapsProfiles(t *testing.T) {
	svc, fake, store, _ := newService(t)
	store.Set(session.Session{ID: "me", Credential: "tok"})
	fake.On("GET /users/search", http.StatusOK, map[string]any{"data": []map[string]any{
		{"id": "u1", "alias": "stacy", "fullName": "Stacy Menken", "avatarUrl": "https://cdn/x.png"},
		{"id": "u2", "alias": "cbrendler", "fullName": "Chris Brendler"},
	}})

	workers, err := svc.Search(context.Background(), " stacy ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(workers))
	}
	if workers[0] != (Worker{ID: "u1", Name: "Stacy Menken", Username: "@stacy", Avatar: "https://cdn/x.png"}) {
		t.Fatalf("unexpected worker %+v", workers[0])
	}

	req := fake.RequestsTo("GET /users/search")[0]
	if req.RawQuery != "limit=20&q=stacy" {
		t.Fatalf("unexpected query %q", req.RawQuery)
	}
	if req.Authorization != "Bearer tok" {
		t.Fatalf("unexpected authorization %q", req.Authorization)
	}
}

func TestSearchBlankQuerySkipsRemote(t *testing.T) {
	svc, fake, store, _ := newService(t)
	store.Set(session.Session{ID: "me", Credential: "tok"})

	workers, err := svc.Search(context.Background(), "   ")
	if err != nil || len(workers) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", workers, err)
	}
	if len(fake.Requests()) != 0 {
		t.Fatal("blank query must not reach the remote")
	}
}

func TestSearchRequiresSession(t *testing.T) {
	svc, _, _, _ := newService(t)
	if _, err := svc.Search(context.Background(), "jane"); !errors.Is(err, profile.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSearchFailureNotifies(t *testing.T) {
	svc, fake, store, rec := newService(t)
	store.Set(session.Session{ID: "me", Credential: "tok"})
	fake.On("GET /users/search", http.StatusInternalServerError, nil)

	if _, err := svc.Search(context.Background(), "jane"); err == nil {
		t.Fatal("expected error")
	}
	if msg, _ := rec.Last(); msg.Body != "Failed to search users" {
		t.Fatalf("unexpected notification %+v", msg)
	}
}

func TestParseTipURL(t *testing.T) {
	alias, err := ParseTipURL("tipslap://tip/@dknoern")
	if err != nil || alias != "@dknoern" {
		t.Fatalf("unexpected result %q (%v)", alias, err)
	}
	if alias, err := ParseTipURL("  tipslap://tip/@dknoern\n"); err != nil || alias != "@dknoern" {
		t.Fatalf("surrounding whitespace must be ignored, got %q (%v)", alias, err)
	}
	for _, bad := range []string{
		"",
		"https://example.com/@x",
		"tipslap://tip/dknoern",
		"tipslap://tip/@",
		"xyz tipslap://tip/@abc",
		"https://evil.example/?next=tipslap://tip/@abc",
		"tipslap://tip/@abc/extra",
		"tipslap://tip/@abc.def",
	} {
		if _, err := ParseTipURL(bad); !errors.Is(err, ErrInvalidQR) {
			t.Fatalf("ParseTipURL(%q) expected ErrInvalidQR, got %v", bad, err)
		}
	}
}

func TestTipURLRoundTrip(t *testing.T) {
	url := TipURL("jgalloway")
	if url != "tipslap://tip/@jgalloway" {
		t.Fatalf("unexpected url %q", url)
	}
	alias, err := ParseTipURL(url)
	if err != nil || alias != "@jgalloway" {
		t.Fatalf("unexpected alias %q (%v)", alias, err)
	}
}
