package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tipslap/tipslap/internal/config"
	"github.com/tipslap/tipslap/internal/infra"
	"github.com/tipslap/tipslap/internal/logging"
)

func TestNewServesHealthInDevelopment(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"APP_ENV": "development"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	srv, err := New(cfg, infra.Backends{}, logging.Discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = srv.App().Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if err != nil {
		t.Fatalf("unknown route: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestNewRefusesMissingStoresInProduction(t *testing.T) {
	cfg := config.Config{AppEnv: "production", Port: "3000"}
	if _, err := New(cfg, infra.Backends{}, logging.Discard()); err == nil {
		t.Fatal("expected an error without stores in production")
	}
}
