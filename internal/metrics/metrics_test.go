package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestCountersAreExposed(t *testing.T) {
	m := New()
	m.CodeRequested()
	m.CodeRequested()
	m.CodeVerified(OutcomeSuccess)
	m.CodeVerified(OutcomeInvalid)
	m.CodeVerified(OutcomeInvalid)

	body := scrape(t, m)
	for _, want := range []string{
		"tipslap_codes_requested_total 2",
		`tipslap_code_verifications_total{outcome="success"} 1`,
		`tipslap_code_verifications_total{outcome="invalid"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CodeRequested()
	m.CodeVerified(OutcomeError)
}
