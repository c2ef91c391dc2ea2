package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	billing "parking-core/internal/billing/domain"
	billingmemory "parking-core/internal/billing/infrastructure/memory"
	invoicesmemory "parking-core/internal/invoices/infrastructure/memory"
	sessionsapp "parking-core/internal/sessions/application"
	sessionsmemory "parking-core/internal/sessions/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	schedule, err := billing.NewSchedule(
		billing.TimeOfDay{Hour: 8},
		billing.TimeOfDay{Hour: 21},
		"UTC",
		time.Sunday,
	)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}
	rates := billingmemory.NewRateRepository()
	rates.Put(billing.Rate{Street: "Hoofdstraat", MinuteCents: 100, FineCents: 9500})

	repo := sessionsmemory.NewSessionRepository(invoicesmemory.NewInvoiceRepository(nil))
	clock := fixedClock{now: time.Date(2023, time.December, 30, 20, 0, 0, 0, time.UTC)}
	service, err := sessionsapp.NewService(repo, rates, schedule, clock, nil, nil)
	if err != nil {
		t.Fatalf("new session service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestSessionHandler_StartOpenStop(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/start",
		strings.NewReader(`{"license":"AB-123-C","street":"Hoofdstraat"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var started sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if started.License != "AB-123-C" || started.EndAt != nil {
		t.Fatalf("unexpected start payload: %+v", started)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/open?license=AB-123-C", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d", resp.Code)
	}
	var open sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&open); err != nil {
		t.Fatalf("decode open response: %v", err)
	}
	if open.ID != started.ID {
		t.Fatalf("open returned session %s, want %s", open.ID, started.ID)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/stop",
		strings.NewReader(`{"license":"AB-123-C"}`))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var stopped stopResponse
	if err := json.NewDecoder(resp.Body).Decode(&stopped); err != nil {
		t.Fatalf("decode stop response: %v", err)
	}
	if stopped.Session.EndAt == nil {
		t.Fatal("stopped session should carry an end instant")
	}
	// Zero elapsed time bills nothing.
	if stopped.Invoice != nil {
		t.Fatalf("expected no invoice for an instant stop, got %+v", stopped.Invoice)
	}
}

func TestSessionHandler_SecondStartConflicts(t *testing.T) {
	handler := newTestHandler(t)

	start := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/start",
			strings.NewReader(`{"license":"AB-123-C","street":"Hoofdstraat"}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp
	}
	if resp := start(); resp.Code != http.StatusOK {
		t.Fatalf("first start: expected 200, got %d", resp.Code)
	}
	if resp := start(); resp.Code != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d", resp.Code)
	}
}

func TestSessionHandler_Errors(t *testing.T) {
	handler := newTestHandler(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"stop without session", http.MethodPost, "/api/v1/sessions/stop", `{"license":"AB-123-C"}`, http.StatusNotFound},
		{"open without session", http.MethodGet, "/api/v1/sessions/open?license=AB-123-C", "", http.StatusNotFound},
		{"start missing street", http.MethodPost, "/api/v1/sessions/start", `{"license":"AB-123-C"}`, http.StatusBadRequest},
		{"start invalid json", http.MethodPost, "/api/v1/sessions/start", `{`, http.StatusBadRequest},
		{"open missing license", http.MethodGet, "/api/v1/sessions/open", "", http.StatusBadRequest},
		{"start wrong method", http.MethodGet, "/api/v1/sessions/start", "", http.StatusMethodNotAllowed},
		{"unknown subroute", http.MethodGet, "/api/v1/sessions/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}
