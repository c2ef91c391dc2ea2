package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	invoices "parking-core/internal/invoices/domain"
	sessionsapp "parking-core/internal/sessions/application"
	sessions "parking-core/internal/sessions/domain"
)

const timeLayout = time.RFC3339

// Handler provides session HTTP endpoints.
type Handler struct {
	service *sessionsapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *sessionsapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("sessions handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/sessions subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/sessions/start":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStart(w, r)
	case "/api/v1/sessions/stop":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStop(w, r)
	case "/api/v1/sessions/open":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleOpen(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type startRequest struct {
	License string `json:"license"`
	Street  string `json:"street"`
}

type stopRequest struct {
	License string `json:"license"`
}

type sessionPayload struct {
	ID      string  `json:"id"`
	License string  `json:"license"`
	Street  string  `json:"street"`
	StartAt string  `json:"start_at"`
	EndAt   *string `json:"end_at,omitempty"`
}

type invoicePayload struct {
	ID          string `json:"id"`
	IssuedAt    string `json:"issued_at"`
	AmountCents int64  `json:"amount_cents"`
	Paid        bool   `json:"paid"`
}

type stopResponse struct {
	Session sessionPayload  `json:"session"`
	Invoice *invoicePayload `json:"invoice,omitempty"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	session, err := h.service.Start(r.Context(), req.License, req.Street)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	writeJSON(w, toSessionPayload(session))
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.service.Stop(r.Context(), req.License)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	writeJSON(w, stopResponse{
		Session: toSessionPayload(result.Session),
		Invoice: toInvoicePayload(result.Invoice),
	})
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	license := r.URL.Query().Get("license")
	if license == "" {
		http.Error(w, "license is required", http.StatusBadRequest)
		return
	}
	session, err := h.service.Open(r.Context(), license)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	writeJSON(w, toSessionPayload(session))
}

func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessions.ErrNoOpenSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, sessions.ErrOpenSessionExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, sessions.ErrEmptyLicense), errors.Is(err, sessions.ErrEmptyStreet):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toSessionPayload(session sessions.Session) sessionPayload {
	payload := sessionPayload{
		ID:      session.ID,
		License: session.License,
		Street:  session.Street,
		StartAt: session.StartAt.Format(timeLayout),
	}
	if session.EndAt != nil {
		end := session.EndAt.Format(timeLayout)
		payload.EndAt = &end
	}
	return payload
}

func toInvoicePayload(invoice *invoices.Invoice) *invoicePayload {
	if invoice == nil {
		return nil
	}
	return &invoicePayload{
		ID:          invoice.ID,
		IssuedAt:    invoice.IssuedAt.Format(timeLayout),
		AmountCents: invoice.AmountCents,
		Paid:        invoice.Paid,
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
