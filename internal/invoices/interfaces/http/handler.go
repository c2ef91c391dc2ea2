package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	invoicesapp "parking-core/internal/invoices/application"
	invoices "parking-core/internal/invoices/domain"
	"parking-core/internal/invoices/interfaces"
	"parking-core/internal/observability/metrics"
)

const timeLayout = time.RFC3339

// Handler provides invoice HTTP endpoints.
type Handler struct {
	service *invoicesapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *invoicesapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("invoices handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/invoices subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/invoices":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case "/api/v1/invoices/pay":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePay(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type invoicePayload struct {
	ID          string              `json:"id"`
	IssuedAt    string              `json:"issued_at"`
	AmountCents int64               `json:"amount_cents"`
	Paid        bool                `json:"paid"`
	Session     *sessionPayload     `json:"session,omitempty"`
	Observation *observationPayload `json:"observation,omitempty"`
}

type sessionPayload struct {
	License string  `json:"license"`
	Street  string  `json:"street"`
	StartAt string  `json:"start_at"`
	EndAt   *string `json:"end_at,omitempty"`
}

type observationPayload struct {
	License    string `json:"license"`
	Street     string `json:"street"`
	ObservedAt string `json:"observed_at"`
}

type listResponse struct {
	Invoices []invoicePayload `json:"invoices"`
}

type payRequest struct {
	InvoiceID string `json:"invoice_id"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	license := r.URL.Query().Get("license")
	if license == "" {
		http.Error(w, "license is required", http.StatusBadRequest)
		return
	}
	details, err := h.service.ListByLicense(r.Context(), license)
	if err != nil {
		http.Error(w, "list invoices error", http.StatusInternalServerError)
		return
	}
	payloads := make([]invoicePayload, 0, len(details))
	for _, detail := range details {
		payloads = append(payloads, toInvoicePayload(detail))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listResponse{Invoices: payloads})
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.InvoiceID == "" {
		http.Error(w, "invoice_id is required", http.StatusBadRequest)
		return
	}

	err := h.service.Pay(r.Context(), req.InvoiceID)
	if errors.Is(err, invoices.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "pay invoice error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func toInvoicePayload(detail invoices.Detail) invoicePayload {
	payload := invoicePayload{
		ID:          detail.Invoice.ID,
		IssuedAt:    detail.Invoice.IssuedAt.Format(timeLayout),
		AmountCents: detail.Invoice.AmountCents,
		Paid:        detail.Invoice.Paid,
	}
	if detail.Session != nil {
		session := sessionPayload{
			License: detail.Session.License,
			Street:  detail.Session.Street,
			StartAt: detail.Session.StartAt.Format(timeLayout),
		}
		if detail.Session.EndAt != nil {
			end := detail.Session.EndAt.Format(timeLayout)
			session.EndAt = &end
		}
		payload.Session = &session
	}
	if detail.Observation != nil {
		payload.Observation = &observationPayload{
			License:    detail.Observation.License,
			Street:     detail.Observation.Street,
			ObservedAt: detail.Observation.ObservedAt.Format(timeLayout),
		}
	}
	return payload
}

// ExportHandler serves invoice exports in CSV, XLSX and PDF.
type ExportHandler struct {
	service *invoicesapp.Service
	format  string
}

// NewExportHandler constructs an export handler for one format.
func NewExportHandler(service *invoicesapp.Service, format string) (*ExportHandler, error) {
	if service == nil {
		return nil, errors.New("invoices export handler: nil service")
	}
	switch format {
	case "csv", "xlsx", "pdf":
	default:
		return nil, errors.New("invoices export handler: unsupported format " + format)
	}
	return &ExportHandler{service: service, format: format}, nil
}

// ServeHTTP handles GET /api/v1/exports/invoices.{csv,xlsx,pdf}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	license := r.URL.Query().Get("license")
	if license == "" {
		http.Error(w, "license is required", http.StatusBadRequest)
		return
	}

	started := time.Now()
	details, err := h.service.ListByLicense(r.Context(), license)
	if err != nil {
		metrics.ObserveInvoiceExport(h.format, metrics.ResultError, time.Since(started))
		http.Error(w, "list invoices error", http.StatusInternalServerError)
		return
	}

	var payload []byte
	var contentType string
	switch h.format {
	case "csv":
		payload, err = interfaces.BuildInvoicesCSV(license, details)
		contentType = "text/csv"
	case "xlsx":
		payload, err = interfaces.BuildInvoicesXLSX(license, details)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		payload, err = interfaces.BuildInvoicesPDF(license, details)
		contentType = "application/pdf"
	}
	if err != nil {
		metrics.ObserveInvoiceExport(h.format, metrics.ResultError, time.Since(started))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	metrics.ObserveInvoiceExport(h.format, metrics.ResultSuccess, time.Since(started))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.`+h.format+`"`)
	_, _ = w.Write(payload)
}
