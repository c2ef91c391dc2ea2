package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	observationsapp "parking-core/internal/observations/application"
	observations "parking-core/internal/observations/domain"
)

const timeLayout = time.RFC3339

// Handler provides observation HTTP endpoints: batch ingestion from the
// camera backoffice and a manual reconciliation trigger.
type Handler struct {
	service *observationsapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *observationsapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("observations handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/observations subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/observations":
		h.handleIngest(w, r)
	case "/api/v1/observations/reconcile":
		h.handleReconcile(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type ingestRequest struct {
	Observations []struct {
		License    string `json:"license"`
		Street     string `json:"street"`
		ObservedAt string `json:"observed_at"`
	} `json:"observations"`
}

type ingestResponse struct {
	Ingested int `json:"ingested"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	batch := make([]observationsapp.IngestedObservation, 0, len(req.Observations))
	for _, item := range req.Observations {
		observedAt, err := time.Parse(timeLayout, item.ObservedAt)
		if err != nil {
			http.Error(w, "invalid observed_at", http.StatusBadRequest)
			return
		}
		batch = append(batch, observationsapp.IngestedObservation{
			License:    item.License,
			Street:     item.Street,
			ObservedAt: observedAt,
		})
	}

	count, err := h.service.Ingest(r.Context(), batch)
	if err != nil {
		respondObservationError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ingestResponse{Ingested: count})
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunReconciliation(r.Context())
	if err != nil {
		http.Error(w, "reconcile error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func respondObservationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, observations.ErrEmptyLicense),
		errors.Is(err, observations.ErrEmptyStreet),
		errors.Is(err, observations.ErrZeroInstant):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
