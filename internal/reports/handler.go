// internal/reports/handler.go
package reports

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the exporter endpoint on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/reports/loans", h.handleExport)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year  string `json:"anio"`
		Month int    `json:"mes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	export, err := h.service.ExportMonthly(r.Context(), req.Year, req.Month)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMonth):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNoMatchingRecords):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(export)
}
