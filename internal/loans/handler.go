// internal/loans/handler.go
package loans

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

// Routes mounts the ledger endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/loans", h.handleRequest)
	r.Get("/loans", h.handleHistory)
	r.Post("/loans/{id}/decision", h.handleDecision)
	r.Post("/loans/{id}/return", h.handleReturn)
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EquipmentID   string `json:"equipo_id"`
		Borrower      string `json:"usuario_prestatario"`
		Role          string `json:"tipo_usuario"`
		LoanDate      string `json:"fecha_prestamo"`
		RequestedDays int    `json:"dias_solicitados"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := h.service.RequestLoan(r.Context(), req.EquipmentID, req.Borrower, req.Role, req.LoanDate, req.RequestedDays)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := h.service.Decide(r.Context(), chi.URLParam(r, "id"), req.Decision)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReturnDate string `json:"fecha_devolucion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := h.service.ReturnLoan(r.Context(), chi.URLParam(r, "id"), req.ReturnDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		EquipmentID: r.URL.Query().Get("equipment_id"),
		Borrower:    r.URL.Query().Get("borrower"),
		Status:      r.URL.Query().Get("status"),
	}

	results, err := h.service.History(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(results)
}

// writeServiceError maps ledger errors to HTTP statuses: validation input is
// a 400, missing records a 404, invariant guards a 409, anything else a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidDays),
		errors.Is(err, ErrInvalidDecision),
		errors.Is(err, ErrReturnBeforeLoan):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEquipmentNotFound), errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEquipmentUnavailable),
		errors.Is(err, ErrActiveLoanExists),
		errors.Is(err, ErrDaysExceedRoleCap),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrNotApproved):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
