// internal/equipment/handler.go
package equipment

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

// Routes mounts the registry endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/equipment", h.handleRegister)
	r.Get("/equipment", h.handleList)
	r.Get("/equipment/{id}", h.handleGet)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"equipo_id"`
		Name        string `json:"nombre_equipo"`
		Category    string `json:"categoria"`
		Description string `json:"descripcion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Name == "" {
		http.Error(w, "equipo_id and nombre_equipo are required", http.StatusBadRequest)
		return
	}

	eq, err := h.service.Register(r.Context(), req.ID, req.Name, req.Category, req.Description)
	if err != nil {
		if errors.Is(err, ErrDuplicateID) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(eq)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	eq, err := h.service.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(eq)
}
