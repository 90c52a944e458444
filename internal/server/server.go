package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"shoplist/internal/shopping"
	"shoplist/internal/shoppingapi"
)

// Server exposes a shopping.Backend over HTTP under /api.
type Server struct {
	backend shopping.Backend
	key     *shoppingapi.Key
}

// New creates a server. When key is non-nil every /api request must carry a
// bearer token signed with it.
func New(backend shopping.Backend, key *shoppingapi.Key) *Server {
	return &Server{backend: backend, key: key}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/categories", s.listCategories)
	api.HandleFunc("POST /api/categories", s.createCategory)
	api.HandleFunc("GET /api/shopping-lists", s.listShoppingLists)
	api.HandleFunc("POST /api/shopping-lists", s.createShoppingList)
	api.HandleFunc("GET /api/shopping-lists/{id}", s.getShoppingList)
	api.HandleFunc("PUT /api/shopping-lists/{id}", s.updateShoppingList)
	api.HandleFunc("DELETE /api/shopping-lists/{id}", s.deleteShoppingList)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requireToken(api))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	if s.key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := shoppingapi.VerifyToken(raw, *s.key); err != nil {
			log.Printf("Rejected request to %s: %v", r.URL.Path, err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.backend.ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat, err := s.backend.CreateCategory(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) listShoppingLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.backend.ListShoppingLists(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) getShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.GetShoppingList(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createShoppingList(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	list, err := s.backend.CreateShoppingList(r.Context(), sub)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) updateShoppingList(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	list, err := s.backend.UpdateShoppingList(r.Context(), r.PathValue("id"), sub)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) deleteShoppingList(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteShoppingList(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submissionItem accepts both item shapes clients send: the full line item
// with categoryId, and the stored shape with a category reference.
type submissionItem struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Quantity     int    `json:"quantity"`
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (shopping.Submission, bool) {
	var req struct {
		Name  string           `json:"name"`
		Items []submissionItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return shopping.Submission{}, false
	}

	sub := shopping.Submission{Name: req.Name, Items: make([]shopping.LineItem, 0, len(req.Items))}
	for _, it := range req.Items {
		id := it.CategoryID
		if id == "" {
			id = it.Category
		}
		sub.Items = append(sub.Items, shopping.LineItem{
			Name:         it.Name,
			CategoryID:   id,
			CategoryName: it.CategoryName,
			Quantity:     it.Quantity,
		})
	}
	return sub, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shopping.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, shopping.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
