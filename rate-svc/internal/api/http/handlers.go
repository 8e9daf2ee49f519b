package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"savory-orders/internal/apperr"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/rate-svc/internal/domain"
	"savory-orders/rate-svc/internal/service"
)

type Handler struct {
	Reviews service.ReviewServiceInterface
	Log     *logger.Logger
}

func NewHandler(reviews service.ReviewServiceInterface, log *logger.Logger) *Handler {
	return &Handler{Reviews: reviews, Log: log}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu/{menuItemId}/reviews", h.getMenuItemReviews).Methods("GET")
	r.HandleFunc("/api/menu/{menuItemId}/reviews", auth.RequireUser(h.submitReview)).Methods("POST")
	r.HandleFunc("/api/menu/{menuItemId}/reviews/{reviewId}", auth.RequireAdmin(h.removeReview)).Methods("DELETE")

	r.HandleFunc("/api/reviews", auth.RequireAdmin(h.listAllReviews)).Methods("GET")
	r.HandleFunc("/api/reviews/mine", auth.RequireUser(h.listMyReviews)).Methods("GET")
	r.HandleFunc("/api/reviews/distribution", auth.RequireAdmin(h.ratingDistribution)).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "rate-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := pathUUID(w, r, "menuItemId", "menu item")
	if !ok {
		return
	}
	var input domain.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}

	principal, _ := auth.FromContext(r.Context())
	author := domain.Author{UserID: principal.UserID, Name: principal.Name, Email: principal.Email}

	result, err := h.Reviews.Submit(r.Context(), menuItemID, author, input)
	if err != nil {
		h.fail(w, r, "submit_review", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) getMenuItemReviews(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := pathUUID(w, r, "menuItemId", "menu item")
	if !ok {
		return
	}
	reviews, err := h.Reviews.ListForMenuItem(r.Context(), menuItemID)
	if err != nil {
		h.fail(w, r, "list_menu_item_reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) removeReview(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := pathUUID(w, r, "menuItemId", "menu item")
	if !ok {
		return
	}
	reviewID, ok := pathUUID(w, r, "reviewId", "review")
	if !ok {
		return
	}
	agg, err := h.Reviews.Remove(r.Context(), reviewID, menuItemID)
	if err != nil {
		h.fail(w, r, "remove_review", err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *Handler) listAllReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, "list_reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) listMyReviews(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	reviews, err := h.Reviews.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		h.fail(w, r, "list_user_reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) ratingDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.Reviews.Distribution(r.Context())
	if err != nil {
		h.fail(w, r, "rating_distribution", err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if apperr.StatusCode(err) >= http.StatusInternalServerError {
		h.Log.Error(r.Context(), action, "request failed", err)
	}
	apperr.WriteJSON(w, err)
}

func pathUUID(w http.ResponseWriter, r *http.Request, key, resource string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[key]
	id, err := uuid.Parse(raw)
	if err != nil {
		apperr.WriteJSON(w, apperr.NotFound(resource, raw))
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
