package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"savory-orders/internal/apperr"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/menu-svc/internal/domain"
	"savory-orders/menu-svc/internal/service"
)

type Handler struct {
	Menu       service.MenuServiceInterface
	Categories service.CategoryServiceInterface
	Images     service.ImageServiceInterface
	Log        *logger.Logger
}

func NewHandler(menuSvc service.MenuServiceInterface, categorySvc service.CategoryServiceInterface, imageSvc service.ImageServiceInterface, log *logger.Logger) *Handler {
	return &Handler{
		Menu:       menuSvc,
		Categories: categorySvc,
		Images:     imageSvc,
		Log:        log,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.listMenuItems).Methods("GET")
	r.HandleFunc("/api/menu", auth.RequireAdmin(h.createMenuItem)).Methods("POST")
	r.HandleFunc("/api/menu/{id}", h.getMenuItem).Methods("GET")
	r.HandleFunc("/api/menu/{id}", auth.RequireAdmin(h.updateMenuItem)).Methods("PUT")
	r.HandleFunc("/api/menu/{id}", auth.RequireAdmin(h.deleteMenuItem)).Methods("DELETE")
	r.HandleFunc("/api/menu/{id}/availability", auth.RequireAdmin(h.setAvailability)).Methods("PATCH")
	r.HandleFunc("/api/menu/{id}/image", auth.RequireAdmin(h.uploadMenuItemImage)).Methods("POST")

	r.HandleFunc("/api/categories", h.listCategories).Methods("GET")
	r.HandleFunc("/api/categories", auth.RequireAdmin(h.createCategory)).Methods("POST")
	r.HandleFunc("/api/categories/{id}", auth.RequireAdmin(h.updateCategory)).Methods("PUT")
	r.HandleFunc("/api/categories/{id}", auth.RequireAdmin(h.deleteCategory)).Methods("DELETE")

	r.HandleFunc("/api/uploads", auth.RequireAdmin(h.uploadImage)).Methods("POST")
	r.HandleFunc("/api/admin/menu/rating-fields", auth.RequireAdmin(h.ensureRatingFields)).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "menu-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) listMenuItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.MenuFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if available, err := strconv.ParseBool(q.Get("available")); err == nil {
		filter.AvailableOnly = available
	}

	items, err := h.Menu.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list_menu_items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var input domain.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	item, err := h.Menu.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, "create_menu_item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "menu item")
	if !ok {
		return
	}
	item, err := h.Menu.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_menu_item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "menu item")
	if !ok {
		return
	}
	var input domain.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	item, err := h.Menu.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, "update_menu_item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "menu item")
	if !ok {
		return
	}
	if err := h.Menu.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete_menu_item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "menu item")
	if !ok {
		return
	}
	var body struct {
		Available *bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Available == nil {
		apperr.WriteJSON(w, apperr.Validation("available", "available must be true or false"))
		return
	}
	if err := h.Menu.SetAvailability(r.Context(), id, *body.Available); err != nil {
		h.fail(w, r, "set_availability", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "available": *body.Available})
}

func (h *Handler) uploadMenuItemImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "menu item")
	if !ok {
		return
	}
	url, err := h.receiveImage(w, r)
	if err != nil {
		h.fail(w, r, "upload_menu_item_image", err)
		return
	}
	if err := h.Menu.UpdateImage(r.Context(), id, url); err != nil {
		h.fail(w, r, "upload_menu_item_image", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": url})
}

// uploadImage relays a file to the media store and answers in the
// {success, url} shape the admin UI expects.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	url, err := h.receiveImage(w, r)
	if err != nil {
		if apperr.StatusCode(err) >= http.StatusInternalServerError {
			h.Log.Error(r.Context(), "upload_image", "image upload failed", err)
		}
		writeJSON(w, apperr.StatusCode(err), map[string]interface{}{
			"success": false,
			"error":   apperr.PublicMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "url": url})
}

func (h *Handler) receiveImage(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageSize+(1<<20))
	if err := r.ParseMultipartForm(service.MaxImageSize); err != nil {
		return "", apperr.Validation("file", "image must be 5MB or smaller")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", apperr.Validation("file", "no file uploaded")
	}
	defer file.Close()

	return h.Images.Upload(r.Context(), service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		File:        file,
	})
}

func (h *Handler) ensureRatingFields(w http.ResponseWriter, r *http.Request) {
	n, err := h.Menu.EnsureRatingFields(r.Context())
	if err != nil {
		h.fail(w, r, "ensure_rating_fields", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		h.fail(w, r, "list_categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.MenuCategory
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	if err := h.Categories.Create(r.Context(), &category); err != nil {
		h.fail(w, r, "create_category", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}
	var category domain.MenuCategory
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	category.ID = id
	if err := h.Categories.Update(r.Context(), &category); err != nil {
		h.fail(w, r, "update_category", err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}
	if err := h.Categories.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete_category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if apperr.StatusCode(err) >= http.StatusInternalServerError {
		h.Log.Error(r.Context(), action, "request failed", err)
	}
	apperr.WriteJSON(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
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
