package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"savory-orders/analytics-svc/internal/domain"
	"savory-orders/analytics-svc/internal/service"
	"savory-orders/internal/apperr"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
)

const (
	dateLayout   = "2006-01-02"
	defaultRange = 30
)

type Handler struct {
	Analytics service.AnalyticsInterface
	Log       *logger.Logger
	now       func() time.Time
}

func NewHandler(svc service.AnalyticsInterface, log *logger.Logger) *Handler {
	return &Handler{Analytics: svc, Log: log, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/analytics/sales", auth.RequireAdmin(h.getSales)).Methods("GET")
	r.HandleFunc("/api/analytics/popular-items", auth.RequireAdmin(h.getPopularItems)).Methods("GET")
	r.HandleFunc("/api/analytics/customers", auth.RequireAdmin(h.getCustomers)).Methods("GET")
	r.HandleFunc("/api/analytics/status-distribution", auth.RequireAdmin(h.getStatusDistribution)).Methods("GET")
	r.HandleFunc("/api/analytics/recent-orders", auth.RequireAdmin(h.getRecentOrders)).Methods("GET")
	r.HandleFunc("/api/analytics/top-rated", auth.RequireAdmin(h.getTopRated)).Methods("GET")
	r.HandleFunc("/api/analytics/items/{menuItemId}/rating", auth.RequireAdmin(h.getItemRating)).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "analytics-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// dateRange reads from/to as calendar days, to inclusive. Missing bounds
// default to the last 30 days.
func (h *Handler) dateRange(r *http.Request) (domain.DateRange, error) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	to := today
	from := today.AddDate(0, 0, -(defaultRange - 1))

	q := r.URL.Query()
	if raw := q.Get("to"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.DateRange{}, apperr.Validation("to", "to must be a YYYY-MM-DD date")
		}
		to = d
	}
	if raw := q.Get("from"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.DateRange{}, apperr.Validation("from", "from must be a YYYY-MM-DD date")
		}
		from = d
	}
	return domain.DateRange{From: from, To: to.Add(24*time.Hour - time.Nanosecond)}, nil
}

func queryLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

func (h *Handler) getSales(w http.ResponseWriter, r *http.Request) {
	rng, err := h.dateRange(r)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	report, err := h.Analytics.Sales(r.Context(), rng)
	if err != nil {
		h.fail(w, r, "sales_report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) getPopularItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Analytics.PopularItems(r.Context(), r.URL.Query().Get("period"), queryLimit(r))
	if err != nil {
		h.fail(w, r, "popular_items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getCustomers(w http.ResponseWriter, r *http.Request) {
	report, err := h.Analytics.Customers(r.Context(), queryLimit(r))
	if err != nil {
		h.fail(w, r, "customer_report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) getStatusDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.Analytics.StatusDistribution(r.Context())
	if err != nil {
		h.fail(w, r, "status_distribution", err)
		return
	}
	writeJSON(w, http.StatusOK, distribution)
}

func (h *Handler) getRecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Analytics.RecentOrders(r.Context(), queryLimit(r))
	if err != nil {
		h.fail(w, r, "recent_orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getTopRated(w http.ResponseWriter, r *http.Request) {
	items, err := h.Analytics.TopRated(r.Context(), queryLimit(r))
	if err != nil {
		h.fail(w, r, "top_rated", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getItemRating(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["menuItemId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		apperr.WriteJSON(w, apperr.NotFound("menu item", raw))
		return
	}
	stats, err := h.Analytics.ItemRating(r.Context(), id)
	if err != nil {
		h.fail(w, r, "item_rating", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if apperr.StatusCode(err) >= http.StatusInternalServerError {
		h.Log.Error(r.Context(), action, "request failed", err)
	}
	apperr.WriteJSON(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
