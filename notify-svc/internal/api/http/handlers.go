package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"savory-orders/internal/apperr"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/notify-svc/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	Hub   *hub.Hub
	Authn *auth.Authenticator
	Log   *logger.Logger
}

func NewHandler(h *hub.Hub, authn *auth.Authenticator, log *logger.Logger) *Handler {
	return &Handler{Hub: h, Authn: authn, Log: log}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/ws/orders/{id}", h.watchOrder).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"service":   "notify-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// principal accepts the bearer header or, for browsers that cannot set
// headers on a websocket handshake, a token query parameter.
func (h *Handler) principal(r *http.Request) (auth.Principal, bool) {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p, true
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		return auth.Principal{}, false
	}
	p, err := h.Authn.Parse(token)
	if err != nil {
		return auth.Principal{}, false
	}
	return p, true
}

// watchOrder streams status updates of one order. Non-admins only receive
// updates for orders they placed.
func (h *Handler) watchOrder(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	orderID, err := uuid.Parse(raw)
	if err != nil {
		apperr.WriteJSON(w, apperr.NotFound("order", raw))
		return
	}
	principal, ok := h.principal(r)
	if !ok {
		apperr.WriteJSON(w, apperr.ErrUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn(r.Context(), "ws_upgrade", err.Error())
		return
	}
	h.Log.Debug(r.Context(), "ws_connected", "watching order",
		slog.String("order_id", orderID.String()), slog.String("user_id", principal.UserID))
	h.Hub.Serve(r.Context(), conn, orderID.String(), principal)
}
