package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/order-svc/internal/domain"
	"savory-orders/order-svc/internal/payment"
	"savory-orders/order-svc/internal/service"
)

type Handler struct {
	Orders   service.OrderServiceInterface
	Checkout service.CheckoutServiceInterface
	Carts    service.CartStore
	Log      *logger.Logger
}

func NewHandler(orders service.OrderServiceInterface, checkout service.CheckoutServiceInterface, carts service.CartStore, log *logger.Logger) *Handler {
	return &Handler{Orders: orders, Checkout: checkout, Carts: carts, Log: log}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/cart", auth.RequireUser(h.getCart)).Methods("GET")
	r.HandleFunc("/api/cart", auth.RequireUser(h.clearCart)).Methods("DELETE")
	r.HandleFunc("/api/cart/items", auth.RequireUser(h.addCartItem)).Methods("POST")
	r.HandleFunc("/api/cart/items/{menuItemId}", auth.RequireUser(h.updateCartItem)).Methods("PUT")
	r.HandleFunc("/api/cart/items/{menuItemId}", auth.RequireUser(h.removeCartItem)).Methods("DELETE")

	r.HandleFunc("/api/checkout", auth.RequireUser(h.initiateCheckout)).Methods("POST")
	r.HandleFunc("/api/checkout/{intentId}/confirm", auth.RequireUser(h.confirmCheckout)).Methods("POST")
	r.HandleFunc("/api/create-payment-intent", auth.RequireUser(h.createPaymentIntent)).Methods("POST")

	r.HandleFunc("/api/orders", auth.RequireAdmin(h.listOrders)).Methods("GET")
	r.HandleFunc("/api/orders/mine", auth.RequireUser(h.listMyOrders)).Methods("GET")
	r.HandleFunc("/api/orders/{id}", auth.RequireUser(h.getOrder)).Methods("GET")
	r.HandleFunc("/api/orders/{id}/history", auth.RequireUser(h.orderHistory)).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", auth.RequireUser(h.orderQRCode)).Methods("GET")
	r.HandleFunc("/api/orders/{id}/status", auth.RequireAdmin(h.updateStatus)).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/payment-status", auth.RequireAdmin(h.updatePaymentStatus)).Methods("PATCH")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// carts are keyed by the signed-in user
func cartSession(r *http.Request) string {
	principal, _ := auth.FromContext(r.Context())
	return principal.UserID
}

func customer(r *http.Request) domain.Customer {
	principal, _ := auth.FromContext(r.Context())
	return domain.Customer{UserID: principal.UserID, Email: principal.Email, Name: principal.Name}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Get(r.Context(), cartSession(r))
	if err != nil {
		h.fail(w, r, "get_cart", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuItemID uuid.UUID `json:"menu_item_id"`
		Quantity   int       `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MenuItemID == uuid.Nil {
		apperr.WriteJSON(w, apperr.Validation("body", "menu_item_id is required"))
		return
	}
	c, err := h.Carts.Add(r.Context(), cartSession(r), req.MenuItemID, req.Quantity)
	if err != nil {
		h.fail(w, r, "add_cart_item", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := pathUUID(w, r, "menuItemId", "menu item")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		apperr.WriteJSON(w, apperr.Validation("quantity", "quantity is required"))
		return
	}
	c, err := h.Carts.UpdateQuantity(r.Context(), cartSession(r), menuItemID, *req.Quantity)
	if err != nil {
		h.fail(w, r, "update_cart_item", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := pathUUID(w, r, "menuItemId", "menu item")
	if !ok {
		return
	}
	c, err := h.Carts.Remove(r.Context(), cartSession(r), menuItemID)
	if err != nil {
		h.fail(w, r, "remove_cart_item", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), cartSession(r)); err != nil {
		h.fail(w, r, "clear_cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) initiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	handle, err := h.Checkout.Initiate(r.Context(), customer(r), cartSession(r), req)
	if err != nil {
		h.fail(w, r, "initiate_checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, handle)
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	order, err := h.Checkout.Confirm(r.Context(), customer(r), mux.Vars(r)["intentId"])
	if err != nil {
		h.fail(w, r, "confirm_checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Validation("amount", "invalid amount"))
		return
	}
	secret, err := h.Checkout.CreatePaymentIntent(r.Context(), req.Amount, req.Currency)
	if errors.Is(err, payment.ErrNotConfigured) {
		h.Log.Error(r.Context(), "create_payment_intent", "stripe secret key is not set", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Stripe is not configured"})
		return
	}
	if err != nil {
		h.fail(w, r, "create_payment_intent", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []domain.Order
		err    error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := domain.ParseStatus(raw)
		if perr != nil {
			apperr.WriteJSON(w, perr)
			return
		}
		orders, err = h.Orders.ListByStatus(r.Context(), status)
	} else {
		orders, err = h.Orders.ListAll(r.Context())
	}
	if err != nil {
		h.fail(w, r, "list_orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	orders, err := h.Orders.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		h.fail(w, r, "list_user_orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// visibleOrder loads the order and checks it belongs to the caller unless
// the caller is an admin.
func (h *Handler) visibleOrder(w http.ResponseWriter, r *http.Request, action string) (*domain.Order, bool) {
	id, ok := pathUUID(w, r, "id", "order")
	if !ok {
		return nil, false
	}
	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, action, err)
		return nil, false
	}
	principal, _ := auth.FromContext(r.Context())
	if !principal.IsAdmin() && order.UserID != principal.UserID {
		apperr.WriteJSON(w, apperr.ErrForbidden)
		return nil, false
	}
	return order, true
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.visibleOrder(w, r, "get_order")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	order, ok := h.visibleOrder(w, r, "order_history")
	if !ok {
		return
	}
	history, err := h.Orders.History(r.Context(), order.ID)
	if err != nil {
		h.fail(w, r, "order_history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) orderQRCode(w http.ResponseWriter, r *http.Request) {
	order, ok := h.visibleOrder(w, r, "order_qrcode")
	if !ok {
		return
	}
	qr, err := h.Orders.QRCode(r.Context(), order.ID)
	if err != nil {
		h.fail(w, r, "order_qrcode", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "order")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	principal, _ := auth.FromContext(r.Context())
	order, err := h.Orders.Transition(r.Context(), id, status, principal.UserID)
	if err != nil {
		h.fail(w, r, "update_order_status", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "order")
	if !ok {
		return
	}
	var req struct {
		PaymentStatus domain.PaymentStatus `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.Validation("body", "invalid JSON payload"))
		return
	}
	if err := h.Orders.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus); err != nil {
		h.fail(w, r, "update_payment_status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payment_status": string(req.PaymentStatus)})
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
