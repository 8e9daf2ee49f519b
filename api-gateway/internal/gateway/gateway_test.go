package gateway_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"savory-orders/api-gateway/internal/gateway"
	"savory-orders/api-gateway/internal/mocks"
	"savory-orders/internal/logger"
)

var testConfig = gateway.Config{
	MenuSvcURL:      "http://menu-svc",
	RateSvcURL:      "http://rate-svc",
	OrderSvcURL:     "http://order-svc",
	AnalyticsSvcURL: "http://analytics-svc",
	NotifySvcURL:    "http://notify-svc",
}

func newGateway(t *testing.T, cfg gateway.Config, client gateway.HTTPClient) *gateway.Gateway {
	gw, err := gateway.NewGateway(cfg, client, logger.NewWithHandler("api-gateway", slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return gw
}

func okResponse(body string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func TestGateway_HealthCheck(t *testing.T) {
	gw := newGateway(t, testConfig, nil)

	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "api-gateway", body["service"])
}

func TestGateway_Target(t *testing.T) {
	gw := newGateway(t, testConfig, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/api/menu", "http://menu-svc"},
		{"/api/menu/6f1c/availability", "http://menu-svc"},
		{"/api/categories/3", "http://menu-svc"},
		{"/api/uploads", "http://menu-svc"},
		{"/api/admin/menu/rating-fields", "http://menu-svc"},
		{"/uploads/abc.png", "http://menu-svc"},
		{"/api/menu/6f1c/reviews", "http://rate-svc"},
		{"/api/menu/6f1c/reviews/9a", "http://rate-svc"},
		{"/api/reviews", "http://rate-svc"},
		{"/api/reviews/distribution", "http://rate-svc"},
		{"/api/cart/items/6f1c", "http://order-svc"},
		{"/api/checkout", "http://order-svc"},
		{"/api/checkout/pi_1/confirm", "http://order-svc"},
		{"/api/orders/mine", "http://order-svc"},
		{"/api/create-payment-intent", "http://order-svc"},
		{"/api/analytics/sales", "http://analytics-svc"},
		{"/api/menus", ""},
		{"/api/unknown", ""},
		{"/", ""},
	}
	for _, testCase := range tests {
		t.Run(testCase.path, func(t *testing.T) {
			got, ok := gw.Target(testCase.path)
			assert.Equal(t, testCase.want != "", ok)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestGateway_ProxyForwardsRequest(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := newGateway(t, testConfig, client)

	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "http://order-svc/api/orders?status=pending" &&
			req.Header.Get("Authorization") == "Bearer tok" &&
			req.Header.Get(logger.RequestIDHeader) != ""
	})).Return(okResponse(`[{"id":"o-1"}]`), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=pending", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "o-1")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestGateway_UpstreamStatusIsPreserved(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := newGateway(t, testConfig, client)

	client.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusCreated,
		Body:       io.NopCloser(strings.NewReader(`{"id":"r-1"}`)),
		Header:     make(http.Header),
	}, nil).Once()

	rr := httptest.NewRecorder()
	gw.RouteHandler(rr, httptest.NewRequest(http.MethodPost, "/api/menu/6f1c/reviews", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestGateway_UnknownAPI(t *testing.T) {
	gw := newGateway(t, testConfig, nil)

	rr := httptest.NewRecorder()
	gw.RouteHandler(rr, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGateway_ProxyError(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := newGateway(t, testConfig, client)

	client.On("Do", mock.Anything).Return(nil, errors.New("dial tcp: connection refused")).Once()

	rr := httptest.NewRecorder()
	gw.RouteHandler(rr, httptest.NewRequest(http.MethodGet, "/api/menu", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestGateway_WebsocketPassthrough(t *testing.T) {
	upgrader := websocket.Upgrader{}
	notifySvc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"path":"`+r.URL.Path+`"}`))
	}))
	defer notifySvc.Close()

	cfg := testConfig
	cfg.NotifySvcURL = notifySvc.URL
	front := httptest.NewServer(newGateway(t, cfg, nil).SetupRoutes())
	defer front.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(front.URL, "http")+"/ws/orders/o-1", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/ws/orders/o-1"}`, string(payload))
}
