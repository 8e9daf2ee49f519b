package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/internal/notify"
	httpapi "savory-orders/notify-svc/internal/api/http"
	"savory-orders/notify-svc/internal/hub"
)

var (
	customerHana = auth.Principal{UserID: "u-1", Email: "hana@example.com", Role: auth.RoleCustomer}
	customerAbel = auth.Principal{UserID: "u-2", Email: "abel@example.com", Role: auth.RoleCustomer}
	adminSara    = auth.Principal{UserID: "admin-1", Email: "sara@example.com", Role: auth.RoleAdmin}
)

type fixture struct {
	server *httptest.Server
	hub    *hub.Hub
	authn  *auth.Authenticator
}

func newFixture(t *testing.T) *fixture {
	lg := logger.NewWithHandler("notify-svc", slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.New(lg)
	go h.Run(ctx)

	f := &fixture{hub: h, authn: auth.NewAuthenticator("test-secret")}
	f.server = httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(h, f.authn, lg)))
	t.Cleanup(func() {
		cancel()
		f.server.Close()
	})
	return f
}

func (f *fixture) token(t *testing.T, p auth.Principal) string {
	tok, err := f.authn.Issue(p, time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *fixture) dial(t *testing.T, orderID string, p auth.Principal) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/orders/" + orderID + "?token=" + f.token(t, p)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// deliverUntilRead keeps publishing until conn sees a message, since the
// subscription registers asynchronously after the handshake.
func deliverUntilRead(t *testing.T, f *fixture, conn *websocket.Conn, update notify.StatusUpdate) notify.StatusUpdate {
	t.Helper()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				f.hub.Deliver(context.Background(), update)
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got notify.StatusUpdate
	require.NoError(t, json.Unmarshal(payload, &got))
	return got
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWatchOrder_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"no token", "/ws/orders/" + uuid.NewString(), http.StatusUnauthorized},
		{"bad token", "/ws/orders/" + uuid.NewString() + "?token=garbage", http.StatusUnauthorized},
		{"malformed order id", "/ws/orders/order-1?token=" + f.token(t, customerHana), http.StatusNotFound},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			url := "ws" + strings.TrimPrefix(f.server.URL, "http") + testCase.path
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, testCase.wantCode, resp.StatusCode)
		})
	}
}

func TestWatchOrder_OwnerReceivesUpdates(t *testing.T) {
	f := newFixture(t)
	orderID := uuid.NewString()
	conn := f.dial(t, orderID, customerHana)

	got := deliverUntilRead(t, f, conn, notify.StatusUpdate{
		OrderID: orderID, UserID: "u-1", OldStatus: "pending", NewStatus: "preparing", ChangedBy: "admin-1",
	})
	assert.Equal(t, "preparing", got.NewStatus)
	assert.Equal(t, orderID, got.OrderID)
}

func TestWatchOrder_AdminSeesAnyOrder(t *testing.T) {
	f := newFixture(t)
	orderID := uuid.NewString()
	conn := f.dial(t, orderID, adminSara)

	got := deliverUntilRead(t, f, conn, notify.StatusUpdate{OrderID: orderID, UserID: "u-1", NewStatus: "ready"})
	assert.Equal(t, "ready", got.NewStatus)
}

func TestWatchOrder_StrangerSeesNothing(t *testing.T) {
	f := newFixture(t)
	orderID := uuid.NewString()
	stranger := f.dial(t, orderID, customerAbel)
	owner := f.dial(t, orderID, customerHana)

	deliverUntilRead(t, f, owner, notify.StatusUpdate{OrderID: orderID, UserID: "u-1", NewStatus: "delivered"})

	require.NoError(t, stranger.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := stranger.ReadMessage()
	assert.Error(t, err)
}

func TestWatchOrder_OtherOrdersAreNotForwarded(t *testing.T) {
	f := newFixture(t)
	watched := uuid.NewString()
	conn := f.dial(t, watched, customerHana)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.hub.Deliver(context.Background(), notify.StatusUpdate{OrderID: uuid.NewString(), UserID: "u-1", NewStatus: "ready"}))
	}
	got := deliverUntilRead(t, f, conn, notify.StatusUpdate{OrderID: watched, UserID: "u-1", NewStatus: "preparing"})
	assert.Equal(t, watched, got.OrderID)
}
