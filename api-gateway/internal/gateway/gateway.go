package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"savory-orders/internal/apperr"
	"savory-orders/internal/logger"
	"savory-orders/internal/server"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	MenuSvcURL      string
	RateSvcURL      string
	OrderSvcURL     string
	AnalyticsSvcURL string
	NotifySvcURL    string
}

type Gateway struct {
	config Config
	client HTTPClient
	ws     http.Handler
	log    *logger.Logger
}

func NewGateway(config Config, client HTTPClient, log *logger.Logger) (*Gateway, error) {
	target, err := url.Parse(config.NotifySvcURL)
	if err != nil {
		return nil, fmt.Errorf("notify-svc url: %w", err)
	}
	return &Gateway{
		config: config,
		client: client,
		ws:     httputil.NewSingleHostReverseProxy(target),
		log:    log,
	}, nil
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":    "healthy",
		"service":   "api-gateway",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Target picks the service that owns path. Review routes nested under a
// menu item belong to rate-svc, so they are matched before the menu prefix.
func (g *Gateway) Target(path string) (string, bool) {
	switch {
	case strings.HasPrefix(path, "/api/reviews"),
		strings.HasPrefix(path, "/api/menu/") && strings.Contains(path, "/reviews"):
		return g.config.RateSvcURL, true
	case hasSegmentPrefix(path, "/api/menu"),
		hasSegmentPrefix(path, "/api/categories"),
		hasSegmentPrefix(path, "/api/uploads"),
		hasSegmentPrefix(path, "/api/admin/menu"),
		strings.HasPrefix(path, "/uploads/"):
		return g.config.MenuSvcURL, true
	case hasSegmentPrefix(path, "/api/cart"),
		hasSegmentPrefix(path, "/api/orders"),
		hasSegmentPrefix(path, "/api/checkout"),
		path == "/api/create-payment-intent":
		return g.config.OrderSvcURL, true
	case hasSegmentPrefix(path, "/api/analytics"):
		return g.config.AnalyticsSvcURL, true
	}
	return "", false
}

// hasSegmentPrefix matches prefix as whole path segments, so /api/menu
// does not capture /api/menus.
func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	g.log.Debug(r.Context(), "proxy", r.Method+" "+r.URL.Path, slog.String("target", targetURL))

	upstream := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		upstream += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream, r.Body)
	if err != nil {
		g.log.Error(r.Context(), "proxy_request", "failed to build upstream request", err)
		apperr.WriteJSON(w, err)
		return
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	if id := logger.RequestID(r.Context()); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error(r.Context(), "proxy_upstream", "upstream unreachable", err, slog.String("target", targetURL))
		apperr.WriteJSON(w, apperr.External(targetURL, err))
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		g.log.Warn(r.Context(), "proxy_copy", err.Error())
	}
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := g.Target(r.URL.Path)
	if !ok {
		g.log.Debug(r.Context(), "route_unmatched", r.URL.Path)
		apperr.WriteJSON(w, apperr.NotFound("route", r.URL.Path))
		return
	}
	g.ProxyRequest(w, r, target)
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/ws/").Handler(g.ws)
	r.PathPrefix("/").HandlerFunc(g.RouteHandler)
	return server.CORS(g.log.Middleware(r))
}
