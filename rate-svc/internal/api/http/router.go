package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"savory-orders/internal/auth"
	"savory-orders/internal/server"
)

func NewRouter(handler *Handler, authn *auth.Authenticator) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return server.CORS(handler.Log.Middleware(authn.Middleware(r)))
}
