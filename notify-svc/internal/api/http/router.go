package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"savory-orders/internal/server"
)

func NewRouter(handler *Handler) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return server.CORS(handler.Log.Middleware(handler.Authn.Middleware(r)))
}
