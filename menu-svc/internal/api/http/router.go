package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"savory-orders/internal/auth"
	"savory-orders/internal/server"
)

// NewRouter mounts the API plus the local upload directory, which only
// holds files when no hosted media store is configured.
func NewRouter(handler *Handler, authn *auth.Authenticator, uploadDir string) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))).Methods("GET")
	return server.CORS(handler.Log.Middleware(authn.Middleware(r)))
}
