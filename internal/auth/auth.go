// Package auth turns bearer tokens into a Principal and enforces the
// customer and admin capabilities at each service's HTTP boundary.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"savory-orders/internal/apperr"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Issue signs a token; used by tests and local tooling.
func (a *Authenticator) Issue(p Principal, ttl time.Duration) (string, error) {
	claims := &Claims{
		Email: p.Email,
		Name:  p.Name,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) Parse(tokenStr string) (Principal, error) {
	if len(a.secret) == 0 {
		return Principal{}, apperr.ErrUnauthorized
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, errors.Join(apperr.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Principal{}, apperr.ErrUnauthorized
	}
	role := claims.Role
	if role == "" {
		role = RoleCustomer
	}
	return Principal{UserID: claims.Subject, Email: claims.Email, Name: claims.Name, Role: role}, nil
}

// Middleware attaches the Principal when a valid bearer token is present.
// Requests without a token pass through anonymously; a malformed or
// expired token is rejected.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			apperr.WriteJSON(w, apperr.ErrUnauthorized)
			return
		}
		p, err := a.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			apperr.WriteJSON(w, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			apperr.WriteJSON(w, apperr.ErrUnauthorized)
			return
		}
		next(w, r)
	}
}

func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			apperr.WriteJSON(w, apperr.ErrUnauthorized)
			return
		}
		if !p.IsAdmin() {
			apperr.WriteJSON(w, apperr.ErrForbidden)
			return
		}
		next(w, r)
	}
}
