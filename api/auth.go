/*
auth.go - JWT authentication middleware

PURPOSE:
  Consumes identity from the external auth subsystem. Tokens carry the user
  id and the user's stored timezone preference; this middleware verifies
  the signature, resolves the zone (falling back to the configured
  default), and stashes an Identity in the request context.

  User registration and token issuance live elsewhere. This service only
  verifies.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// Identity is the authenticated caller, with their timezone resolved.
type Identity struct {
	UserID   uuid.UUID
	Location *time.Location
}

// Claims is the expected token payload.
type Claims struct {
	Timezone string `json:"tz,omitempty"`
	jwt.RegisteredClaims
}

type contextKey struct{}

// identityFrom returns the Identity set by the auth middleware.
func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Authenticator verifies Bearer tokens and injects the caller's Identity.
// defaultLoc applies when the token has no valid timezone claim.
func Authenticator(secret string, defaultLoc *time.Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token", err)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid subject claim", err)
				return
			}

			id := Identity{UserID: userID, Location: defaultLoc}
			if claims.Timezone != "" {
				if loc, err := calendar.LoadLocation(claims.Timezone); err == nil {
					id.Location = loc
				}
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), contextKey{}, id)))
		})
	}
}
