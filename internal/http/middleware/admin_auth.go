package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminTokenIssuer is the issuer admin tokens must carry. Tokens minted for
// other services against the same secret are rejected.
const AdminTokenIssuer = "leadlens"

const adminScope = "admin"

// AdminClaims are the claims an admin token must present: the standard
// registered set plus an explicit scope grant.
type AdminClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// AdminJWT enforces an HMAC-signed JWT with the leadlens issuer and admin
// scope on the admin endpoints.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "admin auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := AdminClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithIssuer(AdminTokenIssuer), jwt.WithExpirationRequired())
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				http.Error(w, "token expired", http.StatusUnauthorized)
				return
			case err != nil, !token.Valid:
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			case claims.Scope != adminScope:
				http.Error(w, "insufficient scope", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaimsFromContext returns the verified admin claims if present.
func AdminClaimsFromContext(ctx context.Context) (AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(AdminClaims)
	return claims, ok
}
