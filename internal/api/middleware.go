/**
 * @description
 * Authentication middleware. Requests carry a Supabase-issued JWT in the
 * Authorization header; the token is verified against the project's JWT
 * secret (HS256) and the user id and email claims are injected into the
 * request context under typed keys.
 */
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userIDContextKey contextKey = "supabaseUserID"
const userEmailContextKey contextKey = "supabaseUserEmail"

// SupabaseAuthMiddleware validates Supabase session JWTs and injects the user
// id into context. Tokens must be signed with HS256 using the project secret
// and carry the "authenticated" audience.
func SupabaseAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience("authenticated"),
		jwt.WithLeeway(30*time.Second),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			sub, ok := claims["sub"].(string)
			if !ok || strings.TrimSpace(sub) == "" {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, sub)
			if email, ok := claims["email"].(string); ok && email != "" {
				ctx = context.WithValue(ctx, userEmailContextKey, strings.ToLower(strings.TrimSpace(email)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user id from request context.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

// EmailFromContext returns the authenticated email from request context when
// the token carried one.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailContextKey).(string)
	return email, ok
}

func bearerToken(authHeader string) (string, bool) {
	header := strings.TrimSpace(authHeader)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
