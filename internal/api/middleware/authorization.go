package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	internaljwt "support-desk/internal/jwt"

	"github.com/golang-jwt/jwt"
)

type claimsKey struct{}

// Identity is the authenticated caller a validated token describes.
type Identity struct {
	ID       string
	Username string
	Name     string
	Role     internaljwt.Role
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func ValidateMultipleJWTMiddleware(roles ...internaljwt.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				unauthorized(w, "Unauthorized")
				return
			}

			claims, role, err := internaljwt.ParseAnyToken(tokenString, roles...)
			if err != nil {
				unauthorized(w, "Unauthorized")
				return
			}

			expires, ok := claims["exp"].(float64)
			if !ok || time.Now().Unix() > int64(expires) {
				unauthorized(w, "Token expired")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, identityFrom(claims, role))
			next(w, r.WithContext(ctx))
		}
	}
}

func ValidateJWTMiddleware(role internaljwt.Role) Middleware {
	return ValidateMultipleJWTMiddleware(role)
}

func identityFrom(claims jwt.MapClaims, role internaljwt.Role) Identity {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return Identity{
		ID:       str("id"),
		Username: str("username"),
		Name:     str("name"),
		Role:     role,
	}
}

// IdentityFromContext returns the caller stored by the JWT middlewares.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(claimsKey{}).(Identity)
	return identity, ok
}

var ValidateAgentJWT = ValidateJWTMiddleware(internaljwt.RoleAgent)
var ValidateAdminJWT = ValidateJWTMiddleware(internaljwt.RoleAdmin)
var ValidateAnyJWT = ValidateMultipleJWTMiddleware(internaljwt.RoleAgent, internaljwt.RoleAdmin)
