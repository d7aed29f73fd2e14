package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"support-desk/utils"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	// MaxAge caches preflight answers in the browser, in seconds. Zero omits the header.
	MaxAge int
}

// CORS answers preflight requests itself. Unknown origins get 403 on
// preflight; other requests still run but carry no CORS headers.
func CORS(config CORSConfig) Middleware {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowed := config.allowedOrigin(r.Header.Get("Origin"))
			h := w.Header()
			h.Add("Vary", "Origin")

			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				if config.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}

			if r.Method != http.MethodOptions {
				f(w, r)
				return
			}
			if allowed == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when
// origin is not accepted. Credentialed requests never get a literal "*".
func (c CORSConfig) allowedOrigin(origin string) string {
	if origin == "" || !utils.OriginAllowed(c.AllowedOrigins, origin) {
		return ""
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" && !c.AllowCredentials {
			return "*"
		}
	}
	return origin
}
