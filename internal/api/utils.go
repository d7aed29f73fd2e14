package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"support-desk/internal/api/middleware"
	"support-desk/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *APIServer) corsConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins:   s.deps.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "OPTIONS", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		s.requestQueueManager.EnqueueJob(job)

		if err := <-errc; err != nil {
			writeError(w, err)
		}
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(s.corsConfig()),
		middleware.Logging(),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if len(authMiddleware) > 0 {
			middleware.Chain(baseHandler, authMiddleware...)(w, r)
			return
		}
		baseHandler(w, r)
	}

	return middleware.Chain(finalHandler, middlewares...)
}

func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var httpErr *HTTPError

	switch {
	case errors.As(err, &validationErr):
		if validationErr.ErrorLog != nil {
			log.Println(validationErr.ErrorLog)
		}
		details := validationErr.Errors
		if details == nil {
			details = []string{}
		}
		WriteJSON(w, validationErr.StatusCode, ValidationErrorResponse{
			Success: false,
			Message: validationErr.Message,
			Errors:  details,
		})
	case errors.As(err, &httpErr):
		if httpErr.ErrorLog != nil {
			log.Println(httpErr.ErrorLog)
		}
		WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
	default:
		log.Println(err)
		WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
	}
}
