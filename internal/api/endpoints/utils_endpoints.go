package endpoints

import (
	"net/http"
	"time"

	"support-desk/internal/dto"
)

type UtilsEndpoints interface {
	Health(http.ResponseWriter, *http.Request) error
}

type utilsEndpoints struct {
	service string
	now     func() time.Time
}

func NewUtilsEndpoints(service string) UtilsEndpoints {
	return &utilsEndpoints{service: service, now: time.Now}
}

func (h *utilsEndpoints) Health(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleHealth,
	})
}

func (h *utilsEndpoints) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Service: h.service,
		Time:    h.now().UTC().Format(time.RFC3339),
	})
}
