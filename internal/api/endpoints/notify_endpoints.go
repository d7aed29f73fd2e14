package endpoints

import (
	"errors"
	"log"
	"net/http"

	"support-desk/internal/dto"
	notificationsvc "support-desk/internal/service/notification"
)

type NotifyEndpoints interface {
	Notify(http.ResponseWriter, *http.Request) error
}

type notifyEndpoints struct {
	service *notificationsvc.Service
}

func NewNotifyEndpoints(service *notificationsvc.Service) NotifyEndpoints {
	return &notifyEndpoints{service: service}
}

func (h *notifyEndpoints) Notify(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleNotify,
	})
}

func (h *notifyEndpoints) handleNotify(w http.ResponseWriter, r *http.Request) error {
	var req dto.NotifyRequest
	if err := decodeBody(r, &req, "notify request"); err != nil {
		return err
	}

	result, err := h.service.Notify(r.Context(), notificationsvc.NotifyParams{
		Query:      req.Query,
		UserName:   req.UserName,
		UserEmail:  req.UserEmail,
		Mobile:     req.Mobile,
		Category:   req.Category,
		ForceAlert: req.ForceAlert,
	})
	if err != nil {
		var notifyErr *notificationsvc.Error
		if errors.As(err, &notifyErr) && len(notifyErr.MissingFields) > 0 {
			return WriteJSON(w, http.StatusBadRequest, dto.MissingFieldsResponse{
				Message:       notifyErr.Message,
				MissingFields: notifyErr.MissingFields,
			})
		}
		return serviceError(err)
	}

	for _, sinkErr := range result.SinkErrors {
		log.Printf("[NOTIFY] alert sink: %v", sinkErr)
	}
	if result.OutboxPath != "" {
		log.Printf("[NOTIFY] e-mail queued at %s", result.OutboxPath)
	}

	return WriteJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Notification sent successfully",
	})
}
