package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"support-desk/internal/api"
	"support-desk/internal/api/middleware"
	adminsvc "support-desk/internal/service/admin"
	agentsvc "support-desk/internal/service/agent"
	appointmentsvc "support-desk/internal/service/appointment"
	chatsvc "support-desk/internal/service/chat"
	notificationsvc "support-desk/internal/service/notification"
	ticketsvc "support-desk/internal/service/ticket"
)

type HTTPError = api.HTTPError

type ApiMessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method not allowed"),
	}
}

func decodeBody(r *http.Request, dst interface{}, what string) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode %s: %w", what, err),
		}
	}
	return nil
}

// callerID returns the id claim the JWT middleware stored on the request.
func callerID(r *http.Request) (string, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.ID == "" {
		return "", &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("no identity on request"),
		}
	}
	return identity.ID, nil
}

// serviceFailure is the part every service error type has in common.
type serviceFailure struct {
	code    string
	message string
	details []string
	cause   error
}

func asServiceFailure(err error) (serviceFailure, bool) {
	var (
		chatErr         *chatsvc.Error
		agentErr        *agentsvc.Error
		adminErr        *adminsvc.Error
		ticketErr       *ticketsvc.Error
		appointmentErr  *appointmentsvc.Error
		notificationErr *notificationsvc.Error
	)

	switch {
	case errors.As(err, &chatErr):
		return serviceFailure{string(chatErr.Code), chatErr.Message, nil, chatErr.Err}, true
	case errors.As(err, &agentErr):
		return serviceFailure{string(agentErr.Code), agentErr.Message, nil, agentErr.Err}, true
	case errors.As(err, &adminErr):
		return serviceFailure{string(adminErr.Code), adminErr.Message, nil, adminErr.Err}, true
	case errors.As(err, &ticketErr):
		return serviceFailure{string(ticketErr.Code), ticketErr.Message, ticketErr.Details, ticketErr.Err}, true
	case errors.As(err, &appointmentErr):
		return serviceFailure{string(appointmentErr.Code), appointmentErr.Message, appointmentErr.Details, appointmentErr.Err}, true
	case errors.As(err, &notificationErr):
		return serviceFailure{string(notificationErr.Code), notificationErr.Message, notificationErr.MissingFields, notificationErr.Err}, true
	}
	return serviceFailure{}, false
}

func serviceError(err error) error {
	if err == nil {
		return nil
	}

	failure, ok := asServiceFailure(err)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("service: %w", err),
		}
	}

	var errorLog error
	if failure.cause != nil {
		errorLog = fmt.Errorf("%s: %w", failure.message, failure.cause)
	} else {
		errorLog = err
	}

	status := http.StatusInternalServerError
	switch failure.code {
	case "validation_error":
		status = http.StatusBadRequest
	case "unauthorized":
		status = http.StatusUnauthorized
	case "forbidden":
		status = http.StatusForbidden
	case "not_found":
		status = http.StatusNotFound
	case "conflict":
		status = http.StatusConflict
	}

	if len(failure.details) > 0 && (status == http.StatusBadRequest || status == http.StatusConflict) {
		// field-level failures always answer 400, duplicates included
		return &api.ValidationError{
			StatusCode: http.StatusBadRequest,
			Message:    failure.message,
			Errors:     failure.details,
			ErrorLog:   errorLog,
		}
	}

	if status == http.StatusInternalServerError {
		return &HTTPError{
			StatusCode: status,
			Message:    "Internal server error",
			ErrorLog:   errorLog,
		}
	}

	return &HTTPError{
		StatusCode: status,
		Message:    failure.message,
		ErrorLog:   errorLog,
	}
}
