package endpoints

import (
	"net/http"

	"support-desk/internal/database"
	"support-desk/internal/dto"
	chatsvc "support-desk/internal/service/chat"
)

type RequestEndpoints interface {
	List(http.ResponseWriter, *http.Request) error
	Pending(http.ResponseWriter, *http.Request) error
	UpdateStatus(http.ResponseWriter, *http.Request) error
	Resolved(http.ResponseWriter, *http.Request) error
}

type requestEndpoints struct {
	service *chatsvc.Service
}

func NewRequestEndpoints(db *database.Database) RequestEndpoints {
	return &requestEndpoints{service: chatsvc.New(db)}
}

func (h *requestEndpoints) List(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *requestEndpoints) Pending(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handlePending,
	})
}

func (h *requestEndpoints) UpdateStatus(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPut: h.handleUpdateStatus,
	})
}

func (h *requestEndpoints) Resolved(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleResolved,
	})
}

func (h *requestEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	requests, err := h.service.ListOpenRequests(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToRequestSummaries(requests))
}

func (h *requestEndpoints) handlePending(w http.ResponseWriter, r *http.Request) error {
	requests, err := h.service.ListPendingRequests(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToRequestSummaries(requests))
}

func (h *requestEndpoints) handleUpdateStatus(w http.ResponseWriter, r *http.Request) error {
	var req dto.StatusRequest
	if err := decodeBody(r, &req, "request status"); err != nil {
		return err
	}

	request, err := h.service.UpdateRequestStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToRequestResponse(request))
}

func (h *requestEndpoints) handleResolved(w http.ResponseWriter, r *http.Request) error {
	items, err := h.service.ListResolved(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToResolvedResponses(items))
}
