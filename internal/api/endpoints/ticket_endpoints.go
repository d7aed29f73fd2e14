package endpoints

import (
	"net/http"

	"support-desk/internal/database"
	"support-desk/internal/dto"
	ticketsvc "support-desk/internal/service/ticket"
)

type TicketEndpoints interface {
	Create(http.ResponseWriter, *http.Request) error
	Get(http.ResponseWriter, *http.Request) error
	List(http.ResponseWriter, *http.Request) error
	UpdateStatus(http.ResponseWriter, *http.Request) error
}

type ticketEndpoints struct {
	service *ticketsvc.Service
}

func NewTicketEndpoints(db *database.Database) TicketEndpoints {
	return &ticketEndpoints{service: ticketsvc.New(db)}
}

func (h *ticketEndpoints) Create(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreate,
	})
}

func (h *ticketEndpoints) Get(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGet,
	})
}

func (h *ticketEndpoints) List(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *ticketEndpoints) UpdateStatus(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPatch: h.handleUpdateStatus,
	})
}

func (h *ticketEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateTicketRequest
	if err := decodeBody(r, &req, "ticket"); err != nil {
		return err
	}

	ticket, err := h.service.Create(r.Context(), ticketsvc.CreateParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Subject:     req.Subject,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.CreateTicketResponse{
		Success:  true,
		Message:  "Ticket created successfully",
		TicketID: ticket.ID,
	})
}

func (h *ticketEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	ticket, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.TicketEnvelope{Success: true, Ticket: dto.ToTicketResponse(ticket)})
}

func (h *ticketEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	tickets, err := h.service.List(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.TicketListResponse{Success: true, Tickets: dto.ToTicketResponses(tickets)})
}

func (h *ticketEndpoints) handleUpdateStatus(w http.ResponseWriter, r *http.Request) error {
	var req dto.StatusRequest
	if err := decodeBody(r, &req, "ticket status"); err != nil {
		return err
	}

	ticket, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.TicketEnvelope{Success: true, Ticket: dto.ToTicketResponse(ticket)})
}
