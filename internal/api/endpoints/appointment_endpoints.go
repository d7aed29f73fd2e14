package endpoints

import (
	"log"
	"net/http"

	"support-desk/internal/database"
	"support-desk/internal/dto"
	appointmentsvc "support-desk/internal/service/appointment"
)

type AppointmentEndpoints interface {
	Book(http.ResponseWriter, *http.Request) error
	List(http.ResponseWriter, *http.Request) error
	UpdateStatus(http.ResponseWriter, *http.Request) error
}

type appointmentEndpoints struct {
	service *appointmentsvc.Service
}

// NewAppointmentEndpoints wires the booking service. notifier may be nil, in
// which case bookings succeed without confirmation e-mails.
func NewAppointmentEndpoints(db *database.Database, notifier appointmentsvc.Notifier) AppointmentEndpoints {
	return &appointmentEndpoints{service: appointmentsvc.New(db, notifier)}
}

func (h *appointmentEndpoints) Book(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleBook,
	})
}

func (h *appointmentEndpoints) List(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *appointmentEndpoints) UpdateStatus(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPatch: h.handleUpdateStatus,
	})
}

func (h *appointmentEndpoints) handleBook(w http.ResponseWriter, r *http.Request) error {
	var req dto.BookAppointmentRequest
	if err := decodeBody(r, &req, "appointment"); err != nil {
		return err
	}

	result, err := h.service.Book(r.Context(), appointmentsvc.BookParams{
		Name:    req.Name,
		Email:   req.Email,
		Mobile:  req.MobileNumber,
		Date:    req.AppointmentDate,
		Time:    req.AppointmentTime,
		Purpose: req.Purpose,
	})
	if err != nil {
		return serviceError(err)
	}
	if result.EmailErr != nil {
		log.Printf("[APPOINTMENT] confirmation for %s: %v", result.Appointment.ID, result.EmailErr)
	}

	return WriteJSON(w, http.StatusCreated, dto.BookAppointmentResponse{
		Success:     true,
		Message:     result.Message,
		Appointment: dto.ToAppointmentResponse(result.Appointment),
	})
}

func (h *appointmentEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	appointments, err := h.service.List(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.AppointmentListResponse{
		Success:      true,
		Appointments: dto.ToAppointmentResponses(appointments),
	})
}

func (h *appointmentEndpoints) handleUpdateStatus(w http.ResponseWriter, r *http.Request) error {
	var req dto.StatusRequest
	if err := decodeBody(r, &req, "appointment status"); err != nil {
		return err
	}

	appointment, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.AppointmentEnvelope{
		Success:     true,
		Appointment: dto.ToAppointmentResponse(appointment),
	})
}
