package endpoints

import (
	"context"
	"net/http"
	"testing"

	"support-desk/internal/api"
	"support-desk/internal/dto"
	"support-desk/internal/model"
	appointmentsvc "support-desk/internal/service/appointment"
	notificationsvc "support-desk/internal/service/notification"
	ticketsvc "support-desk/internal/service/ticket"
)

type stubNotifier struct {
	booked []model.AppointmentItem
}

func (n *stubNotifier) AppointmentBooked(_ context.Context, appointment model.AppointmentItem) error {
	n.booked = append(n.booked, appointment)
	return nil
}

type stubMailer struct {
	sent []notificationsvc.Email
}

func (m *stubMailer) Send(_ context.Context, email notificationsvc.Email) error {
	m.sent = append(m.sent, email)
	return nil
}

func setupDeskHandler(t *testing.T, notifier appointmentsvc.Notifier, mailer notificationsvc.Mailer) (http.Handler, func()) {
	t.Helper()

	appointments := appointmentsvc.NewWithRepository(appointmentsvc.NewMemoryRepository(), fixedTime)
	appointments.SetNotifier(notifier)

	ticketEndpoints := &ticketEndpoints{service: ticketsvc.NewWithRepository(ticketsvc.NewMemoryRepository(), fixedTime)}
	appointmentEndpoints := &appointmentEndpoints{service: appointments}
	notifyEndpoints := &notifyEndpoints{service: notificationsvc.New(notificationsvc.Options{
		Mailer:   mailer,
		Outbox:   notificationsvc.NewOutbox(t.TempDir(), fixedTime),
		From:     "desk@example.com",
		Receiver: "alerts@example.com",
		Now:      fixedTime,
	})}
	server, cleanup := newTestServer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tickets", server.MakeHTTPHandleFunc(ticketEndpoints.Create))
	mux.HandleFunc("GET /api/tickets", server.MakeHTTPHandleFunc(ticketEndpoints.List))
	mux.HandleFunc("GET /api/tickets/{id}", server.MakeHTTPHandleFunc(ticketEndpoints.Get))
	mux.HandleFunc("PATCH /api/tickets/{id}", server.MakeHTTPHandleFunc(ticketEndpoints.UpdateStatus))
	mux.HandleFunc("POST /api/appointments", server.MakeHTTPHandleFunc(appointmentEndpoints.Book))
	mux.HandleFunc("GET /api/appointments", server.MakeHTTPHandleFunc(appointmentEndpoints.List))
	mux.HandleFunc("/api/appointments/{id}", server.MakeHTTPHandleFunc(appointmentEndpoints.UpdateStatus))
	mux.HandleFunc("/api/notify", server.MakeHTTPHandleFunc(notifyEndpoints.Notify))

	return mux, cleanup
}

func TestTicketEndpoints(t *testing.T) {
	handler, cleanup := setupDeskHandler(t, nil, &stubMailer{})
	defer cleanup()

	created := doJSONRequest[dto.CreateTicketResponse](t, handler, http.MethodPost, "/api/tickets", map[string]string{
		"name":        "Asha Rao",
		"email":       "asha@example.com",
		"phone":       "9876543210",
		"subject":     "Refund",
		"category":    "billing",
		"description": "I was charged twice",
	}, nil, http.StatusCreated)
	if !created.Success || created.TicketID == "" || created.Message != "Ticket created successfully" {
		t.Fatalf("unexpected create response %#v", created)
	}

	invalid := doJSONRequest[api.ValidationErrorResponse](t, handler, http.MethodPost, "/api/tickets", map[string]string{
		"name":  "Asha Rao",
		"email": "nope",
	}, nil, http.StatusBadRequest)
	if invalid.Success || invalid.Message != "Validation failed" || len(invalid.Errors) == 0 {
		t.Fatalf("unexpected validation response %#v", invalid)
	}

	one := doJSONRequest[dto.TicketEnvelope](t, handler, http.MethodGet, "/api/tickets/"+created.TicketID, nil, nil, http.StatusOK)
	if one.Ticket.Subject != "Refund" || one.Ticket.Status != "open" {
		t.Fatalf("unexpected ticket %#v", one.Ticket)
	}

	updated := doJSONRequest[dto.TicketEnvelope](t, handler, http.MethodPatch, "/api/tickets/"+created.TicketID, map[string]string{"status": "resolved"}, nil, http.StatusOK)
	if updated.Ticket.Status != "resolved" {
		t.Fatalf("expected resolved, got %s", updated.Ticket.Status)
	}

	list := doJSONRequest[dto.TicketListResponse](t, handler, http.MethodGet, "/api/tickets", nil, nil, http.StatusOK)
	if !list.Success || len(list.Tickets) != 1 {
		t.Fatalf("unexpected list %#v", list)
	}

	missing := doJSONRequest[ApiMessageResponse](t, handler, http.MethodGet, "/api/tickets/missing", nil, nil, http.StatusNotFound)
	if missing.Message != "Ticket not found" {
		t.Fatalf("unexpected message %q", missing.Message)
	}
}

func TestAppointmentEndpoints(t *testing.T) {
	notifier := &stubNotifier{}
	handler, cleanup := setupDeskHandler(t, notifier, &stubMailer{})
	defer cleanup()

	payload := map[string]string{
		"name":            "Asha Rao",
		"email":           "Asha@Example.com",
		"mobileNumber":    "9876543210",
		"appointmentDate": "2024-03-05",
		"appointmentTime": "9:00",
		"purpose":         "Account review",
	}

	booked := doJSONRequest[dto.BookAppointmentResponse](t, handler, http.MethodPost, "/api/appointments", payload, nil, http.StatusCreated)
	if !booked.Success || booked.Appointment.Email != "asha@example.com" || booked.Appointment.AppointmentTime != "09:00" {
		t.Fatalf("unexpected booking %#v", booked)
	}
	if booked.Message != appointmentsvc.MessageBooked || len(notifier.booked) != 1 {
		t.Fatalf("expected confirmation to be sent, got %q (%d)", booked.Message, len(notifier.booked))
	}

	dup := doJSONRequest[api.ValidationErrorResponse](t, handler, http.MethodPost, "/api/appointments", payload, nil, http.StatusBadRequest)
	if dup.Message != "Duplicate appointment" || len(dup.Errors) != 1 {
		t.Fatalf("unexpected duplicate response %#v", dup)
	}

	past := map[string]string{}
	for k, v := range payload {
		past[k] = v
	}
	past["appointmentDate"] = "2024-02-01"
	pastResp := doJSONRequest[api.ValidationErrorResponse](t, handler, http.MethodPost, "/api/appointments", past, nil, http.StatusBadRequest)
	if pastResp.Message != "Validation failed" || len(pastResp.Errors) != 1 || pastResp.Errors[0] != "Appointment date cannot be in the past" {
		t.Fatalf("unexpected past-date response %#v", pastResp)
	}

	later := map[string]string{}
	for k, v := range payload {
		later[k] = v
	}
	later["appointmentTime"] = "08:15"
	doJSONRequest[dto.BookAppointmentResponse](t, handler, http.MethodPost, "/api/appointments", later, nil, http.StatusCreated)

	list := doJSONRequest[dto.AppointmentListResponse](t, handler, http.MethodGet, "/api/appointments", nil, nil, http.StatusOK)
	if len(list.Appointments) != 2 || list.Appointments[0].AppointmentTime != "08:15" {
		t.Fatalf("expected appointments ordered by time, got %#v", list.Appointments)
	}

	confirmed := doJSONRequest[dto.AppointmentEnvelope](t, handler, http.MethodPatch, "/api/appointments/"+booked.Appointment.ID, map[string]string{"status": "confirmed"}, nil, http.StatusOK)
	if confirmed.Appointment.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", confirmed.Appointment.Status)
	}

	missing := doJSONRequest[ApiMessageResponse](t, handler, http.MethodPatch, "/api/appointments/missing", map[string]string{"status": "confirmed"}, nil, http.StatusNotFound)
	if missing.Message != "Appointment not found" {
		t.Fatalf("unexpected message %q", missing.Message)
	}
}

func TestNotifyEndpoint(t *testing.T) {
	mailer := &stubMailer{}
	handler, cleanup := setupDeskHandler(t, nil, mailer)
	defer cleanup()

	missing := doJSONRequest[dto.MissingFieldsResponse](t, handler, http.MethodPost, "/api/notify", map[string]string{"query": "help"}, nil, http.StatusBadRequest)
	if missing.Message != "Missing required fields" || len(missing.MissingFields) != 2 {
		t.Fatalf("unexpected missing-fields response %#v", missing)
	}

	resp := doJSONRequest[dto.SuccessResponse](t, handler, http.MethodPost, "/api/notify", map[string]interface{}{
		"query":     "Where is my order?",
		"userName":  "Asha Rao",
		"userEmail": "asha@example.com",
		"mobile":    "9876543210",
	}, nil, http.StatusOK)
	if !resp.Success {
		t.Fatalf("unexpected notify response %#v", resp)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "alerts@example.com" {
		t.Fatalf("expected one alert to alerts@example.com, got %#v", mailer.sent)
	}
}
