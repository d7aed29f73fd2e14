package router

import (
	"net/http"

	"support-desk/internal/api"
	"support-desk/internal/api/endpoints"
	appointmentsvc "support-desk/internal/service/appointment"
)

// PublicRoutes serves the customer-facing widget.
func PublicRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		var publisher endpoints.RoomPublisher
		if p := s.Publisher(); p != nil {
			publisher = p
		}
		var notifier appointmentsvc.Notifier
		if n := s.Notifier(); n != nil {
			notifier = n
		}

		chatEndpoints := endpoints.NewChatEndpoints(s.Database(), s.Registry(), publisher)
		mux.HandleFunc(prefix+"/chat/request", s.MakeHTTPHandleFunc(chatEndpoints.CreateRequest))
		mux.HandleFunc(prefix+"/chat/{id}", s.MakeHTTPHandleFunc(chatEndpoints.History))

		ticketEndpoints := endpoints.NewTicketEndpoints(s.Database())
		mux.HandleFunc(prefix+"/tickets", s.MakeHTTPHandleFunc(ticketEndpoints.Create))
		mux.HandleFunc(prefix+"/tickets/{id}", s.MakeHTTPHandleFunc(ticketEndpoints.Get))

		appointmentEndpoints := endpoints.NewAppointmentEndpoints(s.Database(), notifier)
		mux.HandleFunc(prefix+"/appointments", s.MakeHTTPHandleFunc(appointmentEndpoints.Book))

		if n := s.Notifier(); n != nil {
			notifyEndpoints := endpoints.NewNotifyEndpoints(n)
			mux.HandleFunc(prefix+"/notify", s.MakeHTTPHandleFunc(notifyEndpoints.Notify))
		}
	}
}
