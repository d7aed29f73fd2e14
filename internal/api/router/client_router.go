package router

import (
	"net/http"

	"support-desk/internal/api"
	"support-desk/internal/api/endpoints"
	"support-desk/internal/api/middleware"
)

func AdminRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		adminEndpoints := endpoints.NewAdminEndpoints(s.Database())
		mux.HandleFunc(prefix+"/admin/login", s.MakeHTTPHandleFunc(adminEndpoints.Login))
		mux.HandleFunc(prefix+"/admin/verify-token", s.MakeHTTPHandleFunc(adminEndpoints.VerifyToken, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/admin/refresh", s.MakeHTTPHandleFunc(adminEndpoints.Refresh))
	}
}

func AgentRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		agentEndpoints := endpoints.NewAgentEndpoints(s.Database())
		mux.HandleFunc(prefix+"/agent/login", s.MakeHTTPHandleFunc(agentEndpoints.Login))
		mux.HandleFunc(prefix+"/agent/logout", s.MakeHTTPHandleFunc(agentEndpoints.Logout, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/agent/refresh", s.MakeHTTPHandleFunc(agentEndpoints.Refresh))
		mux.HandleFunc(prefix+"/agent/profile", s.MakeHTTPHandleFunc(agentEndpoints.Profile, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/agent/status", s.MakeHTTPHandleFunc(agentEndpoints.Status, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/agent/chats", s.MakeHTTPHandleFunc(agentEndpoints.Chats, middleware.ValidateAgentJWT))

		mux.HandleFunc(prefix+"/agents", s.MakeHTTPHandleFunc(agentEndpoints.List, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/agent", s.MakeHTTPHandleFunc(agentEndpoints.Create, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/agent/{id}", s.MakeHTTPHandleFunc(agentEndpoints.Delete, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/agent/{id}/password", s.MakeHTTPHandleFunc(agentEndpoints.Password, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/agents/{agentId}/stats", s.MakeHTTPHandleFunc(agentEndpoints.Stats, middleware.ValidateAnyJWT))
	}
}

// DeskRoutes serves the dashboard queues: requests, tickets and appointments.
func DeskRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		requestEndpoints := endpoints.NewRequestEndpoints(s.Database())
		mux.HandleFunc(prefix+"/requests", s.MakeHTTPHandleFunc(requestEndpoints.List, middleware.ValidateAnyJWT))
		mux.HandleFunc(prefix+"/requests/pending", s.MakeHTTPHandleFunc(requestEndpoints.Pending, middleware.ValidateAnyJWT))
		mux.HandleFunc(prefix+"/requests/{id}/status", s.MakeHTTPHandleFunc(requestEndpoints.UpdateStatus, middleware.ValidateAnyJWT))
		mux.HandleFunc(prefix+"/resolved-requests", s.MakeHTTPHandleFunc(requestEndpoints.Resolved, middleware.ValidateAnyJWT))

		ticketEndpoints := endpoints.NewTicketEndpoints(s.Database())
		mux.HandleFunc(prefix+"/tickets", s.MakeHTTPHandleFunc(ticketEndpoints.List, middleware.ValidateAnyJWT))
		mux.HandleFunc(prefix+"/tickets/{id}", s.MakeHTTPHandleFunc(ticketEndpoints.UpdateStatus, middleware.ValidateAnyJWT))

		appointmentEndpoints := endpoints.NewAppointmentEndpoints(s.Database(), nil)
		mux.HandleFunc(prefix+"/appointments", s.MakeHTTPHandleFunc(appointmentEndpoints.List, middleware.ValidateAnyJWT))
		mux.HandleFunc(prefix+"/appointments/{id}", s.MakeHTTPHandleFunc(appointmentEndpoints.UpdateStatus, middleware.ValidateAnyJWT))
	}
}
