package router

import (
	"net/http"

	"support-desk/internal/api"
)

func WSRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		if h := s.Handler(); h != nil {
			mux.HandleFunc(prefix+"/ws", h.ServeWS)
		}
	}
}
