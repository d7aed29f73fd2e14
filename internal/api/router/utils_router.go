package router

import (
	"net/http"

	"support-desk/internal/api"
	"support-desk/internal/api/endpoints"
)

func UtilsRoutes(prefix, service string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		utilsEndpoints := endpoints.NewUtilsEndpoints(service)
		mux.HandleFunc(prefix+"/health", s.MakeHTTPHandleFunc(utilsEndpoints.Health))
	}
}
