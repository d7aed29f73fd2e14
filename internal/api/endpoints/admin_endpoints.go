package endpoints

import (
	"net/http"

	"support-desk/internal/database"
	"support-desk/internal/dto"
	adminsvc "support-desk/internal/service/admin"
)

type AdminEndpoints interface {
	Login(http.ResponseWriter, *http.Request) error
	VerifyToken(http.ResponseWriter, *http.Request) error
	Refresh(http.ResponseWriter, *http.Request) error
}

type adminEndpoints struct {
	service *adminsvc.Service
}

func NewAdminEndpoints(db *database.Database) AdminEndpoints {
	return &adminEndpoints{service: adminsvc.New(db)}
}

func (h *adminEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *adminEndpoints) VerifyToken(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleVerifyToken,
	})
}

func (h *adminEndpoints) Refresh(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRefresh,
	})
}

func (h *adminEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := decodeBody(r, &req, "admin login"); err != nil {
		return err
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.AdminLoginResponse{
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		Admin:        dto.ToAdminResponse(result.Admin),
	})
}

func (h *adminEndpoints) handleVerifyToken(w http.ResponseWriter, r *http.Request) error {
	adminID, err := callerID(r)
	if err != nil {
		return err
	}

	admin, err := h.service.Verify(r.Context(), adminID)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.VerifyTokenResponse{Valid: true, Admin: dto.ToAdminResponse(admin)})
}

func (h *adminEndpoints) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := decodeBody(r, &req, "admin refresh"); err != nil {
		return err
	}

	token, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.RefreshResponse{Token: token})
}
