package dto

type AgentResponse struct {
	ID          string   `json:"id"`
	AgentID     string   `json:"agentId"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Status      string   `json:"status"`
	ActiveChats []string `json:"activeChats"`
	LastActive  string   `json:"lastActive,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

type CreateAgentRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateAgentResponse struct {
	Success bool          `json:"success"`
	Agent   AgentResponse `json:"agent"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AgentLoginResponse struct {
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	Agent        AgentResponse `json:"agent"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

type AgentStatsResponse struct {
	Agent       AgentResponse `json:"agent"`
	ActiveChats int           `json:"activeChats"`
	TotalChats  int           `json:"totalChats"`
}

type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
}

type AdminLoginResponse struct {
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	Admin        AdminResponse `json:"admin"`
}

type VerifyTokenResponse struct {
	Valid bool          `json:"valid"`
	Admin AdminResponse `json:"admin"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
