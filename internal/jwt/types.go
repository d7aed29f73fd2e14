package jwt

type Role int

func (r Role) String() string {
	switch r {
	case RoleAgent:
		return "agent"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// User is the identity carried inside a token.
type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
}
