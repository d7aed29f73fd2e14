package dto

type ChatRequestBody struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Query    string `json:"query"`
}

type ChatRequestResponse struct {
	Success   bool   `json:"success"`
	ChatID    string `json:"chatId"`
	RequestID string `json:"requestId"`
	Message   string `json:"message"`
}

// HistoryMessage is a chat message labelled with the party that sent it.
type HistoryMessage struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	SenderID  string `json:"senderId,omitempty"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

type ChatResponse struct {
	ChatID         string           `json:"chatId"`
	UserID         string           `json:"userId"`
	SocketID       string           `json:"socketId,omitempty"`
	AgentID        string           `json:"agentId,omitempty"`
	Status         string           `json:"status"`
	ResolutionNote string           `json:"resolutionNote,omitempty"`
	Messages       []HistoryMessage `json:"messages"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}

type RequestResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	SocketID  string `json:"socketId,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Query     string `json:"query"`
	Status    string `json:"status"`
	AgentID   string `json:"agentId,omitempty"`
	Timestamp string `json:"timestamp"`
	UpdatedAt string `json:"updatedAt"`
}

// RequestSummary is the queue row shown on the dashboard.
type RequestSummary struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Query     string `json:"query"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ResolvedRequestResponse struct {
	ID             string `json:"id"`
	OriginalID     string `json:"originalId"`
	Type           string `json:"type"`
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Query          string `json:"query"`
	AgentID        string `json:"agentId,omitempty"`
	Status         string `json:"status"`
	ResolutionNote string `json:"resolutionNote,omitempty"`
	Timestamp      string `json:"timestamp"`
	ResolvedAt     string `json:"resolvedAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type StatusRequest struct {
	Status string `json:"status"`
}
