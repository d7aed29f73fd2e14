package websocket

import "encoding/json"

// AgentsRoom is joined by every agent socket on agent_connect.
const AgentsRoom = "agents"

// Inbound event names.
const (
	EventUserConnect       = "user_connect"
	EventAgentConnect      = "agent_connect"
	EventNewRequest        = "new_request"
	EventRequestHumanAgent = "request_human_agent"
	EventUserRequest       = "user_request"
	EventAcceptRequest     = "accept_request"
	EventJoinChat          = "join_chat"
	EventSendMessage       = "send_message"
	EventChatMessage       = "chat_message"
	EventButtonClick       = "button_click"
	EventTyping            = "typing"
	EventMessageRead       = "message_read"
	EventAgentExitChat     = "agent_exit_chat"
)

// Outbound-only event names.
const (
	EventConnectionAck   = "connection_ack"
	EventPendingRequests = "pending_requests"
	EventRequestCreated  = "request_created"
	EventRequestSaved    = "request_saved"
	EventRequestAccepted = "request_accepted"
	EventChatHistory     = "chat_history"
	EventAgentJoined     = "agent_joined"
	EventReceiveMessage  = "receive_message"
	EventMessageStatus   = "message_status"
	EventAgentLeft       = "agent_left"
	EventChatClosed      = "chat_closed"
	EventError           = "error"
)

// Envelope is the frame exchanged in both directions: {"event": ..., "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

func encodeEnvelope(event string, data interface{}) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Event: event, Data: data})
}

type targetKind int

const (
	targetSocket targetKind = iota
	targetRoom
)

type outbound struct {
	kind   targetKind
	target string
	frame  []byte
}

type membership struct {
	socketID string
	room     string
}

type hubOp struct {
	join  *membership
	frame outbound
}

type userConnectPayload struct {
	UserID string `json:"userId"`
}

type agentConnectPayload struct {
	AgentID string `json:"agentId"`
	Name    string `json:"name"`
}

type newRequestPayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Query  string `json:"query"`
}

type escalationPayload struct {
	UserID string `json:"userId"`
	Query  string `json:"query"`
}

type userRequestPayload struct {
	RequestType string `json:"requestType"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Query       string `json:"query"`
}

type acceptRequestPayload struct {
	RequestID string `json:"requestId"`
	AgentID   string `json:"agentId"`
}

type joinChatPayload struct {
	RequestID string `json:"requestId"`
}

type sendMessagePayload struct {
	ChatID      string `json:"chatId"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
	Query       string `json:"query"`
}

type buttonClickPayload struct {
	ChatID      string `json:"chatId"`
	UserID      string `json:"userId"`
	ButtonValue string `json:"buttonValue"`
}

type typingPayload struct {
	ChatID      string          `json:"chatId"`
	User        json.RawMessage `json:"user"`
	RecipientID string          `json:"recipientId"`
}

type messageReadPayload struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

type agentExitPayload struct {
	ChatID       string `json:"chatId"`
	UserSocketID string `json:"userSocketId"`
	Resolved     bool   `json:"resolved"`
	Reason       string `json:"reason"`
}

type ConnectionAck struct {
	Status   string `json:"status"`
	SocketID string `json:"socketId"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type RequestCreatedEvent struct {
	ChatID    string `json:"chatId"`
	RequestID string `json:"requestId"`
}

type RequestSavedEvent struct {
	RequestID   string `json:"requestId"`
	RequestType string `json:"requestType"`
}

type RequestAcceptedEvent struct {
	RequestID string `json:"requestId"`
	AgentID   string `json:"agentId,omitempty"`
	ChatID    string `json:"chatId"`
}

type MessageEvent struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
	SenderID  string `json:"senderId"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Status    string `json:"status,omitempty"`
}

type MessageStatusEvent struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type TypingEvent struct {
	ChatID    string          `json:"chatId"`
	User      json.RawMessage `json:"user,omitempty"`
	SenderID  string          `json:"senderId"`
	Timestamp string          `json:"timestamp"`
}

type AgentJoinedEvent struct {
	ChatID    string `json:"chatId"`
	AgentID   string `json:"agentId,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type AgentLeftEvent struct {
	ChatID    string `json:"chatId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ChatClosedEvent struct {
	ChatID   string `json:"chatId"`
	Resolved bool   `json:"resolved"`
	Status   string `json:"status"`
}

// NewRequestEvent is broadcast to the agents room whenever a chat request is queued.
type NewRequestEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	SocketID  string `json:"socketId,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Query     string `json:"query"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
