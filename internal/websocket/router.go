package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"support-desk/internal/dto"
	"support-desk/internal/model"
	"support-desk/internal/presence"
	"support-desk/internal/service/agent"
	"support-desk/internal/service/chat"
)

const (
	defaultDeliveryDelay = 2 * time.Second
	callbackTimeout      = 5 * time.Second

	agentJoinedMessage = "Agent joined the chat"
	resolvedMessage    = "The agent has marked your issue as resolved. Thank you for chatting with us!"
	leftMessageFormat  = "The agent has left the chat. Reason: %s"
)

type RouterConfig struct {
	Chat     *chat.Service
	Agents   *agent.Service
	Registry presence.Registry
	Emitter  Emitter
	// DeliveryDelay is how long a sent message waits before it is marked delivered.
	DeliveryDelay time.Duration
	Now           func() time.Time
}

// Router runs the chat lifecycle for inbound socket events.
type Router struct {
	chat          *chat.Service
	agents        *agent.Service
	registry      presence.Registry
	emitter       Emitter
	deliveryDelay time.Duration
	now           func() time.Time
	timers        *timerSet
	handlers      map[string]eventHandler
}

type eventHandler func(ctx context.Context, socketID string, data json.RawMessage) error

// eventError carries the message shown to the client next to the cause that gets logged.
type eventError struct {
	message string
	err     error
}

func (e *eventError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *eventError) Unwrap() error {
	return e.err
}

func fail(message string, err error) error {
	return &eventError{message: message, err: err}
}

// serviceFailure keeps the service's own message unless it is an internal error.
func serviceFailure(err error, fallback string) error {
	var chatErr *chat.Error
	if errors.As(err, &chatErr) && chatErr.Code != chat.ErrorCodeInternal {
		return fail(chatErr.Message, err)
	}
	var agentErr *agent.Error
	if errors.As(err, &agentErr) && agentErr.Code != agent.ErrorCodeInternal {
		return fail(agentErr.Message, err)
	}
	return fail(fallback, err)
}

func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		chat:          cfg.Chat,
		agents:        cfg.Agents,
		registry:      cfg.Registry,
		emitter:       cfg.Emitter,
		deliveryDelay: cfg.DeliveryDelay,
		now:           cfg.Now,
		timers:        newTimerSet(),
	}
	if r.deliveryDelay <= 0 {
		r.deliveryDelay = defaultDeliveryDelay
	}
	if r.now == nil {
		r.now = time.Now
	}

	r.handlers = map[string]eventHandler{
		EventUserConnect:       r.userConnect,
		EventAgentConnect:      r.agentConnect,
		EventNewRequest:        r.newRequest,
		EventRequestHumanAgent: r.requestHumanAgent,
		EventUserRequest:       r.userRequest,
		EventAcceptRequest:     r.acceptRequest,
		EventJoinChat:          r.joinChat,
		EventSendMessage:       r.sendMessage,
		EventChatMessage:       r.chatMessage,
		EventButtonClick:       r.buttonClick,
		EventTyping:            r.typing,
		EventMessageRead:       r.messageRead,
		EventAgentExitChat:     r.agentExitChat,
	}
	return r
}

func (r *Router) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// Dispatch runs the handler for env.Event. Failures are logged and reported
// to the sending socket; the connection stays open.
func (r *Router) Dispatch(ctx context.Context, socketID string, env Envelope) {
	handler, ok := r.handlers[env.Event]
	if !ok {
		countEvent("unknown")
		r.emitter.EmitTo(socketID, EventError, ErrorEvent{Message: "Unknown event: " + env.Event})
		return
	}
	countEvent(env.Event)

	if err := handler(ctx, socketID, env.Data); err != nil {
		log.Printf("[WEBSOCKET] %s from %s: %v", env.Event, socketID, err)
		message := "Something went wrong"
		var evErr *eventError
		if errors.As(err, &evErr) {
			message = evErr.message
		}
		r.emitter.EmitTo(socketID, EventError, ErrorEvent{Message: message})
	}
}

// Connected greets a freshly upgraded socket with its id.
func (r *Router) Connected(socketID string) {
	r.emitter.EmitTo(socketID, EventConnectionAck, ConnectionAck{Status: "connected", SocketID: socketID})
}

// Disconnect forgets the socket. When it belonged to an agent, the agent goes
// offline and every chat it still had active is closed.
func (r *Router) Disconnect(ctx context.Context, socketID string) {
	info, wasAgent, err := r.registry.RemoveSocket(ctx, socketID)
	if err != nil {
		log.Printf("[WEBSOCKET] remove socket %s: %v", socketID, err)
		return
	}
	if !wasAgent {
		return
	}

	if _, err := r.agents.Disconnect(ctx, info.AgentID); err != nil {
		log.Printf("[WEBSOCKET] agent %s disconnect: %v", info.AgentID, err)
	}
	closed, err := r.chat.CloseAgentChats(ctx, info.AgentID)
	if err != nil {
		log.Printf("[WEBSOCKET] close chats of agent %s: %v", info.AgentID, err)
		return
	}
	log.Printf("[WEBSOCKET] agent %s disconnected, %d chat(s) closed", info.AgentID, closed)
}

// Stop cancels pending delivery callbacks.
func (r *Router) Stop() {
	if n := r.timers.stop(); n > 0 {
		log.Printf("[WEBSOCKET] cancelled %d pending delivery update(s)", n)
	}
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return fail("Invalid payload", nil)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fail("Invalid payload", err)
	}
	return nil
}

func (r *Router) userConnect(ctx context.Context, socketID string, data json.RawMessage) error {
	var p userConnectPayload
	if len(data) > 0 {
		if err := decode(data, &p); err != nil {
			return fail("Connection error", err)
		}
	}
	if userID := strings.TrimSpace(p.UserID); userID != "" {
		if err := r.registry.SetUserSocket(ctx, userID, socketID); err != nil {
			return fail("Connection error", err)
		}
	}
	r.emitter.EmitTo(socketID, EventConnectionAck, ConnectionAck{Status: "connected", SocketID: socketID})
	return nil
}

func (r *Router) agentConnect(ctx context.Context, socketID string, data json.RawMessage) error {
	var p agentConnectPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	agentID := strings.TrimSpace(p.AgentID)
	if agentID == "" {
		return fail("agentId is required", nil)
	}

	item, err := r.agents.Connect(ctx, agentID)
	if err != nil {
		return serviceFailure(err, "Failed to connect agent")
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = item.Name
	}
	info := presence.AgentInfo{AgentID: agentID, Name: name, SocketID: socketID, ConnectedAt: r.now().UTC()}
	if err := r.registry.SetAgent(ctx, info); err != nil {
		return fail("Failed to connect agent", err)
	}
	r.emitter.Join(socketID, AgentsRoom)

	pending, err := r.chat.PendingChats(ctx)
	if err != nil {
		return serviceFailure(err, "Failed to load pending requests")
	}
	r.emitter.EmitTo(socketID, EventPendingRequests, dto.ToChatResponses(pending))
	return nil
}

func (r *Router) newRequest(ctx context.Context, socketID string, data json.RawMessage) error {
	var p newRequestPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	result, err := r.chat.CreateRequest(ctx, chat.CreateRequestParams{
		UserID:   p.UserID,
		SocketID: socketID,
		Name:     p.Name,
		Email:    p.Email,
		Mobile:   p.Mobile,
		Query:    p.Query,
	})
	if err != nil {
		return serviceFailure(err, "Failed to submit request")
	}

	r.queued(ctx, socketID, result)
	r.emitter.EmitTo(socketID, EventRequestCreated, RequestCreatedEvent{ChatID: result.Chat.ChatID, RequestID: result.Request.ID})
	return nil
}

func (r *Router) requestHumanAgent(ctx context.Context, socketID string, data json.RawMessage) error {
	var p escalationPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	result, err := r.chat.Escalate(ctx, chat.EscalationParams{UserID: p.UserID, SocketID: socketID, Query: p.Query})
	if err != nil {
		return serviceFailure(err, "Failed to reach an agent")
	}

	r.queued(ctx, socketID, result)
	r.emitter.EmitTo(socketID, EventRequestCreated, RequestCreatedEvent{ChatID: result.Chat.ChatID, RequestID: result.Request.ID})
	return nil
}

// queued records the user's socket, puts it in the chat room and tells every agent.
func (r *Router) queued(ctx context.Context, socketID string, result chat.RequestResult) {
	if err := r.registry.SetUserSocket(ctx, result.Request.UserID, socketID); err != nil {
		log.Printf("[WEBSOCKET] register user %s: %v", result.Request.UserID, err)
	}
	r.emitter.Join(socketID, result.Chat.ChatID)
	r.emitter.EmitRoom(AgentsRoom, EventNewRequest, NewRequestEventFrom(result.Request))
}

func (r *Router) userRequest(ctx context.Context, socketID string, data json.RawMessage) error {
	var p userRequestPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	request, err := r.chat.SaveUserRequest(ctx, chat.UserRequestParams{
		Type:   p.RequestType,
		UserID: p.UserID,
		Name:   p.Name,
		Email:  p.Email,
		Mobile: p.Mobile,
		Query:  p.Query,
	})
	if err != nil {
		return serviceFailure(err, "Failed to save request")
	}
	r.emitter.EmitTo(socketID, EventRequestSaved, RequestSavedEvent{RequestID: request.ID, RequestType: request.Type})
	return nil
}

func (r *Router) acceptRequest(ctx context.Context, socketID string, data json.RawMessage) error {
	var p acceptRequestPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	agentID := strings.TrimSpace(p.AgentID)
	if agentID == "" {
		if info, ok, err := r.registry.Agent(ctx, socketID); err == nil && ok {
			agentID = info.AgentID
		}
	}

	accepted, err := r.chat.AcceptRequest(ctx, p.RequestID, agentID)
	if err != nil {
		return serviceFailure(err, "Failed to accept request")
	}
	if _, err := r.agents.AssignChat(ctx, agentID, accepted.ChatID); err != nil {
		log.Printf("[WEBSOCKET] assign chat %s to %s: %v", accepted.ChatID, agentID, err)
	}
	r.emitter.Join(socketID, accepted.ChatID)

	userSocket := r.userSocketFor(ctx, accepted, nil)
	r.emitter.EmitTo(userSocket, EventRequestAccepted, RequestAcceptedEvent{RequestID: accepted.ChatID, AgentID: agentID, ChatID: accepted.ChatID})
	r.emitter.EmitTo(socketID, EventRequestAccepted, RequestAcceptedEvent{RequestID: accepted.ChatID, ChatID: accepted.ChatID})
	return nil
}

func (r *Router) joinChat(ctx context.Context, socketID string, data json.RawMessage) error {
	var p joinChatPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	chatID := strings.TrimSpace(p.RequestID)
	if chatID == "" {
		return fail("requestId is required", nil)
	}

	var agentID string
	if info, ok, err := r.registry.Agent(ctx, socketID); err == nil && ok {
		agentID = info.AgentID
	}

	result, err := r.chat.JoinChat(ctx, chatID, agentID)
	if err != nil {
		return fail("Failed to join chat", err)
	}
	r.emitter.Join(socketID, chatID)

	userSocket := r.userSocketFor(ctx, result.Chat, result.Request)
	if userSocket == "" {
		log.Printf("[WEBSOCKET] no socket known for user %s of chat %s", result.Chat.UserID, chatID)
	}

	r.emitter.EmitTo(socketID, EventChatHistory, map[string]interface{}{
		"chatId":       chatID,
		"messages":     dto.ToHistory(chat.BuildHistory(result.Chat)),
		"userSocketId": userSocket,
	})
	r.emitter.EmitTo(userSocket, EventAgentJoined, AgentJoinedEvent{
		ChatID:    chatID,
		AgentID:   agentID,
		Message:   agentJoinedMessage,
		Timestamp: r.timestamp(),
	})
	return nil
}

func (r *Router) sendMessage(ctx context.Context, socketID string, data json.RawMessage) error {
	var p sendMessagePayload
	if err := decode(data, &p); err != nil {
		return err
	}
	text := p.Query
	if text == "" {
		text = p.Message
	}

	msg, err := r.chat.SendMessage(ctx, chat.SendMessageParams{ChatID: p.ChatID, SenderID: p.SenderID, Message: text})
	if err != nil {
		var chatErr *chat.Error
		if errors.As(err, &chatErr) && chatErr.Code == chat.ErrorCodeNotFound {
			return fail("Chat not found", err)
		}
		if errors.As(err, &chatErr) && chatErr.Code == chat.ErrorCodeValidation {
			return fail(chatErr.Message, err)
		}
		return fail("Failed to send message", err)
	}

	r.emitter.EmitTo(r.resolveSocket(ctx, p.RecipientID), EventReceiveMessage, MessageEvent{
		ChatID:    p.ChatID,
		MessageID: msg.ID,
		Message:   msg.Message,
		SenderID:  msg.SenderID,
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
		Type:      string(msg.Type),
		Status:    string(msg.Status),
	})

	chatID := p.ChatID
	r.timers.after(r.deliveryDelay, func() {
		r.markDelivered(chatID, msg.ID, socketID)
	})
	return nil
}

func (r *Router) markDelivered(chatID, messageID, senderSocket string) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	msg, err := r.chat.MarkDelivered(ctx, chatID, messageID)
	if err != nil {
		log.Printf("[WEBSOCKET] mark %s delivered: %v", messageID, err)
		return
	}
	if msg.Status != model.MessageStatusDelivered {
		return
	}
	r.emitter.EmitTo(senderSocket, EventMessageStatus, MessageStatusEvent{
		ChatID:    chatID,
		MessageID: messageID,
		Status:    string(model.MessageStatusDelivered),
		Timestamp: r.timestamp(),
	})
}

func (r *Router) chatMessage(_ context.Context, _ string, data json.RawMessage) error {
	var payload map[string]interface{}
	if err := decode(data, &payload); err != nil {
		return err
	}
	room, _ := payload["requestId"].(string)
	if room == "" {
		return fail("requestId is required", nil)
	}
	payload["timestamp"] = r.timestamp()
	r.emitter.EmitRoom(room, EventChatMessage, payload)
	return nil
}

func (r *Router) buttonClick(ctx context.Context, _ string, data json.RawMessage) error {
	var p buttonClickPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	msg, err := r.chat.SendMessage(ctx, chat.SendMessageParams{
		ChatID:   p.ChatID,
		SenderID: p.UserID,
		Message:  p.ButtonValue,
		Type:     model.MessageTypeButton,
	})
	if err != nil {
		return serviceFailure(err, "Failed to save selection")
	}

	r.emitter.EmitRoom(p.ChatID, EventChatMessage, MessageEvent{
		ChatID:    p.ChatID,
		MessageID: msg.ID,
		Message:   msg.Message,
		SenderID:  msg.SenderID,
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
		Type:      string(msg.Type),
	})
	return nil
}

func (r *Router) typing(ctx context.Context, socketID string, data json.RawMessage) error {
	var p typingPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	r.emitter.EmitTo(r.resolveSocket(ctx, p.RecipientID), EventTyping, TypingEvent{
		ChatID:    p.ChatID,
		User:      p.User,
		SenderID:  socketID,
		Timestamp: r.timestamp(),
	})
	return nil
}

func (r *Router) messageRead(ctx context.Context, _ string, data json.RawMessage) error {
	var p messageReadPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	msg, err := r.chat.MarkRead(ctx, p.ChatID, p.MessageID)
	if err != nil {
		return serviceFailure(err, "Failed to update message status")
	}
	r.emitter.EmitTo(r.resolveSocket(ctx, msg.SenderID), EventMessageStatus, MessageStatusEvent{
		ChatID:    p.ChatID,
		MessageID: msg.ID,
		Status:    string(model.MessageStatusRead),
		Timestamp: r.timestamp(),
	})
	return nil
}

func (r *Router) agentExitChat(ctx context.Context, socketID string, data json.RawMessage) error {
	var p agentExitPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	chatID := strings.TrimSpace(p.ChatID)
	if chatID == "" {
		return fail("chatId is required", nil)
	}

	userSocket := strings.TrimSpace(p.UserSocketID)
	if userSocket == "" {
		if current, err := r.chat.GetChat(ctx, chatID); err == nil {
			userSocket = r.userSocketFor(ctx, current, nil)
		}
	}

	message := resolvedMessage
	if !p.Resolved {
		message = fmt.Sprintf(leftMessageFormat, p.Reason)
	}
	r.emitter.EmitTo(userSocket, EventAgentLeft, AgentLeftEvent{ChatID: chatID, Message: message, Timestamp: r.timestamp()})

	result, err := r.chat.CloseChat(ctx, chat.CloseChatParams{ChatID: chatID, Resolved: p.Resolved, Reason: p.Reason})
	if err != nil {
		return serviceFailure(err, "Failed to close chat")
	}

	status := string(model.ResolutionUnresolved)
	if result.Archived != nil {
		status = string(result.Archived.Status)
	} else if p.Resolved {
		status = string(model.ResolutionResolved)
	}
	r.emitter.EmitTo(socketID, EventChatClosed, ChatClosedEvent{ChatID: chatID, Resolved: p.Resolved, Status: status})
	return nil
}

// resolveSocket maps a user or agent id to its socket. Unknown ids are taken
// to be socket ids already.
func (r *Router) resolveSocket(ctx context.Context, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if socketID, ok, err := r.registry.UserSocket(ctx, id); err == nil && ok {
		return socketID
	}
	if socketID, ok, err := r.registry.AgentSocket(ctx, id); err == nil && ok {
		return socketID
	}
	return id
}

// userSocketFor tries the registry first, then the ids stored on the chat and
// on its request.
func (r *Router) userSocketFor(ctx context.Context, current model.ChatItem, request *model.RequestItem) string {
	if socketID := r.lookupUser(ctx, current.UserID); socketID != "" {
		return socketID
	}
	if current.SocketID != "" {
		return current.SocketID
	}
	if request == nil {
		return ""
	}
	if socketID := r.lookupUser(ctx, request.UserID); socketID != "" {
		return socketID
	}
	return request.SocketID
}

func (r *Router) lookupUser(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	socketID, ok, err := r.registry.UserSocket(ctx, userID)
	if err != nil {
		log.Printf("[WEBSOCKET] lookup user %s: %v", userID, err)
		return ""
	}
	if !ok {
		return ""
	}
	return socketID
}

func NewRequestEventFrom(request model.RequestItem) NewRequestEvent {
	return NewRequestEvent{
		ID:        request.ID,
		Type:      request.Type,
		UserID:    request.UserID,
		SocketID:  request.SocketID,
		Name:      request.Name,
		Email:     request.Email,
		Mobile:    request.Mobile,
		Query:     request.Query,
		Status:    string(request.Status),
		Timestamp: request.Timestamp.UTC().Format(time.RFC3339),
	}
}

// AgentLiveness reports whether the agent's registered socket is still connected to hub.
func AgentLiveness(ctx context.Context, registry presence.Registry, hub *Hub) func(agentID string) bool {
	return func(agentID string) bool {
		socketID, ok, err := registry.AgentSocket(ctx, agentID)
		if err != nil || !ok {
			return false
		}
		return hub.Connected(socketID)
	}
}
