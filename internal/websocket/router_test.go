package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"support-desk/internal/dto"
	"support-desk/internal/model"
	"support-desk/internal/presence"
	"support-desk/internal/service/agent"
	"support-desk/internal/service/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	Target string
	Room   bool
	Event  string
	Data   interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	joins  []membership
}

func (e *recordingEmitter) EmitTo(socketID, event string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{Target: socketID, Event: event, Data: data})
}

func (e *recordingEmitter) EmitRoom(room, event string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{Target: room, Room: true, Event: event, Data: data})
}

func (e *recordingEmitter) Join(socketID, room string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.joins = append(e.joins, membership{socketID: socketID, room: room})
}

func (e *recordingEmitter) find(event string) []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emitted
	for _, ev := range e.events {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (e *recordingEmitter) joined(socketID, room string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.joins {
		if m.socketID == socketID && m.room == room {
			return true
		}
	}
	return false
}

type fixture struct {
	router    *Router
	emitter   *recordingEmitter
	registry  *presence.MemoryRegistry
	chatRepo  *chat.MemoryRepository
	agentRepo *agent.MemoryRepository
	chat      *chat.Service
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		emitter:   &recordingEmitter{},
		registry:  presence.NewMemoryRegistry(),
		chatRepo:  chat.NewMemoryRepository(),
		agentRepo: agent.NewMemoryRepository(),
	}
	f.chat = chat.NewWithRepository(f.chatRepo, fixedNow)
	f.router = NewRouter(RouterConfig{
		Chat:          f.chat,
		Agents:        agent.NewWithRepository(f.agentRepo, fixedNow),
		Registry:      f.registry,
		Emitter:       f.emitter,
		DeliveryDelay: delay,
		Now:           fixedNow,
	})
	t.Cleanup(f.router.Stop)
	return f
}

func (f *fixture) dispatch(t *testing.T, socketID, event string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	f.router.Dispatch(context.Background(), socketID, Envelope{Event: event, Data: raw})
}

func (f *fixture) seedAgent(t *testing.T, agentID string) {
	t.Helper()
	require.NoError(t, f.agentRepo.CreateAgent(context.Background(), model.AgentItem{
		ID:       "db-" + agentID,
		AgentID:  agentID,
		Name:     "Sam Agent",
		Username: "sam",
		Role:     model.RoleAgent,
		Status:   model.AgentStatusOffline,
	}))
}

func (f *fixture) openChat(t *testing.T, userSocket string) chat.RequestResult {
	t.Helper()
	result, err := f.chat.CreateRequest(context.Background(), chat.CreateRequestParams{
		UserID:   "user-1",
		SocketID: userSocket,
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Mobile:   "9876543210",
		Query:    "My order never arrived, please help",
	})
	require.NoError(t, err)
	return result
}

func TestUserConnectRegistersSocket(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-u", EventUserConnect, map[string]string{"userId": "user-1"})

	socketID, ok, err := f.registry.UserSocket(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sock-u", socketID)

	acks := f.emitter.find(EventConnectionAck)
	require.Len(t, acks, 1)
	assert.Equal(t, ConnectionAck{Status: "connected", SocketID: "sock-u"}, acks[0].Data)
}

func TestAgentConnectUnknownAgent(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-a", EventAgentConnect, map[string]string{"agentId": "AGENT-NOPE00"})

	errs := f.emitter.find(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "sock-a", errs[0].Target)
	assert.Equal(t, ErrorEvent{Message: "Agent not found."}, errs[0].Data)

	_, ok, _ := f.registry.Agent(context.Background(), "sock-a")
	assert.False(t, ok)
}

func TestAgentConnectSendsPendingRequests(t *testing.T) {
	f := newFixture(t, time.Second)
	f.seedAgent(t, "AGENT-ABC123")
	f.openChat(t, "sock-u")

	f.dispatch(t, "sock-a", EventAgentConnect, map[string]string{"agentId": "AGENT-ABC123", "name": "Sam"})

	stored, err := f.agentRepo.GetAgentByAgentID(context.Background(), "AGENT-ABC123")
	require.NoError(t, err)
	assert.Equal(t, model.AgentStatusOnline, stored.Status)

	info, ok, err := f.registry.Agent(context.Background(), "sock-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AGENT-ABC123", info.AgentID)
	assert.True(t, f.emitter.joined("sock-a", AgentsRoom))

	pending := f.emitter.find(EventPendingRequests)
	require.Len(t, pending, 1)
	chats, ok := pending[0].Data.([]dto.ChatResponse)
	require.True(t, ok)
	require.Len(t, chats, 1)
	assert.Equal(t, "pending", chats[0].Status)
}

func TestNewRequestBroadcastsToAgents(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-u", EventNewRequest, map[string]string{
		"userId": "user-9",
		"name":   "Jane Doe",
		"email":  "jane@example.com",
		"mobile": "9876543210",
		"query":  "I need help resetting my password",
	})

	created := f.emitter.find(EventRequestCreated)
	require.Len(t, created, 1)
	ack := created[0].Data.(RequestCreatedEvent)
	assert.Equal(t, ack.ChatID, ack.RequestID)

	broadcast := f.emitter.find(EventNewRequest)
	require.Len(t, broadcast, 1)
	assert.True(t, broadcast[0].Room)
	assert.Equal(t, AgentsRoom, broadcast[0].Target)
	event := broadcast[0].Data.(NewRequestEvent)
	assert.Equal(t, "sock-u", event.SocketID)
	assert.Equal(t, "pending", event.Status)

	socketID, ok, _ := f.registry.UserSocket(context.Background(), "user-9")
	require.True(t, ok)
	assert.Equal(t, "sock-u", socketID)
	assert.True(t, f.emitter.joined("sock-u", ack.ChatID))
}

func TestNewRequestValidationError(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-u", EventNewRequest, map[string]string{
		"userId": "user-9",
		"email":  "jane@example.com",
		"mobile": "9876543210",
		"query":  "I need help resetting my password",
	})

	errs := f.emitter.find(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorEvent{Message: "Please provide: Name"}, errs[0].Data)
	assert.Empty(t, f.emitter.find(EventNewRequest))
}

func TestRequestHumanAgentEscalates(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-u", EventRequestHumanAgent, map[string]string{"userId": "user-3", "query": "talk to a person"})

	broadcast := f.emitter.find(EventNewRequest)
	require.Len(t, broadcast, 1)
	event := broadcast[0].Data.(NewRequestEvent)
	assert.Equal(t, "talk to a person", event.Query)

	stored, err := f.chat.GetChat(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChatStatusPending, stored.Status)
	require.Len(t, stored.Messages, 1)
}

func TestUserRequestIsSaved(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-u", EventUserRequest, map[string]string{
		"requestType": "pricing",
		"userId":      "user-4",
		"query":       "How much is the premium plan?",
	})

	saved := f.emitter.find(EventRequestSaved)
	require.Len(t, saved, 1)
	event := saved[0].Data.(RequestSavedEvent)
	assert.Equal(t, "pricing", event.RequestType)

	request, err := f.chatRepo.GetRequest(context.Background(), event.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "user-4", request.UserID)
}

func TestAcceptRequestAssignsAgent(t *testing.T) {
	f := newFixture(t, time.Second)
	f.seedAgent(t, "AGENT-ABC123")
	opened := f.openChat(t, "sock-u")

	f.dispatch(t, "sock-a", EventAcceptRequest, map[string]string{"requestId": opened.Chat.ChatID, "agentId": "AGENT-ABC123"})

	stored, err := f.chat.GetChat(context.Background(), opened.Chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, model.ChatStatusActive, stored.Status)
	assert.Equal(t, "AGENT-ABC123", stored.AgentID)

	agentItem, err := f.agentRepo.GetAgentByAgentID(context.Background(), "AGENT-ABC123")
	require.NoError(t, err)
	assert.Equal(t, model.AgentStatusBusy, agentItem.Status)
	assert.Equal(t, []string{opened.Chat.ChatID}, agentItem.ActiveChats)

	accepted := f.emitter.find(EventRequestAccepted)
	require.Len(t, accepted, 2)
	assert.Equal(t, "sock-u", accepted[0].Target)
	assert.Equal(t, "AGENT-ABC123", accepted[0].Data.(RequestAcceptedEvent).AgentID)
	assert.Equal(t, "sock-a", accepted[1].Target)
}

func TestJoinChatSendsHistory(t *testing.T) {
	f := newFixture(t, time.Second)
	opened := f.openChat(t, "sock-stale")
	require.NoError(t, f.registry.SetUserSocket(context.Background(), "user-1", "sock-live"))

	f.dispatch(t, "sock-a", EventJoinChat, map[string]string{"requestId": opened.Chat.ChatID})

	stored, err := f.chat.GetChat(context.Background(), opened.Chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, model.ChatStatusActive, stored.Status)
	system := 0
	for _, m := range stored.Messages {
		if m.Type == model.MessageTypeSystem {
			system++
		}
	}
	assert.Equal(t, 1, system)

	history := f.emitter.find(EventChatHistory)
	require.Len(t, history, 1)
	assert.Equal(t, "sock-a", history[0].Target)
	payload := history[0].Data.(map[string]interface{})
	assert.Equal(t, "sock-live", payload["userSocketId"])
	messages := payload["messages"].([]dto.HistoryMessage)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Sender)
	assert.Equal(t, "system", messages[1].Sender)

	joined := f.emitter.find(EventAgentJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, "sock-live", joined[0].Target)
	assert.True(t, f.emitter.joined("sock-a", opened.Chat.ChatID))
}

func TestJoinChatFallsBackToStoredSocket(t *testing.T) {
	f := newFixture(t, time.Second)
	opened := f.openChat(t, "sock-stored")

	f.dispatch(t, "sock-a", EventJoinChat, map[string]string{"requestId": opened.Chat.ChatID})

	joined := f.emitter.find(EventAgentJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, "sock-stored", joined[0].Target)
}

func TestJoinUnknownChat(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-a", EventJoinChat, map[string]string{"requestId": "missing"})

	errs := f.emitter.find(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorEvent{Message: "Failed to join chat"}, errs[0].Data)
	assert.False(t, f.emitter.joined("sock-a", "missing"), "socket must not join the room of an unknown chat")
}

func TestSendMessageRelaysAndMarksDelivered(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)
	opened := f.openChat(t, "sock-u")
	require.NoError(t, f.registry.SetUserSocket(context.Background(), "user-1", "sock-u"))

	f.dispatch(t, "sock-a", EventSendMessage, map[string]string{
		"chatId":      opened.Chat.ChatID,
		"senderId":    "AGENT-ABC123",
		"recipientId": "user-1",
		"message":     "Hello, how can I help?",
	})

	received := f.emitter.find(EventReceiveMessage)
	require.Len(t, received, 1)
	assert.Equal(t, "sock-u", received[0].Target)
	msg := received[0].Data.(MessageEvent)
	assert.Equal(t, "sent", msg.Status)

	require.Eventually(t, func() bool {
		return len(f.emitter.find(EventMessageStatus)) == 1
	}, time.Second, 5*time.Millisecond)

	status := f.emitter.find(EventMessageStatus)[0]
	assert.Equal(t, "sock-a", status.Target)
	assert.Equal(t, "delivered", status.Data.(MessageStatusEvent).Status)

	stored, err := f.chat.GetChat(context.Background(), opened.Chat.ChatID)
	require.NoError(t, err)
	idx := stored.FindMessage(msg.MessageID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, model.MessageStatusDelivered, stored.Messages[idx].Status)
}

func TestSendMessageUnknownChat(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-a", EventSendMessage, map[string]string{"chatId": "missing", "senderId": "a", "recipientId": "b", "query": "hi"})

	errs := f.emitter.find(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorEvent{Message: "Chat not found"}, errs[0].Data)
	assert.Empty(t, f.emitter.find(EventReceiveMessage))
}

func TestStopCancelsPendingDelivery(t *testing.T) {
	f := newFixture(t, time.Hour)
	opened := f.openChat(t, "sock-u")

	f.dispatch(t, "sock-a", EventSendMessage, map[string]string{
		"chatId": opened.Chat.ChatID, "senderId": "AGENT-ABC123", "recipientId": "sock-u", "message": "ping",
	})
	require.Equal(t, 1, f.router.timers.pending())

	f.router.Stop()
	assert.Equal(t, 0, f.router.timers.pending())
	assert.Empty(t, f.emitter.find(EventMessageStatus))
}

func TestMessageReadNotifiesSender(t *testing.T) {
	f := newFixture(t, time.Hour)
	opened := f.openChat(t, "sock-u")
	require.NoError(t, f.registry.SetUserSocket(context.Background(), "user-1", "sock-u"))
	first := opened.Chat.Messages[0]

	f.dispatch(t, "sock-a", EventMessageRead, map[string]string{"chatId": opened.Chat.ChatID, "messageId": first.ID})

	statuses := f.emitter.find(EventMessageStatus)
	require.Len(t, statuses, 1)
	assert.Equal(t, "sock-u", statuses[0].Target)
	assert.Equal(t, "read", statuses[0].Data.(MessageStatusEvent).Status)
}

func TestButtonClickStoresMessage(t *testing.T) {
	f := newFixture(t, time.Second)
	opened := f.openChat(t, "sock-u")

	f.dispatch(t, "sock-u", EventButtonClick, map[string]string{"chatId": opened.Chat.ChatID, "userId": "user-1", "buttonValue": "Pricing"})

	msgs := f.emitter.find(EventChatMessage)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Room)
	assert.Equal(t, "button", msgs[0].Data.(MessageEvent).Type)

	stored, err := f.chat.GetChat(context.Background(), opened.Chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageTypeButton, stored.Messages[len(stored.Messages)-1].Type)
}

func TestChatMessageAddsTimestamp(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-u", EventChatMessage, map[string]string{"requestId": "chat-1", "text": "hi"})

	msgs := f.emitter.find(EventChatMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, "chat-1", msgs[0].Target)
	payload := msgs[0].Data.(map[string]interface{})
	assert.Equal(t, "2024-03-01T09:30:00Z", payload["timestamp"])
	assert.Equal(t, "hi", payload["text"])
}

func TestTypingRelayedToRecipient(t *testing.T) {
	f := newFixture(t, time.Second)

	f.dispatch(t, "sock-a", EventTyping, map[string]interface{}{"chatId": "chat-1", "user": "Sam", "recipientId": "sock-u"})

	typing := f.emitter.find(EventTyping)
	require.Len(t, typing, 1)
	assert.Equal(t, "sock-u", typing[0].Target)
	assert.Equal(t, "sock-a", typing[0].Data.(TypingEvent).SenderID)
}

func TestAgentExitArchivesUnresolved(t *testing.T) {
	f := newFixture(t, time.Second)
	opened := f.openChat(t, "sock-u")

	f.dispatch(t, "sock-a", EventAgentExitChat, map[string]interface{}{
		"chatId":       opened.Chat.ChatID,
		"userSocketId": "sock-u",
		"resolved":     false,
		"reason":       "customer went quiet",
	})

	left := f.emitter.find(EventAgentLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "sock-u", left[0].Target)
	assert.Equal(t, "The agent has left the chat. Reason: customer went quiet", left[0].Data.(AgentLeftEvent).Message)

	_, err := f.chatRepo.GetRequest(context.Background(), opened.Request.ID)
	assert.ErrorIs(t, err, chat.ErrNotFound)

	archived, err := f.chat.ListResolved(context.Background())
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, model.ResolutionUnresolved, archived[0].Status)
	assert.Equal(t, "customer went quiet", archived[0].ResolutionNote)

	closed := f.emitter.find(EventChatClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, "sock-a", closed[0].Target)
	assert.Equal(t, "unresolved", closed[0].Data.(ChatClosedEvent).Status)
}

func TestAgentExitResolvedMessage(t *testing.T) {
	f := newFixture(t, time.Second)
	opened := f.openChat(t, "sock-u")

	f.dispatch(t, "sock-a", EventAgentExitChat, map[string]interface{}{"chatId": opened.Chat.ChatID, "resolved": true})

	left := f.emitter.find(EventAgentLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "sock-u", left[0].Target)
	assert.Equal(t, resolvedMessage, left[0].Data.(AgentLeftEvent).Message)
}

func TestDisconnectAgentClosesChats(t *testing.T) {
	f := newFixture(t, time.Second)
	f.seedAgent(t, "AGENT-ABC123")
	opened := f.openChat(t, "sock-u")

	f.dispatch(t, "sock-a", EventAgentConnect, map[string]string{"agentId": "AGENT-ABC123"})
	f.dispatch(t, "sock-a", EventAcceptRequest, map[string]string{"requestId": opened.Chat.ChatID})

	f.router.Disconnect(context.Background(), "sock-a")

	stored, err := f.chat.GetChat(context.Background(), opened.Chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, model.ChatStatusClosed, stored.Status)

	agentItem, err := f.agentRepo.GetAgentByAgentID(context.Background(), "AGENT-ABC123")
	require.NoError(t, err)
	assert.Equal(t, model.AgentStatusOffline, agentItem.Status)
	assert.Empty(t, agentItem.ActiveChats)

	_, ok, _ := f.registry.Agent(context.Background(), "sock-a")
	assert.False(t, ok)
}

func TestUnknownEvent(t *testing.T) {
	f := newFixture(t, time.Second)

	f.router.Dispatch(context.Background(), "sock-u", Envelope{Event: "exec"})

	errs := f.emitter.find(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrorEvent{Message: "Unknown event: exec"}, errs[0].Data)
}
