package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
	"support-desk/internal/validation"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeForbidden    ErrorCode = "forbidden"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

const (
	minQueryLength    = 10
	agentJoinedNotice = "Agent joined the chat"
)

const (
	SenderAgent  = "agent"
	SenderUser   = "user"
	SenderSystem = "system"
)

type CreateRequestParams struct {
	UserID   string `label:"User ID" validate:"required"`
	SocketID string `label:"Socket ID" validate:"required"`
	Name     string `label:"Name" validate:"required"`
	Email    string `label:"Email" validate:"required,support_email"`
	Mobile   string `label:"Mobile number" validate:"required,mobile10"`
	Query    string `label:"Query" validate:"required,min=10"`
}

type EscalationParams struct {
	UserID   string
	SocketID string
	Query    string
}

type UserRequestParams struct {
	Type   string
	UserID string
	Name   string
	Email  string
	Mobile string
	Query  string
}

type SendMessageParams struct {
	ChatID   string
	SenderID string
	Message  string
	Type     model.MessageType
}

type CloseChatParams struct {
	ChatID   string
	Resolved bool
	Reason   string
}

type RequestResult struct {
	Request model.RequestItem
	Chat    model.ChatItem
}

type JoinResult struct {
	Chat    model.ChatItem
	Request *model.RequestItem
}

type CloseResult struct {
	Chat     model.ChatItem
	Archived *model.ResolvedRequestItem
}

// HistoryEntry is one chat message as shown to a participant.
type HistoryEntry struct {
	ID        string
	Sender    string
	SenderID  string
	Content   string
	Type      model.MessageType
	Status    model.MessageStatus
	Timestamp time.Time
}

type ChatCounts struct {
	Active int
	Total  int
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func New(db *database.Database) *Service {
	return &Service{
		repo:  NewRepository(db),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:  repo,
		now:   now,
		newID: uuid.NewString,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// CreateRequest stores a new pending request and its chat. When the chat write
// fails the request is deleted again on a best-effort basis.
func (s *Service) CreateRequest(ctx context.Context, params CreateRequestParams) (RequestResult, error) {
	params.UserID = strings.TrimSpace(params.UserID)
	params.SocketID = strings.TrimSpace(params.SocketID)
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.Mobile = strings.TrimSpace(params.Mobile)
	queryGiven := params.Query != ""
	params.Query = strings.TrimSpace(params.Query)

	if err := validation.Struct(params); err != nil {
		return RequestResult{}, requestValidationError(err, queryGiven)
	}

	now := s.timestamp()
	request := model.RequestItem{
		ID:        s.newID(),
		Type:      model.DefaultRequestType,
		UserID:    params.UserID,
		SocketID:  params.SocketID,
		Name:      params.Name,
		Email:     params.Email,
		Mobile:    params.Mobile,
		Query:     params.Query,
		Status:    model.RequestStatusPending,
		Timestamp: now,
		UpdatedAt: now,
	}

	return s.openChat(ctx, request)
}

// requestValidationError maps validation failures to user-facing messages.
// A whitespace-only query counts as present and fails the length check.
func requestValidationError(err error, queryGiven bool) error {
	missing := validation.MissingFields(err)
	if queryGiven {
		missing = slices.DeleteFunc(missing, func(field string) bool { return field == "Query" })
	}
	if len(missing) > 0 {
		return newError(ErrorCodeValidation, "Please provide: "+strings.Join(missing, ", "), err)
	}
	if queryGiven && len(validation.MissingFields(err)) > 0 {
		return newError(ErrorCodeValidation, fmt.Sprintf("Please provide a more detailed query (minimum %d characters)", minQueryLength), err)
	}

	field, _, _ := validation.FirstNonRequired(err)
	switch field {
	case "Email":
		return newError(ErrorCodeValidation, "Please enter a valid email address", err)
	case "Mobile number":
		return newError(ErrorCodeValidation, "Please enter a valid 10-digit mobile number", err)
	case "Query":
		return newError(ErrorCodeValidation, fmt.Sprintf("Please provide a more detailed query (minimum %d characters)", minQueryLength), err)
	}
	return newError(ErrorCodeValidation, "invalid request", err)
}

// Escalate hands a bot conversation to the human queue. Only the user id and
// query are known at that point.
func (s *Service) Escalate(ctx context.Context, params EscalationParams) (RequestResult, error) {
	userID := strings.TrimSpace(params.UserID)
	query := strings.TrimSpace(params.Query)
	if userID == "" || query == "" {
		return RequestResult{}, newError(ErrorCodeValidation, "userId and query are required", nil)
	}

	now := s.timestamp()
	request := model.RequestItem{
		ID:        s.newID(),
		Type:      model.DefaultRequestType,
		UserID:    userID,
		SocketID:  strings.TrimSpace(params.SocketID),
		Query:     query,
		Status:    model.RequestStatusPending,
		Timestamp: now,
		UpdatedAt: now,
	}

	return s.openChat(ctx, request)
}

func (s *Service) openChat(ctx context.Context, request model.RequestItem) (RequestResult, error) {
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return RequestResult{}, newError(ErrorCodeInternal, "Unable to save your request. Please try again.", err)
	}

	chat := model.ChatItem{
		ChatID:   request.ID,
		UserID:   request.UserID,
		SocketID: request.SocketID,
		Status:   model.ChatStatusPending,
		Messages: []model.ChatMessage{{
			ID:        s.newID(),
			SenderID:  request.UserID,
			Message:   request.Query,
			Type:      model.MessageTypeText,
			Status:    model.MessageStatusSent,
			Timestamp: request.Timestamp,
		}},
		CreatedAt: request.Timestamp,
		UpdatedAt: request.Timestamp,
	}

	if err := s.repo.CreateChat(ctx, chat); err != nil {
		cause := err
		if delErr := s.repo.DeleteRequest(ctx, request.ID); delErr != nil {
			cause = errors.Join(err, fmt.Errorf("rollback request %s: %w", request.ID, delErr))
		}
		return RequestResult{}, newError(ErrorCodeInternal, "Unable to create chat session. Please try again.", cause)
	}

	return RequestResult{Request: request, Chat: chat}, nil
}

// SaveUserRequest records a typed request (pricing, products, ...) without opening a chat.
func (s *Service) SaveUserRequest(ctx context.Context, params UserRequestParams) (model.RequestItem, error) {
	requestType := strings.TrimSpace(params.Type)
	if requestType == "" {
		requestType = model.DefaultRequestType
	}
	query := strings.TrimSpace(params.Query)
	if strings.TrimSpace(params.UserID) == "" || query == "" {
		return model.RequestItem{}, newError(ErrorCodeValidation, "userId and query are required", nil)
	}

	now := s.timestamp()
	request := model.RequestItem{
		ID:        s.newID(),
		Type:      requestType,
		UserID:    strings.TrimSpace(params.UserID),
		Name:      strings.TrimSpace(params.Name),
		Email:     strings.TrimSpace(params.Email),
		Mobile:    strings.TrimSpace(params.Mobile),
		Query:     query,
		Status:    model.RequestStatusPending,
		Timestamp: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return model.RequestItem{}, newError(ErrorCodeInternal, "failed to save request", err)
	}
	return request, nil
}

// ListOpenRequests returns pending and accepted requests, newest first.
func (s *Service) ListOpenRequests(ctx context.Context) ([]model.RequestItem, error) {
	return s.listRequests(ctx, model.RequestStatusPending, model.RequestStatusAccepted)
}

func (s *Service) ListPendingRequests(ctx context.Context) ([]model.RequestItem, error) {
	return s.listRequests(ctx, model.RequestStatusPending)
}

func (s *Service) listRequests(ctx context.Context, statuses ...model.RequestStatus) ([]model.RequestItem, error) {
	requests, err := s.repo.ListRequests(ctx, statuses)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list requests", err)
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].Timestamp.After(requests[j].Timestamp)
	})
	return requests, nil
}

func (s *Service) UpdateRequestStatus(ctx context.Context, requestID, status string) (model.RequestItem, error) {
	next := model.RequestStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.RequestItem{}, newError(ErrorCodeValidation, "Invalid status", nil)
	}

	request, err := s.repo.UpdateRequest(ctx, requestID, RequestUpdate{Status: &next}, s.timestamp())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.RequestItem{}, newError(ErrorCodeNotFound, "Request not found", err)
		}
		return model.RequestItem{}, newError(ErrorCodeInternal, "failed to update request", err)
	}
	return request, nil
}

func (s *Service) GetChat(ctx context.Context, chatID string) (model.ChatItem, error) {
	chat, err := s.repo.GetChat(ctx, strings.TrimSpace(chatID))
	if err != nil {
		return model.ChatItem{}, chatLookupError(err)
	}
	return chat, nil
}

func chatLookupError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return newError(ErrorCodeNotFound, "Chat not found", err)
	}
	return newError(ErrorCodeInternal, "failed to load chat", err)
}

func (s *Service) History(ctx context.Context, chatID string) ([]HistoryEntry, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return BuildHistory(chat), nil
}

// BuildHistory labels every message with the party that sent it.
func BuildHistory(chat model.ChatItem) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		entries = append(entries, HistoryEntry{
			ID:        msg.ID,
			Sender:    SenderOf(chat, msg),
			SenderID:  msg.SenderID,
			Content:   msg.Message,
			Type:      msg.Type,
			Status:    msg.Status,
			Timestamp: msg.Timestamp,
		})
	}
	return entries
}

func SenderOf(chat model.ChatItem, msg model.ChatMessage) string {
	switch {
	case msg.Type == model.MessageTypeSystem || msg.SenderID == model.SystemSenderID:
		return SenderSystem
	case msg.SenderID == chat.UserID:
		return SenderUser
	default:
		return SenderAgent
	}
}

func (s *Service) ListResolved(ctx context.Context) ([]model.ResolvedRequestItem, error) {
	items, err := s.repo.ListResolved(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list resolved requests", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

// SendMessage appends a message with status sent.
func (s *Service) SendMessage(ctx context.Context, params SendMessageParams) (model.ChatMessage, error) {
	text := strings.TrimSpace(params.Message)
	if text == "" {
		return model.ChatMessage{}, newError(ErrorCodeValidation, "Message is required", nil)
	}
	msgType := params.Type
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	now := s.timestamp()
	message := model.ChatMessage{
		ID:        s.newID(),
		SenderID:  params.SenderID,
		Message:   text,
		Type:      msgType,
		Status:    model.MessageStatusSent,
		Timestamp: now,
	}

	if _, err := s.repo.AppendMessage(ctx, strings.TrimSpace(params.ChatID), message, now); err != nil {
		return model.ChatMessage{}, chatLookupError(err)
	}
	return message, nil
}

// MarkDelivered flips a sent message to delivered. Messages already read keep their status.
func (s *Service) MarkDelivered(ctx context.Context, chatID, messageID string) (model.ChatMessage, error) {
	message, _, err := s.repo.SetMessageStatusIf(ctx, chatID, messageID, model.MessageStatusSent, model.MessageStatusDelivered)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ChatMessage{}, newError(ErrorCodeNotFound, "Message not found", err)
		}
		return model.ChatMessage{}, newError(ErrorCodeInternal, "failed to update message", err)
	}
	return message, nil
}

func (s *Service) MarkRead(ctx context.Context, chatID, messageID string) (model.ChatMessage, error) {
	return s.setMessageStatus(ctx, chatID, messageID, model.MessageStatusRead)
}

func (s *Service) setMessageStatus(ctx context.Context, chatID, messageID string, status model.MessageStatus) (model.ChatMessage, error) {
	message, err := s.repo.SetMessageStatus(ctx, chatID, messageID, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ChatMessage{}, newError(ErrorCodeNotFound, "Message not found", err)
		}
		return model.ChatMessage{}, newError(ErrorCodeInternal, "failed to update message", err)
	}
	return message, nil
}

// JoinChat activates the chat and records a single system notice. The request
// is returned when it still exists so callers can fall back to its user id.
func (s *Service) JoinChat(ctx context.Context, chatID, agentID string) (JoinResult, error) {
	chatID = strings.TrimSpace(chatID)
	now := s.timestamp()

	active := model.ChatStatusActive
	update := ChatUpdate{Status: &active}
	if agentID != "" {
		update.AgentID = &agentID
	}
	if _, err := s.repo.UpdateChat(ctx, chatID, update, now); err != nil {
		return JoinResult{}, chatLookupError(err)
	}

	chat, err := s.repo.AppendMessage(ctx, chatID, model.ChatMessage{
		ID:        s.newID(),
		SenderID:  model.SystemSenderID,
		Message:   agentJoinedNotice,
		Type:      model.MessageTypeSystem,
		Status:    model.MessageStatusSent,
		Timestamp: now,
	}, now)
	if err != nil {
		return JoinResult{}, chatLookupError(err)
	}

	result := JoinResult{Chat: chat}
	request, err := s.repo.GetRequest(ctx, chatID)
	switch {
	case err == nil:
		result.Request = &request
	case errors.Is(err, ErrNotFound):
	default:
		return JoinResult{}, newError(ErrorCodeInternal, "failed to load request", err)
	}
	return result, nil
}

// AcceptRequest assigns the chat and its request to agentID.
func (s *Service) AcceptRequest(ctx context.Context, requestID, agentID string) (model.ChatItem, error) {
	requestID = strings.TrimSpace(requestID)
	agentID = strings.TrimSpace(agentID)
	if requestID == "" || agentID == "" {
		return model.ChatItem{}, newError(ErrorCodeValidation, "requestId and agentId are required", nil)
	}

	now := s.timestamp()
	active := model.ChatStatusActive
	chat, err := s.repo.UpdateChat(ctx, requestID, ChatUpdate{Status: &active, AgentID: &agentID}, now)
	if err != nil {
		return model.ChatItem{}, chatLookupError(err)
	}

	accepted := model.RequestStatusAccepted
	if _, err := s.repo.UpdateRequest(ctx, requestID, RequestUpdate{Status: &accepted, AgentID: &agentID}, now); err != nil && !errors.Is(err, ErrNotFound) {
		return model.ChatItem{}, newError(ErrorCodeInternal, "failed to update request", err)
	}
	return chat, nil
}

// CloseChat closes the chat and moves its request into the resolved archive.
func (s *Service) CloseChat(ctx context.Context, params CloseChatParams) (CloseResult, error) {
	chatID := strings.TrimSpace(params.ChatID)
	reason := strings.TrimSpace(params.Reason)
	now := s.timestamp()

	closed := model.ChatStatusClosed
	update := ChatUpdate{Status: &closed}
	if !params.Resolved && reason != "" {
		update.ResolutionNote = &reason
	}
	chat, err := s.repo.UpdateChat(ctx, chatID, update, now)
	if err != nil {
		return CloseResult{}, chatLookupError(err)
	}

	result := CloseResult{Chat: chat}

	request, err := s.repo.GetRequest(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result, nil
		}
		return result, newError(ErrorCodeInternal, "failed to load request", err)
	}

	archived := model.ResolvedRequestItem{
		ID:         s.newID(),
		OriginalID: request.ID,
		Type:       request.Type,
		UserID:     request.UserID,
		SocketID:   request.SocketID,
		Name:       request.Name,
		Email:      request.Email,
		Mobile:     request.Mobile,
		Query:      request.Query,
		AgentID:    request.AgentID,
		Status:     model.ResolutionResolved,
		Timestamp:  request.Timestamp,
		ResolvedAt: now,
		UpdatedAt:  now,
	}
	if archived.AgentID == "" {
		archived.AgentID = chat.AgentID
	}
	if !params.Resolved {
		archived.Status = model.ResolutionUnresolved
		archived.ResolutionNote = reason
	}

	if err := s.repo.CreateResolved(ctx, archived); err != nil {
		return result, newError(ErrorCodeInternal, "failed to archive request", err)
	}
	if err := s.repo.DeleteRequest(ctx, request.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return result, newError(ErrorCodeInternal, "failed to delete archived request", err)
	}

	result.Archived = &archived
	return result, nil
}

// CloseAgentChats closes every chat agentID still has active and returns how many were closed.
func (s *Service) CloseAgentChats(ctx context.Context, agentID string) (int, error) {
	chats, err := s.repo.ListChats(ctx, ChatFilter{Status: model.ChatStatusActive, AgentID: agentID})
	if err != nil {
		return 0, newError(ErrorCodeInternal, "failed to list agent chats", err)
	}

	closed := model.ChatStatusClosed
	now := s.timestamp()
	count := 0
	for _, chat := range chats {
		if _, err := s.repo.UpdateChat(ctx, chat.ChatID, ChatUpdate{Status: &closed}, now); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return count, newError(ErrorCodeInternal, "failed to close chat", err)
		}
		count++
	}
	return count, nil
}

func (s *Service) PendingChats(ctx context.Context) ([]model.ChatItem, error) {
	return s.listChats(ctx, ChatFilter{Status: model.ChatStatusPending})
}

// AgentChats returns the agent's active chats, most recently updated first.
func (s *Service) AgentChats(ctx context.Context, agentID string) ([]model.ChatItem, error) {
	return s.listChats(ctx, ChatFilter{Status: model.ChatStatusActive, AgentID: agentID})
}

func (s *Service) listChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error) {
	chats, err := s.repo.ListChats(ctx, filter)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list chats", err)
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func (s *Service) CountAgentChats(ctx context.Context, agentID string) (ChatCounts, error) {
	chats, err := s.repo.ListChats(ctx, ChatFilter{AgentID: agentID})
	if err != nil {
		return ChatCounts{}, newError(ErrorCodeInternal, "failed to count chats", err)
	}
	counts := ChatCounts{Total: len(chats)}
	for _, chat := range chats {
		if chat.Status == model.ChatStatusActive {
			counts.Active++
		}
	}
	return counts, nil
}
