package endpoints

import (
	"context"
	"log"
	"net/http"

	"support-desk/internal/database"
	"support-desk/internal/dto"
	"support-desk/internal/presence"
	chatsvc "support-desk/internal/service/chat"
	"support-desk/internal/websocket"
)

const requestSubmittedMessage = "Your request has been submitted successfully"

// RoomPublisher fans an event out to a websocket room, possibly on another process.
type RoomPublisher interface {
	Publish(ctx context.Context, room, event string, data interface{}) error
}

type ChatEndpoints interface {
	CreateRequest(http.ResponseWriter, *http.Request) error
	History(http.ResponseWriter, *http.Request) error
}

type chatEndpoints struct {
	service   *chatsvc.Service
	registry  presence.Registry
	publisher RoomPublisher
}

func NewChatEndpoints(db *database.Database, registry presence.Registry, publisher RoomPublisher) ChatEndpoints {
	return &chatEndpoints{
		service:   chatsvc.New(db),
		registry:  registry,
		publisher: publisher,
	}
}

func (h *chatEndpoints) CreateRequest(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreateRequest,
	})
}

func (h *chatEndpoints) History(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleHistory,
	})
}

func (h *chatEndpoints) handleCreateRequest(w http.ResponseWriter, r *http.Request) error {
	var req dto.ChatRequestBody
	if err := decodeBody(r, &req, "chat request"); err != nil {
		return err
	}

	result, err := h.service.CreateRequest(r.Context(), chatsvc.CreateRequestParams{
		UserID:   req.UserID,
		SocketID: req.SocketID,
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Query:    req.Query,
	})
	if err != nil {
		return serviceError(err)
	}

	if h.registry != nil {
		if err := h.registry.SetUserSocket(r.Context(), result.Request.UserID, result.Request.SocketID); err != nil {
			log.Printf("[CHAT] register user socket for %s: %v", result.Request.UserID, err)
		}
	}
	if h.publisher != nil {
		event := websocket.NewRequestEventFrom(result.Request)
		if err := h.publisher.Publish(r.Context(), websocket.AgentsRoom, websocket.EventNewRequest, event); err != nil {
			log.Printf("[CHAT] broadcast new request %s: %v", result.Request.ID, err)
		}
	}

	return WriteJSON(w, http.StatusCreated, dto.ChatRequestResponse{
		Success:   true,
		ChatID:    result.Chat.ChatID,
		RequestID: result.Request.ID,
		Message:   requestSubmittedMessage,
	})
}

func (h *chatEndpoints) handleHistory(w http.ResponseWriter, r *http.Request) error {
	history, err := h.service.History(r.Context(), r.PathValue("id"))
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToHistory(history))
}
