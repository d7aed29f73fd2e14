package dto

import (
	"time"

	"support-desk/internal/model"
	"support-desk/internal/service/chat"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func ToHistory(entries []chat.HistoryEntry) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryMessage{
			ID:        e.ID,
			Sender:    e.Sender,
			SenderID:  e.SenderID,
			Content:   e.Content,
			Type:      string(e.Type),
			Status:    string(e.Status),
			Timestamp: formatTime(e.Timestamp),
		})
	}
	return out
}

func ToChatResponse(item model.ChatItem) ChatResponse {
	return ChatResponse{
		ChatID:         item.ChatID,
		UserID:         item.UserID,
		SocketID:       item.SocketID,
		AgentID:        item.AgentID,
		Status:         string(item.Status),
		ResolutionNote: item.ResolutionNote,
		Messages:       ToHistory(chat.BuildHistory(item)),
		CreatedAt:      formatTime(item.CreatedAt),
		UpdatedAt:      formatTime(item.UpdatedAt),
	}
}

func ToChatResponses(items []model.ChatItem) []ChatResponse {
	out := make([]ChatResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToChatResponse(item))
	}
	return out
}

func ToRequestResponse(item model.RequestItem) RequestResponse {
	return RequestResponse{
		ID:        item.ID,
		Type:      item.Type,
		UserID:    item.UserID,
		SocketID:  item.SocketID,
		Name:      item.Name,
		Email:     item.Email,
		Mobile:    item.Mobile,
		Query:     item.Query,
		Status:    string(item.Status),
		AgentID:   item.AgentID,
		Timestamp: formatTime(item.Timestamp),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}

func ToRequestResponses(items []model.RequestItem) []RequestResponse {
	out := make([]RequestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToRequestResponse(item))
	}
	return out
}

func ToRequestSummaries(items []model.RequestItem) []RequestSummary {
	out := make([]RequestSummary, 0, len(items))
	for _, item := range items {
		out = append(out, RequestSummary{
			ID:        item.ID,
			Type:      item.Type,
			Name:      item.Name,
			Query:     item.Query,
			Status:    string(item.Status),
			Timestamp: formatTime(item.Timestamp),
		})
	}
	return out
}

func ToResolvedResponses(items []model.ResolvedRequestItem) []ResolvedRequestResponse {
	out := make([]ResolvedRequestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ResolvedRequestResponse{
			ID:             item.ID,
			OriginalID:     item.OriginalID,
			Type:           item.Type,
			UserID:         item.UserID,
			Name:           item.Name,
			Email:          item.Email,
			Mobile:         item.Mobile,
			Query:          item.Query,
			AgentID:        item.AgentID,
			Status:         string(item.Status),
			ResolutionNote: item.ResolutionNote,
			Timestamp:      formatTime(item.Timestamp),
			ResolvedAt:     formatTime(item.ResolvedAt),
			UpdatedAt:      formatTime(item.UpdatedAt),
		})
	}
	return out
}

// ToAgentResponse never carries the password hash.
func ToAgentResponse(item model.AgentItem) AgentResponse {
	chats := item.ActiveChats
	if chats == nil {
		chats = []string{}
	}
	return AgentResponse{
		ID:          item.ID,
		AgentID:     item.AgentID,
		Username:    item.Username,
		Name:        item.Name,
		Role:        item.Role,
		Status:      string(item.Status),
		ActiveChats: chats,
		LastActive:  formatTime(item.LastActive),
		CreatedAt:   formatTime(item.CreatedAt),
	}
}

func ToAgentResponses(items []model.AgentItem) []AgentResponse {
	out := make([]AgentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToAgentResponse(item))
	}
	return out
}

func ToAdminResponse(item model.AdminItem) AdminResponse {
	return AdminResponse{
		ID:       item.ID,
		Username: item.Username,
		Name:     item.Name,
		Role:     item.Role,
	}
}

func ToTicketResponse(item model.TicketItem) TicketResponse {
	return TicketResponse{
		ID:          item.ID,
		Name:        item.Name,
		Email:       item.Email,
		Phone:       item.Phone,
		Subject:     item.Subject,
		Category:    item.Category,
		Description: item.Description,
		Status:      string(item.Status),
		CreatedAt:   formatTime(item.CreatedAt),
		UpdatedAt:   formatTime(item.UpdatedAt),
	}
}

func ToTicketResponses(items []model.TicketItem) []TicketResponse {
	out := make([]TicketResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToTicketResponse(item))
	}
	return out
}

func ToAppointmentResponse(item model.AppointmentItem) AppointmentResponse {
	return AppointmentResponse{
		ID:              item.ID,
		Name:            item.Name,
		Email:           item.Email,
		MobileNumber:    item.Mobile,
		AppointmentDate: item.Date,
		AppointmentTime: item.Time,
		Purpose:         item.Purpose,
		Status:          string(item.Status),
		CreatedAt:       formatTime(item.CreatedAt),
		UpdatedAt:       formatTime(item.UpdatedAt),
	}
}

func ToAppointmentResponses(items []model.AppointmentItem) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToAppointmentResponse(item))
	}
	return out
}
