package model

import "time"

type ChatStatus string

const (
	ChatStatusPending ChatStatus = "pending"
	ChatStatusActive  ChatStatus = "active"
	ChatStatusClosed  ChatStatus = "closed"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
	MessageTypeButton MessageType = "button"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

const SystemSenderID = "system"

type ChatItem struct {
	ChatID         string        `bson:"_id" dynamodbav:"chatId"`
	UserID         string        `bson:"userId" dynamodbav:"userId"`
	SocketID       string        `bson:"socketId,omitempty" dynamodbav:"socketId,omitempty"`
	AgentID        string        `bson:"agentId,omitempty" dynamodbav:"agentId,omitempty"`
	Messages       []ChatMessage `bson:"messages" dynamodbav:"messages"`
	Status         ChatStatus    `bson:"status" dynamodbav:"status"`
	ResolutionNote string        `bson:"resolutionNote,omitempty" dynamodbav:"resolutionNote,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" dynamodbav:"updatedAt"`
}

type ChatMessage struct {
	ID        string        `bson:"id" dynamodbav:"id"`
	SenderID  string        `bson:"senderId" dynamodbav:"senderId"`
	Message   string        `bson:"message" dynamodbav:"message"`
	Type      MessageType   `bson:"type" dynamodbav:"type"`
	Status    MessageStatus `bson:"status" dynamodbav:"status"`
	Timestamp time.Time     `bson:"timestamp" dynamodbav:"timestamp"`
}

// FindMessage returns the index of the message with the given id, or -1.
func (c ChatItem) FindMessage(messageID string) int {
	for i, m := range c.Messages {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}
