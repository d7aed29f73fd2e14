package model

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusClosed   RequestStatus = "closed"
)

const DefaultRequestType = "chat"

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusClosed:
		return true
	}
	return false
}

type RequestItem struct {
	ID        string        `bson:"_id" dynamodbav:"id"`
	Type      string        `bson:"type" dynamodbav:"type"`
	UserID    string        `bson:"userId" dynamodbav:"userId"`
	SocketID  string        `bson:"socketId,omitempty" dynamodbav:"socketId,omitempty"`
	Name      string        `bson:"name" dynamodbav:"name"`
	Email     string        `bson:"email" dynamodbav:"email"`
	Mobile    string        `bson:"mobile" dynamodbav:"mobile"`
	Query     string        `bson:"query" dynamodbav:"query"`
	Status    RequestStatus `bson:"status" dynamodbav:"status"`
	AgentID   string        `bson:"agentId,omitempty" dynamodbav:"agentId,omitempty"`
	Timestamp time.Time     `bson:"timestamp" dynamodbav:"timestamp"`
	UpdatedAt time.Time     `bson:"updatedAt" dynamodbav:"updatedAt"`
}

type ResolutionStatus string

const (
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionUnresolved ResolutionStatus = "unresolved"
)

// ResolvedRequestItem is the archived copy of a request whose chat was closed.
type ResolvedRequestItem struct {
	ID             string           `bson:"_id" dynamodbav:"id"`
	OriginalID     string           `bson:"originalId" dynamodbav:"originalId"`
	Type           string           `bson:"type" dynamodbav:"type"`
	UserID         string           `bson:"userId" dynamodbav:"userId"`
	SocketID       string           `bson:"socketId,omitempty" dynamodbav:"socketId,omitempty"`
	Name           string           `bson:"name" dynamodbav:"name"`
	Email          string           `bson:"email" dynamodbav:"email"`
	Mobile         string           `bson:"mobile" dynamodbav:"mobile"`
	Query          string           `bson:"query" dynamodbav:"query"`
	AgentID        string           `bson:"agentId,omitempty" dynamodbav:"agentId,omitempty"`
	Status         ResolutionStatus `bson:"status" dynamodbav:"status"`
	ResolutionNote string           `bson:"resolutionNote,omitempty" dynamodbav:"resolutionNote,omitempty"`
	Timestamp      time.Time        `bson:"timestamp" dynamodbav:"timestamp"`
	ResolvedAt     time.Time        `bson:"resolvedAt" dynamodbav:"resolvedAt"`
	UpdatedAt      time.Time        `bson:"updatedAt" dynamodbav:"updatedAt"`
}
