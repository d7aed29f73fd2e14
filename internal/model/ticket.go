package model

import "time"

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

type TicketItem struct {
	ID          string       `bson:"_id" dynamodbav:"id"`
	Name        string       `bson:"name" dynamodbav:"name"`
	Email       string       `bson:"email" dynamodbav:"email"`
	Phone       string       `bson:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Subject     string       `bson:"subject" dynamodbav:"subject"`
	Category    string       `bson:"category" dynamodbav:"category"`
	Description string       `bson:"description" dynamodbav:"description"`
	Status      TicketStatus `bson:"status" dynamodbav:"status"`
	CreatedAt   time.Time    `bson:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt" dynamodbav:"updatedAt"`
}
