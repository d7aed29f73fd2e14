package model

import "time"

type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "online"
	AgentStatusBusy    AgentStatus = "busy"
	AgentStatusOffline AgentStatus = "offline"
)

func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusOnline, AgentStatusBusy, AgentStatusOffline:
		return true
	}
	return false
}

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

type AgentItem struct {
	ID           string      `bson:"_id" dynamodbav:"id"`
	AgentID      string      `bson:"agentId" dynamodbav:"agentId"`
	Name         string      `bson:"name" dynamodbav:"name"`
	Username     string      `bson:"username" dynamodbav:"username"`
	PasswordHash string      `bson:"password" dynamodbav:"password"`
	Role         string      `bson:"role" dynamodbav:"role"`
	Status       AgentStatus `bson:"status" dynamodbav:"status"`
	ActiveChats  []string    `bson:"activeChats" dynamodbav:"activeChats"`
	LastActive   time.Time   `bson:"lastActive" dynamodbav:"lastActive"`
	CreatedAt    time.Time   `bson:"createdAt" dynamodbav:"createdAt"`
}

type AdminItem struct {
	ID           string    `bson:"_id" dynamodbav:"id"`
	Username     string    `bson:"username" dynamodbav:"username"`
	Name         string    `bson:"name,omitempty" dynamodbav:"name,omitempty"`
	PasswordHash string    `bson:"password" dynamodbav:"password"`
	Role         string    `bson:"role" dynamodbav:"role"`
	CreatedAt    time.Time `bson:"createdAt" dynamodbav:"createdAt"`
}
