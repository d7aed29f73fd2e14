package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// AppointmentDateLayout is the storage format of AppointmentItem.Date.
const AppointmentDateLayout = "2006-01-02"

type AppointmentItem struct {
	ID        string            `bson:"_id" dynamodbav:"id"`
	Name      string            `bson:"name" dynamodbav:"name"`
	Email     string            `bson:"email" dynamodbav:"email"`
	Mobile    string            `bson:"mobile" dynamodbav:"mobile"`
	Date      string            `bson:"appointmentDate" dynamodbav:"appointmentDate"`
	Time      string            `bson:"appointmentTime" dynamodbav:"appointmentTime"`
	Purpose   string            `bson:"purpose" dynamodbav:"purpose"`
	Status    AppointmentStatus `bson:"status" dynamodbav:"status"`
	CreatedAt time.Time         `bson:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" dynamodbav:"updatedAt"`
}

type AppointmentSlotItem struct {
	Slot          string `dynamodbav:"slot"`
	AppointmentID string `dynamodbav:"appointmentId"`
}
