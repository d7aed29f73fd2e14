package model

import "fmt"

// Table names double as MongoDB collection names.
const (
	RequestsTable         = "Requests"
	ChatsTable            = "Chats"
	AgentsTable           = "Agents"
	AdminsTable           = "Admins"
	ResolvedRequestsTable = "ResolvedRequests"
	TicketsTable          = "Tickets"
	AppointmentsTable     = "Appointments"
	// AppointmentSlotsTable holds one item per booked date/time so DynamoDB can reject double bookings.
	AppointmentSlotsTable = "AppointmentSlots"
)

// AllTables lists every table with its partition key attribute.
var AllTables = map[string]string{
	RequestsTable:         "id",
	ChatsTable:            "chatId",
	AgentsTable:           "id",
	AdminsTable:           "id",
	ResolvedRequestsTable: "id",
	TicketsTable:          "id",
	AppointmentsTable:     "id",
	AppointmentSlotsTable: "slot",
}

func AppointmentSlotKey(date, clock string) string {
	return fmt.Sprintf("%s#%s", date, clock)
}
