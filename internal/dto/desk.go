package dto

type CreateTicketRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Subject     string `json:"subject"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type TicketResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Subject     string `json:"subject"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type CreateTicketResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticketId"`
}

type TicketListResponse struct {
	Success bool             `json:"success"`
	Tickets []TicketResponse `json:"tickets"`
}

type TicketEnvelope struct {
	Success bool           `json:"success"`
	Ticket  TicketResponse `json:"ticket"`
}

type BookAppointmentRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	MobileNumber    string `json:"mobileNumber"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Purpose         string `json:"purpose"`
}

type AppointmentResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	MobileNumber    string `json:"mobileNumber"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Purpose         string `json:"purpose"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

type BookAppointmentResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Appointment AppointmentResponse `json:"appointment"`
}

type AppointmentListResponse struct {
	Success      bool                  `json:"success"`
	Appointments []AppointmentResponse `json:"appointments"`
}

type AppointmentEnvelope struct {
	Success     bool                `json:"success"`
	Appointment AppointmentResponse `json:"appointment"`
}

type NotifyRequest struct {
	Query      string `json:"query"`
	UserName   string `json:"userName"`
	UserEmail  string `json:"userEmail"`
	Mobile     string `json:"mobile"`
	Category   string `json:"category"`
	ForceAlert bool   `json:"forceAlert"`
}

type MissingFieldsResponse struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Time    string `json:"time"`
}
