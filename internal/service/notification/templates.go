package notification

import (
	"bytes"
	"html/template"
	"time"

	"support-desk/internal/model"
)

const (
	CategoryProducts     = "Products/Services Request"
	CategoryPricing      = "Pricing Request"
	CategoryCustomers    = "Customers Request"
	CategoryAppointment  = "Appointment Request"
	CategoryCanceledForm = "User Canceled Form"
	DefaultCategory      = "Sensitive"
)

type alertData struct {
	Category string
	Query    string
	UserName string
	Email    string
	Mobile   string
	Time     string
}

type alertTemplate struct {
	subject string
	body    *template.Template
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(template.FuncMap{
		"orNA": func(s string) string {
			if s == "" {
				return "Not provided"
			}
			return s
		},
	}).Parse(body))
}

const contactLines = `<p><strong>Name:</strong> {{orNA .UserName}}</p>
<p><strong>Email:</strong> {{orNA .Email}}</p>
<p><strong>Mobile:</strong> {{orNA .Mobile}}</p>
<p><strong>Message:</strong> {{.Query}}</p>
<p><strong>Time:</strong> {{.Time}}</p>`

var alertTemplates = map[string]alertTemplate{
	CategoryProducts: {
		subject: "Request for Products/Services Information",
		body: mustTemplate("products", `<h2>Products/Services Information Request</h2>
<p>A user has requested information about your products and services.</p>
`+contactLines+`
<p>Please send them your product catalog and service information.</p>`),
	},
	CategoryPricing: {
		subject: "Request for Pricing Information",
		body: mustTemplate("pricing", `<h2>Pricing Information Request</h2>
<p>A user has requested pricing information.</p>
`+contactLines+`
<p>Please send them your pricing details.</p>`),
	},
	CategoryCustomers: {
		subject: "Request for Customer References",
		body: mustTemplate("customers", `<h2>Customer References Request</h2>
<p>A user has requested information about your customers and case studies.</p>
`+contactLines+`
<p>Please send them your customer success stories and references.</p>`),
	},
	CategoryAppointment: {
		subject: "New Appointment Request Received",
		body: mustTemplate("appointment-request", `<h2>New Appointment Request</h2>
<p><strong>Name:</strong> {{orNA .UserName}}</p>
<p><strong>Email:</strong> {{orNA .Email}}</p>
<p><strong>Mobile:</strong> {{orNA .Mobile}}</p>
<p><strong>Appointment Purpose:</strong> {{.Query}}</p>`),
	},
	CategoryCanceledForm: {
		subject: "Alert: User Canceled Form",
		body: mustTemplate("canceled", `<h2>User Canceled Form Alert</h2>
<p>A user started but canceled the contact form. They may still need assistance.</p>
<p><strong>Query:</strong> {{.Query}}</p>
<p><strong>User:</strong> {{orNA .UserName}}</p>
<p><strong>Email:</strong> {{orNA .Email}}</p>
<p><strong>Time:</strong> {{.Time}}</p>`),
	},
}

var defaultAlertBody = mustTemplate("default", `<h2>Sensitive Query Alert</h2>
<p><strong>Category:</strong> {{.Category}}</p>
<p><strong>Query:</strong> {{.Query}}</p>
<p><strong>User:</strong> {{orNA .UserName}}</p>
<p><strong>Email:</strong> {{orNA .Email}}</p>
<p><strong>Mobile:</strong> {{orNA .Mobile}}</p>
<p><strong>Time:</strong> {{.Time}}</p>`)

// renderAlert picks the category template, falling back to the sensitive query alert.
func renderAlert(data alertData) (subject, body string, err error) {
	tmpl, ok := alertTemplates[data.Category]
	if !ok {
		tmpl = alertTemplate{subject: "Alert: " + data.Category + " Query Received", body: defaultAlertBody}
	}
	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return tmpl.subject, buf.String(), nil
}

var customerAppointmentBody = mustTemplate("appointment-customer", `<h2>Appointment Confirmation</h2>
<p>Dear {{.Name}},</p>
<p>Your appointment has been successfully booked. Here are the details:</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>Purpose:</strong> {{.Purpose}}</p>
<p>We will contact you shortly to confirm your appointment.</p>
<p>Best regards,<br>Support Team</p>`)

var companyAppointmentBody = mustTemplate("appointment-company", `<h2>New Appointment Booking</h2>
<p>A new appointment has been booked. Here are the details:</p>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Mobile:</strong> {{.Mobile}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>Purpose:</strong> {{.Purpose}}</p>`)

func renderAppointment(tmpl *template.Template, appointment model.AppointmentItem) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, appointment); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatAlertTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}
