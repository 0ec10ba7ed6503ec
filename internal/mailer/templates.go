package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// BookingPayload is the template data carried in a booking notification's
// outbox payload. Dates are pre-formatted by the producer.
type BookingPayload struct {
	Name          string `json:"name"`
	ReferenceKind string `json:"reference_kind"` // "package" or "destination"
	ReferenceName string `json:"reference_name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type renderedEmail struct {
	Subject string
	Body    string
}

var bookingConfirmationTmpl = template.Must(template.New(models.TemplateBookingConfirmation).Parse(`
<h1>Booking Confirmation</h1>
<p>Thank you for your booking, {{.Name}}!</p>
<p>Your booking details:</p>
<ul>
  <li>Type: {{.ReferenceKind}}</li>
  <li>Name: {{.ReferenceName}}</li>
  <li>Start Date: {{.StartDate}}</li>
  <li>End Date: {{.EndDate}}</li>
</ul>
<p>We will contact you shortly with more information.</p>
<p>If you have any questions, please contact us at {{.Support}}.</p>
<p>Best regards,<br>The Sol Of African Team</p>
`))

var bookingApprovedTmpl = template.Must(template.New(models.TemplateBookingApproved).Parse(`
<h1>Your Booking Has Been Approved!</h1>
<p>Dear {{.Name}},</p>
<p>We are pleased to inform you that your booking for the {{.ReferenceKind}} "{{.ReferenceName}}" has been approved.</p>
<p>Booking details:</p>
<ul>
  <li>Start Date: {{.StartDate}}</li>
  <li>End Date: {{.EndDate}}</li>
</ul>
<p>If you have any questions or need further assistance, please don't hesitate to contact us at our official number: {{.Support}}.</p>
<p>We look forward to providing you with an unforgettable experience!</p>
<p>Best regards,<br>The Sol Of African Team</p>
`))

var bookingRejectedTmpl = template.Must(template.New(models.TemplateBookingRejected).Parse(`
<h1>Booking Update</h1>
<p>Dear {{.Name}},</p>
<p>We regret to inform you that your booking for the {{.ReferenceKind}} "{{.ReferenceName}}" could not be confirmed at this time.</p>
<p>Booking details:</p>
<ul>
  <li>Start Date: {{.StartDate}}</li>
  <li>End Date: {{.EndDate}}</li>
</ul>
<p>If you have any questions or would like to explore alternative options, please don't hesitate to contact us at our official number: {{.Support}}.</p>
<p>We apologize for any inconvenience and hope to assist you with future travel plans.</p>
<p>Best regards,<br>The Sol Of African Team</p>
`))

var newsletterWelcomeTmpl = template.Must(template.New(models.TemplateNewsletterWelcome).Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #ea580c;">The Sol Of African Tours and Travel Newsletter!</h1>
  <p>Thank you for subscribing to our newsletter. We're excited to share our latest safari travel tips and sustainable destinations with you.</p>
  <p>Here's what you can expect from us:</p>
  <ul>
    <li>Exclusive travel deals and packages</li>
    <li>Tips for planning your African safari</li>
    <li>Updates about new destinations and experiences</li>
    <li>Sustainable travel insights</li>
  </ul>
  <p>Stay tuned for our upcoming newsletters!</p>
  <p style="color: #666; font-size: 12px; margin-top: 20px;">
    If you didn't subscribe to our newsletter, please ignore this email.
  </p>
</div>
`))

type bookingTemplateData struct {
	BookingPayload
	Support string
}

// render produces the subject and HTML body for an outbox row.
func render(templateName, payload string) (renderedEmail, error) {
	switch templateName {
	case models.TemplateBookingConfirmation:
		return renderBooking(bookingConfirmationTmpl, "Booking Confirmation", payload)
	case models.TemplateBookingApproved:
		return renderBooking(bookingApprovedTmpl, "Booking Approved - The Sol Of African", payload)
	case models.TemplateBookingRejected:
		return renderBooking(bookingRejectedTmpl, "Booking Update - The Sol Of African", payload)
	case models.TemplateNewsletterWelcome:
		var buf bytes.Buffer
		if err := newsletterWelcomeTmpl.Execute(&buf, nil); err != nil {
			return renderedEmail{}, fmt.Errorf("render welcome email: %w", err)
		}
		return renderedEmail{Subject: "Welcome to Our Newsletter!", Body: buf.String()}, nil
	default:
		return renderedEmail{}, fmt.Errorf("unknown email template: %s", templateName)
	}
}

func renderBooking(tmpl *template.Template, subject, payload string) (renderedEmail, error) {
	var data bookingTemplateData
	if err := json.Unmarshal([]byte(payload), &data.BookingPayload); err != nil {
		return renderedEmail{}, fmt.Errorf("decode booking payload: %w", err)
	}
	data.Support = models.SupportContact

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return renderedEmail{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return renderedEmail{Subject: subject, Body: buf.String()}, nil
}
