package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/infrastructure/mail"
)

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "reschedule_request"}}<p>Dear {{.Name}},</p>
<p>Your appointment with {{.Doctor}} on {{.Date}} at {{.Time}} cannot take place as planned.</p>
<p>Please choose a new slot within 24 hours: <a href="{{.Link}}">{{.Link}}</a></p>
<p>We apologise for the inconvenience.</p>{{end}}

{{define "reschedule_confirmation"}}<p>Dear {{.Name}},</p>
<p>Your appointment with {{.Doctor}} has been moved to {{.Date}} at {{.Time}}.</p>{{end}}

{{define "booking_confirmation"}}<p>Dear {{.Name}},</p>
<p>Your appointment with {{.Doctor}} is confirmed for {{.Date}} at {{.Time}}.</p>
<p>Reason: {{.Reason}}</p>{{end}}

{{define "visit_completed"}}<p>Dear {{.Name}},</p>
<p>Your visit with {{.Doctor}} on {{.Date}} is complete. Thank you for choosing us.</p>{{end}}
`))

type mailData struct {
	Name   string
	Doctor string
	Date   string
	Time   string
	Reason string
	Link   string
}

// NotificationService renders patient emails and hands them to a Mailer
type NotificationService interface {
	SendRescheduleRequest(ctx context.Context, appt *entity.Appointment, token string) error
	SendRescheduleConfirmation(ctx context.Context, appt *entity.Appointment) error
	SendBookingConfirmation(ctx context.Context, appt *entity.Appointment) error
	SendVisitCompleted(ctx context.Context, appt *entity.Appointment) error
}

type notificationService struct {
	mailer        mail.Mailer
	clientBaseURL string
}

func NewNotificationService(mailer mail.Mailer, clientBaseURL string) NotificationService {
	return &notificationService{
		mailer:        mailer,
		clientBaseURL: strings.TrimRight(clientBaseURL, "/"),
	}
}

// RescheduleLink is the patient-facing URL for a token
func RescheduleLink(clientBaseURL, token string) string {
	return strings.TrimRight(clientBaseURL, "/") + "/reschedule/" + token
}

func (s *notificationService) SendRescheduleRequest(ctx context.Context, appt *entity.Appointment, token string) error {
	data := dataFor(appt)
	data.Link = RescheduleLink(s.clientBaseURL, token)
	return s.send(ctx, appt.Email, "Please reschedule your appointment", "reschedule_request", data)
}

func (s *notificationService) SendRescheduleConfirmation(ctx context.Context, appt *entity.Appointment) error {
	return s.send(ctx, appt.Email, "Appointment rescheduled", "reschedule_confirmation", dataFor(appt))
}

func (s *notificationService) SendBookingConfirmation(ctx context.Context, appt *entity.Appointment) error {
	return s.send(ctx, appt.Email, "Appointment confirmed", "booking_confirmation", dataFor(appt))
}

func (s *notificationService) SendVisitCompleted(ctx context.Context, appt *entity.Appointment) error {
	return s.send(ctx, appt.Email, "Thank you for your visit", "visit_completed", dataFor(appt))
}

func (s *notificationService) send(ctx context.Context, to, subject, tmpl string, data mailData) error {
	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}
	return s.mailer.Send(ctx, to, subject, body.String())
}

func dataFor(appt *entity.Appointment) mailData {
	return mailData{
		Name:   appt.FullName,
		Doctor: appt.Doctor,
		Date:   appt.Date.Format("2006-01-02"),
		Time:   appt.Time,
		Reason: appt.Reason,
	}
}
