package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/infrastructure/translate"
	"hospital-scheduler/internal/scheduling"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Intent names understood by the fulfillment webhook
const (
	IntentDoctorList              = "GetDoctorList"
	IntentDoctorWorkingHours      = "GetDoctorWorkingHours"
	IntentDoctorsBySpecialization = "GetDoctorsBySpecialization"
	IntentAppointments            = "GetAppointments"
	IntentDoctorLeaves            = "GetDoctorLeaves"
	IntentContactDetails          = "GetContactDetails"
	IntentEmergencyHelp           = "GetEmergencyHelp"
	IntentWelcome                 = "Default Welcome Intent"
	IntentFallback                = "Default Fallback Intent"
)

const (
	webhookDoctorListLimit = 10

	MsgWebhookWelcome   = "Hello! Welcome to our hospital. How can I assist you today?"
	MsgWebhookFallback  = "I'm sorry, I didn't understand that. Could you please rephrase?"
	MsgWebhookUnknown   = "Sorry, I didn't understand that."
	MsgWebhookError     = "Something went wrong. Please try again later."
	MsgWebhookContact   = "Phone: +91-9876543210\nEmail: hospital@example.com"
	MsgWebhookEmergency = "For emergency help, call +91-9999999999."
)

var doctorPrefix = regexp.MustCompile(`(?i)^dr\.?\s*`)

type WebhookUsecase interface {
	// Fulfill answers one conversational request. It never fails; lookup
	// errors become a polite fallback reply.
	Fulfill(ctx context.Context, req *dto.WebhookRequest) *dto.WebhookResponse
}

type webhookUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	leaveRepo       repository.DoctorLeaveRepository
	appointmentRepo repository.AppointmentRepository
	translator      translate.Translator
	now             func() time.Time
}

func NewWebhookUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	leaveRepo repository.DoctorLeaveRepository,
	appointmentRepo repository.AppointmentRepository,
	translator translate.Translator,
) WebhookUsecase {
	return &webhookUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		leaveRepo:       leaveRepo,
		appointmentRepo: appointmentRepo,
		translator:      translator,
		now:             time.Now,
	}
}

func (u *webhookUsecase) Fulfill(ctx context.Context, req *dto.WebhookRequest) *dto.WebhookResponse {
	intent := req.QueryResult.Intent.DisplayName
	params := req.QueryResult.Parameters

	text, err := u.reply(ctx, intent, params)
	if err != nil {
		u.log.WithField("intent", intent).Warnf("Failed to fulfill webhook intent: %+v", err)
		text = MsgWebhookError
	}

	text = translate.Passthrough(ctx, u.translator, text, req.QueryResult.LanguageCode)
	return dto.NewWebhookResponse(text)
}

func (u *webhookUsecase) reply(ctx context.Context, intent string, params map[string]interface{}) (string, error) {
	switch intent {
	case IntentDoctorList:
		return u.doctorList(ctx)
	case IntentDoctorWorkingHours:
		return u.workingHours(ctx, nameParam(params, "doctorName"))
	case IntentDoctorsBySpecialization:
		return u.bySpecialization(ctx, stringParam(params, "specialization"))
	case IntentAppointments:
		return u.appointments(ctx, stringParam(params, "email"))
	case IntentDoctorLeaves:
		return u.doctorLeaves(ctx, nameParam(params, "person"))
	case IntentContactDetails:
		return MsgWebhookContact, nil
	case IntentEmergencyHelp:
		return MsgWebhookEmergency, nil
	case IntentWelcome:
		return MsgWebhookWelcome, nil
	case IntentFallback:
		return MsgWebhookFallback, nil
	default:
		return MsgWebhookUnknown, nil
	}
}

func (u *webhookUsecase) doctorList(ctx context.Context) (string, error) {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db, entity.DoctorFilter{})
	if err != nil {
		return "", err
	}
	if len(doctors) == 0 {
		return "We have no doctors listed yet.", nil
	}

	var b strings.Builder
	b.WriteString("Here are our doctors:")
	for i, doc := range doctors {
		if i == webhookDoctorListLimit {
			b.WriteString("\n...and more. Please refine your search.")
			break
		}
		fmt.Fprintf(&b, "\n%d. Dr. %s - %s", i+1, doc.Name, doc.Specialization)
	}
	return b.String(), nil
}

func (u *webhookUsecase) workingHours(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "Please specify the doctor's name.", nil
	}

	doctor, err := u.findDoctorByName(ctx, name)
	if err != nil {
		return "", err
	}
	if doctor == nil {
		return fmt.Sprintf("Sorry, I couldn't find Dr. %s.", name), nil
	}
	return fmt.Sprintf("Dr. %s is available from %s to %s", doctor.Name, doctor.WorkStart, doctor.WorkEnd), nil
}

func (u *webhookUsecase) bySpecialization(ctx context.Context, specialization string) (string, error) {
	if specialization == "" {
		return "Please specify a specialization.", nil
	}

	doctors, err := u.doctorRepo.FindAll(ctx, u.db, entity.DoctorFilter{Specialization: specialization})
	if err != nil {
		return "", err
	}
	if len(doctors) == 0 {
		return fmt.Sprintf("No doctors found for specialization: %s", specialization), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the %s specialists:", specialization)
	for i, doc := range doctors {
		fmt.Fprintf(&b, "\n%d. Dr. %s (%s)", i+1, doc.Name, doc.Designation)
	}
	return b.String(), nil
}

func (u *webhookUsecase) appointments(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "Please share the email you booked with.", nil
	}

	appts, err := u.appointmentRepo.FindAll(ctx, u.db, entity.AppointmentFilter{PatientEmail: email})
	if err != nil {
		return "", err
	}
	if len(appts) == 0 {
		return "You have no appointments.", nil
	}

	var b strings.Builder
	b.WriteString("Here are your appointments:")
	for _, a := range appts {
		fmt.Fprintf(&b, "\nOn %s at %s, with Dr. %s, for %s - Status: %s",
			a.Date.Format(scheduling.DateLayout), a.Time, a.Doctor, a.Reason, a.Status)
	}
	return b.String(), nil
}

func (u *webhookUsecase) doctorLeaves(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "Please specify the doctor's name.", nil
	}

	doctor, err := u.findDoctorByName(ctx, name)
	if err != nil {
		return "", err
	}
	if doctor == nil {
		return fmt.Sprintf("No current leave found for Dr. %s.", name), nil
	}

	leaves, err := u.leaveRepo.FindByDoctorEmail(ctx, u.db, doctor.Email)
	if err != nil {
		return "", err
	}

	today, err := scheduling.ParseDate(scheduling.DateOf(u.now()))
	if err != nil {
		return "", err
	}
	for _, l := range leaves {
		if l.Status == entity.LeaveStatusApproved && !l.ToDate.Before(today) {
			return fmt.Sprintf("Dr. %s is on leave from %s to %s.", doctor.Name,
				l.FromDate.Format(scheduling.DateLayout), l.ToDate.Format(scheduling.DateLayout)), nil
		}
	}
	return fmt.Sprintf("No current leave found for Dr. %s.", doctor.Name), nil
}

func (u *webhookUsecase) findDoctorByName(ctx context.Context, name string) (*entity.Doctor, error) {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db, entity.DoctorFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return nil, nil
	}
	return &doctors[0], nil
}

// nameParam reads a person parameter, which arrives either as a plain
// string or as an object with a name field, and drops a "Dr." prefix.
func nameParam(params map[string]interface{}, key string) string {
	var name string
	switch v := params[key].(type) {
	case string:
		name = v
	case map[string]interface{}:
		name, _ = v["name"].(string)
	}
	return strings.TrimSpace(doctorPrefix.ReplaceAllString(strings.TrimSpace(name), ""))
}

func stringParam(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return strings.TrimSpace(s)
}
