package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/delivery/http/middleware"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrDisruptionPersist = errors.New("no affected appointment could be updated")
	ErrNotOwnCalendar    = errors.New("doctors can only manage their own calendar")
)

// DisruptionResult summarises one disruption run. Notified counts appointments
// selected and persisted with a token; delivery failures do not reduce it.
type DisruptionResult struct {
	Selected         int
	Notified         int
	DeliveryFailures int
	PersistFailures  int
}

type DisruptionUsecase interface {
	// HandleDisruption issues reschedule tokens for every non-Completed
	// appointment of doctor on day at or after cutoff (IST clock). A nil
	// cutoff means the whole day.
	HandleDisruption(ctx context.Context, doctor *entity.Doctor, day time.Time, cutoff *time.Time) (*DisruptionResult, error)
	CancelDay(ctx context.Context, req *dto.CancelDayRequest) (*dto.DisruptionResponse, error)
}

type disruptionUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	notifier        service.NotificationService
	auditService    service.AuditService
	tokenTTL        time.Duration
	concurrency     int
	now             func() time.Time
}

func NewDisruptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	notifier service.NotificationService,
	auditService service.AuditService,
	tokenTTL time.Duration,
	concurrency int,
) DisruptionUsecase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &disruptionUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		auditService:    auditService,
		tokenTTL:        tokenTTL,
		concurrency:     concurrency,
		now:             time.Now,
	}
}

// CutoffClock renders a disruption cutoff as the "HH:MM" IST clock used for selection
func CutoffClock(cutoff *time.Time) string {
	if cutoff == nil {
		return "00:00"
	}
	return scheduling.ClockAt(*cutoff)
}

// HandleDisruption fans out one goroutine per affected appointment, bounded by
// the configured concurrency, and waits for all of them.
//
// Per appointment:
// 1. Issue a fresh token, expiring now + tokenTTL (supersedes any older token)
// 2. Persist it; on failure skip the notification and count a persist failure
// 3. Email the reschedule link; on failure log and count a delivery failure
func (u *disruptionUsecase) HandleDisruption(ctx context.Context, doctor *entity.Doctor, day time.Time, cutoff *time.Time) (*DisruptionResult, error) {
	// the availability flag is already written; a dropped request must not cut the fan-out short
	ctx = context.WithoutCancel(ctx)
	cutoffClock := CutoffClock(cutoff)
	dateISO := day.Format(scheduling.DateLayout)

	appts, err := u.appointmentRepo.FindImpacted(ctx, u.db, doctor.Email, day, cutoffClock)
	if err != nil {
		u.log.Warnf("Failed to find impacted appointments for %s on %s: %+v", doctor.Email, dateISO, err)
		return nil, err
	}

	result := &DisruptionResult{Selected: len(appts)}
	if len(appts) == 0 {
		return result, nil
	}

	var notified, deliveryFailures, persistFailures atomic.Int32
	expires := u.now().Add(u.tokenTTL)

	var g errgroup.Group
	g.SetLimit(u.concurrency)

	for i := range appts {
		appt := appts[i]
		g.Go(func() error {
			entry := u.log.WithFields(logrus.Fields{
				"appointment_id": appt.ID,
				"doctor":         doctor.Email,
				"date":           dateISO,
				"time":           appt.Time,
			})

			token := uuid.NewString()
			if err := u.appointmentRepo.SetRescheduleToken(ctx, u.db, appt.ID, token, expires); err != nil {
				entry.Errorf("Failed to persist reschedule token: %+v", err)
				persistFailures.Add(1)
				return nil
			}
			notified.Add(1)

			appt.RescheduleToken = &token
			appt.RescheduleExpires = &expires
			if err := u.notifier.SendRescheduleRequest(ctx, &appt, token); err != nil {
				entry.Errorf("Failed to send reschedule request to %s: %+v", appt.Email, err)
				deliveryFailures.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Notified = int(notified.Load())
	result.DeliveryFailures = int(deliveryFailures.Load())
	result.PersistFailures = int(persistFailures.Load())

	u.log.WithFields(logrus.Fields{
		"doctor":            doctor.Email,
		"date":              dateISO,
		"cutoff":            cutoffClock,
		"selected":          result.Selected,
		"notified":          result.Notified,
		"delivery_failures": result.DeliveryFailures,
		"persist_failures":  result.PersistFailures,
	}).Info("Disruption handled")

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogUpdate(ctx, u.db, staffID, entity.AuditActionDoctorDisruption, doctor.Email, nil, map[string]interface{}{
		"date":     dateISO,
		"cutoff":   cutoffClock,
		"selected": result.Selected,
		"notified": result.Notified,
	})

	if result.Notified == 0 && result.PersistFailures > 0 {
		return result, ErrDisruptionPersist
	}
	return result, nil
}

// CancelDay marks the doctor unavailable and asks every patient of that day to rebook
func (u *disruptionUsecase) CancelDay(ctx context.Context, req *dto.CancelDayRequest) (*dto.DisruptionResponse, error) {
	day, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if err := ensureOwnCalendar(ctx, req.DoctorEmail); err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByEmail(ctx, u.db, req.DoctorEmail)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorEmail, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	now := u.now()
	if err := u.doctorRepo.SetAvailability(ctx, u.db, doctor.Email, false, &now); err != nil {
		u.log.Warnf("Failed to mark %s unavailable: %+v", doctor.Email, err)
		return nil, err
	}

	result, err := u.HandleDisruption(ctx, doctor, day, nil)
	if err != nil {
		return nil, err
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogUpdate(ctx, u.db, staffID, entity.AuditActionDoctorCancelDay, doctor.Email,
		map[string]interface{}{"availability": doctor.Availability},
		map[string]interface{}{"availability": false, "date": req.Date, "notified": result.Notified},
	)

	message := "No appointments to cancel"
	if result.Notified > 0 {
		message = fmt.Sprintf("Notified %d patients", result.Notified)
	}

	return &dto.DisruptionResponse{
		Message:          message,
		Notified:         result.Notified,
		DeliveryFailures: result.DeliveryFailures,
	}, nil
}

// ensureOwnCalendar lets admins act on any doctor and doctors only on themselves
func ensureOwnCalendar(ctx context.Context, doctorEmail string) error {
	role, ok := middleware.GetRoleFromContext(ctx)
	if !ok || role != entity.RoleDoctor {
		return nil
	}
	email, _ := middleware.GetStaffEmailFromContext(ctx)
	if email != doctorEmail {
		return ErrNotOwnCalendar
	}
	return nil
}
