package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-scheduler/internal/converter"
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound = errors.New("reschedule link is invalid or has expired")
)

const MsgRescheduled = "Rescheduled"

type RescheduleUsecase interface {
	// FetchSession resolves a live token to its appointment and the doctor's
	// grid for date (IST today when empty). The appointment's own slot is
	// never shown as booked.
	FetchSession(ctx context.Context, token, date string) (*dto.RescheduleSessionResponse, error)
	// CommitReschedule moves the appointment and consumes the token. A lost
	// race returns *SlotConflictError with a refreshed grid and leaves the
	// token usable.
	CommitReschedule(ctx context.Context, token string, req *dto.CommitRescheduleRequest) (*dto.CommitRescheduleResponse, error)
}

type rescheduleUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	slotUsecase     SlotUsecase
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	locker          service.Locker
	notifier        service.NotificationService
	auditService    service.AuditService
	now             func() time.Time
}

func NewRescheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	slotUsecase SlotUsecase,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	locker service.Locker,
	notifier service.NotificationService,
	auditService service.AuditService,
) RescheduleUsecase {
	return &rescheduleUsecase{
		db:              db,
		log:             log,
		slotUsecase:     slotUsecase,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		locker:          locker,
		notifier:        notifier,
		auditService:    auditService,
		now:             time.Now,
	}
}

func (u *rescheduleUsecase) FetchSession(ctx context.Context, token, date string) (*dto.RescheduleSessionResponse, error) {
	appt, doctor, err := u.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if date == "" {
		date = scheduling.DateOf(u.now())
	}
	day, err := scheduling.ParseDate(date)
	if err != nil {
		return nil, err
	}

	slots, err := u.slotUsecase.BookedGrid(ctx, doctor, day, &appt.ID)
	if err != nil {
		return nil, err
	}

	return &dto.RescheduleSessionResponse{
		Appointment: *converter.AppointmentToResponse(appt),
		Date:        date,
		Slots:       slots,
	}, nil
}

func (u *rescheduleUsecase) CommitReschedule(ctx context.Context, token string, req *dto.CommitRescheduleRequest) (*dto.CommitRescheduleResponse, error) {
	day, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	clock, err := scheduling.NormalizeClock(req.Time)
	if err != nil {
		return nil, err
	}
	if isPastDay(day, u.now()) {
		return nil, ErrSlotInPast
	}

	appt, doctor, err := u.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	grid, err := u.slotUsecase.BookedGrid(ctx, doctor, day, &appt.ID)
	if err != nil {
		return nil, err
	}
	slot, ok := scheduling.FindSlot(grid, clock)
	if !ok {
		return nil, ErrSlotNotOnGrid
	}
	if slot.Past {
		return nil, ErrSlotInPast
	}

	old := map[string]interface{}{"date": appt.Date.Format(scheduling.DateLayout), "time": appt.Time}
	lockKey := service.SlotLockKey(doctor.Email, req.Date, clock)

	err = u.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		clash, err := u.appointmentRepo.FindBySlot(ctx, u.db, doctor.Email, day, clock, &appt.ID)
		if err != nil {
			return err
		}
		if clash != nil {
			return ErrSlotConflict
		}

		rows, err := u.appointmentRepo.Reschedule(ctx, u.db, appt.ID, token, day, clock, u.now())
		if err != nil {
			if isDuplicateKeyError(err, entity.SlotIndexName) {
				return ErrSlotConflict
			}
			return err
		}
		if rows == 0 {
			return ErrTokenNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) || errors.Is(err, service.ErrLockNotAcquired) {
			return nil, u.conflict(ctx, doctor, day, appt)
		}
		if !errors.Is(err, ErrTokenNotFound) {
			u.log.Warnf("Failed to reschedule appointment %s: %+v", appt.ID, err)
		}
		return nil, err
	}

	appt.Date = day
	appt.Time = clock
	appt.Status = entity.AppointmentStatusPending
	appt.RescheduleToken = nil
	appt.RescheduleExpires = nil

	if err := u.notifier.SendRescheduleConfirmation(ctx, appt); err != nil {
		u.log.Warnf("Failed to send reschedule confirmation to %s: %+v", appt.Email, err)
	}

	_ = u.auditService.LogUpdate(ctx, u.db, nil, entity.AuditActionAppointmentReschedule, appt.ID.String(), old,
		map[string]interface{}{"date": req.Date, "time": clock},
	)

	return &dto.CommitRescheduleResponse{
		Appointment: *converter.AppointmentToResponse(appt),
		Message:     MsgRescheduled,
	}, nil
}

func (u *rescheduleUsecase) resolve(ctx context.Context, token string) (*entity.Appointment, *entity.Doctor, error) {
	if token == "" {
		return nil, nil, ErrTokenNotFound
	}

	appt, err := u.appointmentRepo.FindByRescheduleToken(ctx, u.db, token, u.now())
	if err != nil {
		u.log.Warnf("Failed to find appointment by reschedule token: %+v", err)
		return nil, nil, err
	}
	if appt == nil {
		return nil, nil, ErrTokenNotFound
	}

	doctor, err := u.doctorRepo.FindByEmail(ctx, u.db, appt.DoctorEmail)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", appt.DoctorEmail, err)
		return nil, nil, err
	}
	if doctor == nil {
		return nil, nil, ErrDoctorNotFound
	}
	return appt, doctor, nil
}

func (u *rescheduleUsecase) conflict(ctx context.Context, doctor *entity.Doctor, day time.Time, appt *entity.Appointment) error {
	slots, err := u.slotUsecase.BookedGrid(ctx, doctor, day, &appt.ID)
	if err != nil {
		u.log.Warnf("Failed to refresh grid after conflict: %+v", err)
	}
	return newSlotConflict(slots)
}
