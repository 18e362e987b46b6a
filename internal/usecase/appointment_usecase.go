package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-scheduler/internal/converter"
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/delivery/http/middleware"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("appointment status can only move forward")
)

type AppointmentUsecase interface {
	// CreateAppointment books a free grid slot on an open day.
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointments(ctx context.Context, req *dto.ListAppointmentsRequest) (*dto.AppointmentListResponse, error)
	CountByDoctor(ctx context.Context, doctorEmail string) (*dto.AppointmentCountResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

type appointmentUsecase struct {
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

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	slotUsecase SlotUsecase,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	locker service.Locker,
	notifier service.NotificationService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
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

func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
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

	doctor, err := u.doctorRepo.FindByEmail(ctx, u.db, req.DoctorEmail)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorEmail, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	availability, err := u.slotUsecase.ResolveAvailability(ctx, doctor, day)
	if err != nil {
		return nil, err
	}
	if !availability.Open {
		return nil, &UnavailableError{Reason: availability.Reason}
	}

	grid, err := u.slotUsecase.BookedGrid(ctx, doctor, day, nil)
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

	appt := &entity.Appointment{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Reason:      req.Reason,
		Disease:     req.Disease,
		State:       req.State,
		City:        req.City,
		Doctor:      doctor.Name,
		DoctorEmail: doctor.Email,
		Date:        day,
		Time:        clock,
		Status:      entity.AppointmentStatusPending,
	}

	err = u.locker.WithLock(ctx, service.SlotLockKey(doctor.Email, req.Date, clock), func(ctx context.Context) error {
		clash, err := u.appointmentRepo.FindBySlot(ctx, u.db, doctor.Email, day, clock, nil)
		if err != nil {
			return err
		}
		if clash != nil {
			return ErrSlotConflict
		}
		if err := u.appointmentRepo.Create(ctx, u.db, appt); err != nil {
			if isDuplicateKeyError(err, entity.SlotIndexName) {
				return ErrSlotConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) || errors.Is(err, service.ErrLockNotAcquired) {
			slots, gerr := u.slotUsecase.BookedGrid(ctx, doctor, day, nil)
			if gerr != nil {
				u.log.Warnf("Failed to refresh grid after conflict: %+v", gerr)
			}
			return nil, newSlotConflict(slots)
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.notifier.SendBookingConfirmation(ctx, appt); err != nil {
		u.log.Warnf("Failed to send booking confirmation to %s: %+v", appt.Email, err)
	}

	_ = u.auditService.LogCreate(ctx, u.db, nil, entity.AuditActionAppointmentCreate, appt.ID.String(), map[string]interface{}{
		"doctor_email": appt.DoctorEmail,
		"date":         req.Date,
		"time":         clock,
	})

	return converter.AppointmentToResponse(appt), nil
}

func (u *appointmentUsecase) GetAppointments(ctx context.Context, req *dto.ListAppointmentsRequest) (*dto.AppointmentListResponse, error) {
	filter := entity.AppointmentFilter{}
	if req != nil {
		filter.DoctorEmail = req.DoctorEmail
		if req.Date != "" {
			day, err := scheduling.ParseDate(req.Date)
			if err != nil {
				return nil, err
			}
			filter.Date = &day
		}
	}

	appts, err := u.appointmentRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *appointmentUsecase) CountByDoctor(ctx context.Context, doctorEmail string) (*dto.AppointmentCountResponse, error) {
	count, err := u.appointmentRepo.CountByDoctorEmail(ctx, u.db, doctorEmail)
	if err != nil {
		u.log.Warnf("Failed to count appointments for %s: %+v", doctorEmail, err)
		return nil, err
	}
	return &dto.AppointmentCountResponse{DoctorEmail: doctorEmail, Count: count}, nil
}

func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	next := entity.AppointmentStatus(req.Status)
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	appt, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appt.Status.CanAdvanceTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	prev := appt.Status
	if err := u.appointmentRepo.UpdateStatus(ctx, u.db, id, next); err != nil {
		u.log.Warnf("Failed to update appointment %s status: %+v", id, err)
		return nil, err
	}
	appt.Status = next

	if next == entity.AppointmentStatusCompleted && prev != next {
		if err := u.notifier.SendVisitCompleted(ctx, appt); err != nil {
			u.log.Warnf("Failed to send visit completed mail to %s: %+v", appt.Email, err)
		}
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogUpdate(ctx, u.db, staffID, entity.AuditActionAppointmentStatus, id.String(),
		map[string]interface{}{"status": prev},
		map[string]interface{}{"status": next},
	)

	return converter.AppointmentToResponse(appt), nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	rows, err := u.appointmentRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}
	if rows == 0 {
		return ErrAppointmentNotFound
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogDelete(ctx, u.db, staffID, entity.AuditActionAppointmentDelete, id.String(), nil)
	return nil
}
