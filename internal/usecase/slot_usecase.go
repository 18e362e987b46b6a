package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/scheduling"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrDoctorUnavailable = errors.New("doctor is not available on this date")
	ErrSlotConflict      = errors.New("that slot was just booked, please choose another")
	ErrSlotNotOnGrid     = errors.New("time is not a bookable slot for this doctor")
	ErrSlotInPast        = errors.New("cannot book a slot in the past")
)

// SlotConflictError is returned when a slot was taken between render and
// commit. Slots is a freshly computed grid for an immediate retry.
type SlotConflictError struct {
	Slots []scheduling.Slot
}

func (e *SlotConflictError) Error() string { return ErrSlotConflict.Error() }

func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }

// newSlotConflict keeps Slots non-nil when the refresh itself failed.
func newSlotConflict(slots []scheduling.Slot) *SlotConflictError {
	if slots == nil {
		slots = []scheduling.Slot{}
	}
	return &SlotConflictError{Slots: slots}
}

// UnavailableError carries the resolver's reason for a blocked day
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string { return e.Reason }

func (e *UnavailableError) Unwrap() error { return ErrDoctorUnavailable }

const (
	MsgOnLeave          = "Doctor is unavailable on this date due to approved leave."
	MsgUnavailableToday = "Doctor is unavailable today."
)

// Availability is the outcome of resolving whether a doctor can be booked on a day
type Availability struct {
	Open   bool
	Reason string
}

type SlotUsecase interface {
	GetSlots(ctx context.Context, req *dto.GetSlotsRequest) (*dto.SlotsResponse, error)
	// ResolveAvailability applies, in order: approved leave covering day, then
	// the same-day availability flag (only when day is today in IST).
	ResolveAvailability(ctx context.Context, doctor *entity.Doctor, day time.Time) (Availability, error)
	// BookedGrid returns the doctor's grid for day with occupied starts marked.
	// excludeID keeps one appointment from shadowing its own slot.
	BookedGrid(ctx context.Context, doctor *entity.Doctor, day time.Time, excludeID *uuid.UUID) ([]scheduling.Slot, error)
}

type slotUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	grid            scheduling.Grid
	doctorRepo      repository.DoctorRepository
	leaveRepo       repository.DoctorLeaveRepository
	appointmentRepo repository.AppointmentRepository
	now             func() time.Time
}

func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	grid scheduling.Grid,
	doctorRepo repository.DoctorRepository,
	leaveRepo repository.DoctorLeaveRepository,
	appointmentRepo repository.AppointmentRepository,
) SlotUsecase {
	return &slotUsecase{
		db:              db,
		log:             log,
		grid:            grid,
		doctorRepo:      doctorRepo,
		leaveRepo:       leaveRepo,
		appointmentRepo: appointmentRepo,
		now:             time.Now,
	}
}

func (u *slotUsecase) GetSlots(ctx context.Context, req *dto.GetSlotsRequest) (*dto.SlotsResponse, error) {
	day, err := scheduling.ParseDate(req.Date)
	if err != nil {
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

	resp := &dto.SlotsResponse{
		Date:           req.Date,
		DoctorEmail:    req.DoctorEmail,
		AvailableSlots: []scheduling.Slot{},
	}

	availability, err := u.ResolveAvailability(ctx, doctor, day)
	if err != nil {
		return nil, err
	}
	if !availability.Open {
		resp.Message = availability.Reason
		return resp, nil
	}

	slots, err := u.BookedGrid(ctx, doctor, day, nil)
	if err != nil {
		return nil, err
	}
	resp.AvailableSlots = slots
	return resp, nil
}

func (u *slotUsecase) ResolveAvailability(ctx context.Context, doctor *entity.Doctor, day time.Time) (Availability, error) {
	leave, err := u.leaveRepo.FindApprovedCovering(ctx, u.db, doctor.Email, day)
	if err != nil {
		u.log.Warnf("Failed to check leave for %s on %s: %+v", doctor.Email, day.Format(scheduling.DateLayout), err)
		return Availability{}, err
	}
	if leave != nil {
		return Availability{Reason: MsgOnLeave}, nil
	}

	if !doctor.Availability && day.Format(scheduling.DateLayout) == scheduling.DateOf(u.now()) {
		return Availability{Reason: MsgUnavailableToday}, nil
	}

	return Availability{Open: true}, nil
}

func (u *slotUsecase) BookedGrid(ctx context.Context, doctor *entity.Doctor, day time.Time, excludeID *uuid.UUID) ([]scheduling.Slot, error) {
	slots, err := u.grid.Generate(doctor.WorkStart, doctor.WorkEnd)
	if err != nil {
		u.log.Warnf("Failed to generate slots for %s (%s-%s): %+v", doctor.Email, doctor.WorkStart, doctor.WorkEnd, err)
		return nil, err
	}

	booked, err := u.appointmentRepo.FindBookedTimes(ctx, u.db, doctor.Email, day, excludeID)
	if err != nil {
		u.log.Warnf("Failed to find booked times for %s: %+v", doctor.Email, err)
		return nil, err
	}
	slots = scheduling.MarkBooked(slots, booked)

	now := u.now()
	if day.Format(scheduling.DateLayout) == scheduling.DateOf(now) {
		slots = scheduling.MarkPast(slots, scheduling.ClockAt(now))
	}

	return slots, nil
}

// isPastDay reports whether day is strictly before today in IST
func isPastDay(day, now time.Time) bool {
	return day.Format(scheduling.DateLayout) < scheduling.DateOf(now)
}
