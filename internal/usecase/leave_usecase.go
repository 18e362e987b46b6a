package usecase

import (
	"context"
	"errors"
	"fmt"

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
	ErrLeaveNotFound      = errors.New("leave not found")
	ErrInvalidLeaveRange  = errors.New("fromDate must not be after toDate")
	ErrInvalidLeaveStatus = errors.New("status must be Approved or Rejected")
	ErrLeaveOverlap       = errors.New("leave overlaps an existing request")
	ErrLeaveBusy          = errors.New("another leave request for this doctor is in progress")
)

// LeaveOverlapError names the existing range a new request collides with
type LeaveOverlapError struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

func (e *LeaveOverlapError) Error() string {
	return fmt.Sprintf("Leave already exists from %s to %s", e.FromDate, e.ToDate)
}

func (e *LeaveOverlapError) Unwrap() error { return ErrLeaveOverlap }

type LeaveUsecase interface {
	RequestLeave(ctx context.Context, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error)
	GetAllLeaves(ctx context.Context) (*dto.LeaveListResponse, error)
	GetLeavesByDoctor(ctx context.Context, doctorEmail string) (*dto.LeaveListResponse, error)
	UpdateLeaveStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateLeaveStatusRequest) (*dto.LeaveResponse, error)
}

type leaveUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	leaveRepo    repository.DoctorLeaveRepository
	locker       service.Locker
	auditService service.AuditService
}

func NewLeaveUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	leaveRepo repository.DoctorLeaveRepository,
	locker service.Locker,
	auditService service.AuditService,
) LeaveUsecase {
	return &leaveUsecase{
		db:           db,
		log:          log,
		doctorRepo:   doctorRepo,
		leaveRepo:    leaveRepo,
		locker:       locker,
		auditService: auditService,
	}
}

// RequestLeave stores a Pending leave. The overlap check and the insert run
// under a per-doctor lock so two concurrent requests cannot both pass.
func (u *leaveUsecase) RequestLeave(ctx context.Context, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error) {
	from, err := scheduling.ParseDate(req.FromDate)
	if err != nil {
		return nil, err
	}
	to, err := scheduling.ParseDate(req.ToDate)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, ErrInvalidLeaveRange
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

	leave := &entity.DoctorLeave{
		DoctorEmail: doctor.Email,
		FromDate:    from,
		ToDate:      to,
		Reason:      req.Reason,
		Status:      entity.LeaveStatusPending,
	}

	err = u.locker.WithLock(ctx, service.LeaveLockKey(doctor.Email), func(ctx context.Context) error {
		existing, err := u.leaveRepo.FindOverlapping(ctx, u.db, doctor.Email, from, to)
		if err != nil {
			return err
		}
		if existing != nil {
			return &LeaveOverlapError{
				FromDate: existing.FromDate.Format(scheduling.DateLayout),
				ToDate:   existing.ToDate.Format(scheduling.DateLayout),
			}
		}
		return u.leaveRepo.Create(ctx, u.db, leave)
	})
	if err != nil {
		if errors.Is(err, service.ErrLockNotAcquired) {
			return nil, ErrLeaveBusy
		}
		if !errors.Is(err, ErrLeaveOverlap) {
			u.log.Warnf("Failed to create leave for %s: %+v", doctor.Email, err)
		}
		return nil, err
	}

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogCreate(ctx, u.db, staffID, entity.AuditActionLeaveRequest, leave.ID.String(), map[string]interface{}{
		"doctor_email": leave.DoctorEmail,
		"from_date":    req.FromDate,
		"to_date":      req.ToDate,
	})

	return converter.LeaveToResponse(leave), nil
}

func (u *leaveUsecase) GetAllLeaves(ctx context.Context) (*dto.LeaveListResponse, error) {
	leaves, err := u.leaveRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find leaves: %+v", err)
		return nil, err
	}
	return &dto.LeaveListResponse{
		Leaves: converter.LeavesToResponses(leaves),
		Total:  len(leaves),
	}, nil
}

func (u *leaveUsecase) GetLeavesByDoctor(ctx context.Context, doctorEmail string) (*dto.LeaveListResponse, error) {
	if err := ensureOwnCalendar(ctx, doctorEmail); err != nil {
		return nil, err
	}

	leaves, err := u.leaveRepo.FindByDoctorEmail(ctx, u.db, doctorEmail)
	if err != nil {
		u.log.Warnf("Failed to find leaves for %s: %+v", doctorEmail, err)
		return nil, err
	}
	return &dto.LeaveListResponse{
		Leaves: converter.LeavesToResponses(leaves),
		Total:  len(leaves),
	}, nil
}

func (u *leaveUsecase) UpdateLeaveStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateLeaveStatusRequest) (*dto.LeaveResponse, error) {
	status := entity.LeaveStatus(req.Status)
	if status != entity.LeaveStatusApproved && status != entity.LeaveStatusRejected {
		return nil, ErrInvalidLeaveStatus
	}

	leave, err := u.leaveRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find leave %s: %+v", id, err)
		return nil, err
	}
	if leave == nil {
		return nil, ErrLeaveNotFound
	}

	rows, err := u.leaveRepo.UpdateStatus(ctx, u.db, id, status)
	if err != nil {
		u.log.Warnf("Failed to update leave %s: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrLeaveNotFound
	}

	prev := leave.Status
	leave.Status = status

	staffID, _ := middleware.GetStaffIDPtrFromContext(ctx)
	_ = u.auditService.LogUpdate(ctx, u.db, staffID, entity.AuditActionLeaveStatus, id.String(),
		map[string]interface{}{"status": prev},
		map[string]interface{}{"status": status},
	)

	return converter.LeaveToResponse(leave), nil
}
