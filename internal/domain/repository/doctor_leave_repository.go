package repository

import (
	"context"
	"time"

	"hospital-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorLeaveRepository interface {
	Create(ctx context.Context, db *gorm.DB, leave *entity.DoctorLeave) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorLeave, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.DoctorLeave, error)
	FindByDoctorEmail(ctx context.Context, db *gorm.DB, email string) ([]entity.DoctorLeave, error)
	// FindOverlapping returns the first Pending or Approved leave intersecting [from, to].
	FindOverlapping(ctx context.Context, db *gorm.DB, email string, from, to time.Time) (*entity.DoctorLeave, error)
	// FindApprovedCovering returns an Approved leave whose range contains day.
	FindApprovedCovering(ctx context.Context, db *gorm.DB, email string, day time.Time) (*entity.DoctorLeave, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.LeaveStatus) (int64, error)
}
