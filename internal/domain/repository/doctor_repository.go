package repository

import (
	"context"
	"time"

	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Doctor, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.DoctorFilter) ([]entity.Doctor, error)
	Update(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error
	// SetAvailability flips the same-day flag; since is cleared when available is true.
	SetAvailability(ctx context.Context, db *gorm.DB, email string, available bool, since *time.Time) error
	Delete(ctx context.Context, db *gorm.DB, email string) (int64, error)
}
