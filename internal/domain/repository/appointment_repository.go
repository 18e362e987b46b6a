package repository

import (
	"context"
	"time"

	"hospital-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appt *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	CountByDoctorEmail(ctx context.Context, db *gorm.DB, email string) (int64, error)

	// FindBookedTimes lists occupied "HH:MM" starts for a doctor's day.
	// excludeID, when non-nil, drops that appointment from the result.
	FindBookedTimes(ctx context.Context, db *gorm.DB, email string, day time.Time, excludeID *uuid.UUID) ([]string, error)
	FindBySlot(ctx context.Context, db *gorm.DB, email string, day time.Time, clock string, excludeID *uuid.UUID) (*entity.Appointment, error)
	// FindImpacted selects non-Completed appointments on day with time >= cutoff.
	FindImpacted(ctx context.Context, db *gorm.DB, email string, day time.Time, cutoff string) ([]entity.Appointment, error)

	FindByRescheduleToken(ctx context.Context, db *gorm.DB, token string, now time.Time) (*entity.Appointment, error)
	SetRescheduleToken(ctx context.Context, db *gorm.DB, id uuid.UUID, token string, expires time.Time) error
	// Reschedule moves the appointment only while token is still live; 0 rows
	// means the token was redeemed, superseded or expired in the meantime.
	Reschedule(ctx context.Context, db *gorm.DB, id uuid.UUID, token string, day time.Time, clock string, now time.Time) (int64, error)

	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
