package repository

import (
	"context"
	"errors"
	"time"

	"hospital-scheduler/internal/domain/entity"
	domainRepo "hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/scheduling"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// dateLayout matches the postgres DATE text form
const dateLayout = "2006-01-02"

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appt *entity.Appointment) error {
	return db.WithContext(ctx).Create(appt).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := db.WithContext(ctx).Where("id = ?", id).First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appts []entity.Appointment
	query := db.WithContext(ctx).Model(&entity.Appointment{})

	if filter.DoctorEmail != "" {
		query = query.Where("doctor_email = ?", filter.DoctorEmail)
	}
	if filter.PatientEmail != "" {
		query = query.Where("email = ?", filter.PatientEmail)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", filter.Date.Format(dateLayout))
	}

	err := query.Order("date ASC, time ASC").Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) CountByDoctorEmail(ctx context.Context, db *gorm.DB, email string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_email = ?", email).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) FindBookedTimes(ctx context.Context, db *gorm.DB, email string, day time.Time, excludeID *uuid.UUID) ([]string, error) {
	var times []string
	query := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_email = ? AND date = ?", email, day.Format(dateLayout))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Pluck("time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *appointmentRepository) FindBySlot(ctx context.Context, db *gorm.DB, email string, day time.Time, clock string, excludeID *uuid.UUID) (*entity.Appointment, error) {
	var appt entity.Appointment
	query := db.WithContext(ctx).
		Where("doctor_email = ? AND date = ? AND time = ?", email, day.Format(dateLayout), clock)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

// FindImpacted mirrors Appointment.AffectedBy in SQL
func (r *appointmentRepository) FindImpacted(ctx context.Context, db *gorm.DB, email string, day time.Time, cutoff string) ([]entity.Appointment, error) {
	var appts []entity.Appointment
	start, end := scheduling.DayWindow(day)
	err := db.WithContext(ctx).
		Where("doctor_email = ? AND date >= ? AND date < ?", email, start.Format(dateLayout), end.Format(dateLayout)).
		Where("status <> ? AND time >= ?", entity.AppointmentStatusCompleted, cutoff).
		Order("time ASC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) FindByRescheduleToken(ctx context.Context, db *gorm.DB, token string, now time.Time) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := db.WithContext(ctx).
		Where("reschedule_token = ? AND reschedule_expires > ?", token, now).
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

// SetRescheduleToken overwrites any previous token, which supersedes it
func (r *appointmentRepository) SetRescheduleToken(ctx context.Context, db *gorm.DB, id uuid.UUID, token string, expires time.Time) error {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reschedule_token":   token,
			"reschedule_expires": expires,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reschedule atomically redeems the token ONLY if it is still the live one.
// Returns affected rows: 1 = moved, 0 = token gone (prevents double redeem).
func (r *appointmentRepository) Reschedule(ctx context.Context, db *gorm.DB, id uuid.UUID, token string, day time.Time, clock string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND reschedule_token = ? AND reschedule_expires > ?", id, token, now).
		Updates(map[string]interface{}{
			"date":               day.Format(dateLayout),
			"time":               clock,
			"status":             entity.AppointmentStatusPending,
			"reschedule_token":   nil,
			"reschedule_expires": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) error {
	return db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
