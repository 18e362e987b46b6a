package repository

import (
	"context"
	"errors"
	"time"

	"hospital-scheduler/internal/domain/entity"
	domainRepo "hospital-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorLeaveRepository struct{}

func NewDoctorLeaveRepository() domainRepo.DoctorLeaveRepository {
	return &doctorLeaveRepository{}
}

func (r *doctorLeaveRepository) Create(ctx context.Context, db *gorm.DB, leave *entity.DoctorLeave) error {
	return db.WithContext(ctx).Create(leave).Error
}

func (r *doctorLeaveRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorLeave, error) {
	var leave entity.DoctorLeave
	err := db.WithContext(ctx).Where("id = ?", id).First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave, nil
}

func (r *doctorLeaveRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.DoctorLeave, error) {
	var leaves []entity.DoctorLeave
	err := db.WithContext(ctx).Order("from_date DESC").Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *doctorLeaveRepository) FindByDoctorEmail(ctx context.Context, db *gorm.DB, email string) ([]entity.DoctorLeave, error) {
	var leaves []entity.DoctorLeave
	err := db.WithContext(ctx).
		Where("doctor_email = ?", email).
		Order("from_date DESC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *doctorLeaveRepository) FindOverlapping(ctx context.Context, db *gorm.DB, email string, from, to time.Time) (*entity.DoctorLeave, error) {
	var leave entity.DoctorLeave
	err := db.WithContext(ctx).
		Where("doctor_email = ? AND status IN ?", email, []entity.LeaveStatus{entity.LeaveStatusPending, entity.LeaveStatusApproved}).
		Where("from_date <= ? AND to_date >= ?", to, from).
		Order("from_date ASC").
		First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave, nil
}

func (r *doctorLeaveRepository) FindApprovedCovering(ctx context.Context, db *gorm.DB, email string, day time.Time) (*entity.DoctorLeave, error) {
	var leave entity.DoctorLeave
	err := db.WithContext(ctx).
		Where("doctor_email = ? AND status = ?", email, entity.LeaveStatusApproved).
		Where("from_date <= ? AND to_date >= ?", day, day).
		First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave, nil
}

func (r *doctorLeaveRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.LeaveStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.DoctorLeave{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}
