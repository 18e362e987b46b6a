package repository

import (
	"context"
	"errors"

	"hospital-scheduler/internal/domain/entity"
	domainRepo "hospital-scheduler/internal/domain/repository"

	"gorm.io/gorm"
)

type staffRepository struct{}

func NewStaffRepository() domainRepo.StaffRepository {
	return &staffRepository{}
}

func (r *staffRepository) Create(ctx context.Context, db *gorm.DB, staff *entity.Staff) error {
	return db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Staff, error) {
	var staff entity.Staff
	err := db.WithContext(ctx).Where("email = ?", email).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) DeleteByEmail(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).Where("email = ?", email).Delete(&entity.Staff{}).Error
}
