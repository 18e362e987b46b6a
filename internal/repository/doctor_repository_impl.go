package repository

import (
	"context"
	"errors"
	"time"

	"hospital-scheduler/internal/domain/entity"
	domainRepo "hospital-scheduler/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	return db.WithContext(ctx).Create(doctor).Error
}

func (r *doctorRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).Where("email = ?", email).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.DoctorFilter) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	query := db.WithContext(ctx).Model(&entity.Doctor{})

	if filter.Name != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Specialization != "" {
		query = query.Where("specialization ILIKE ?", "%"+filter.Specialization+"%")
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", "%"+filter.City+"%")
	}

	err := query.Order("name ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	return db.WithContext(ctx).Save(doctor).Error
}

func (r *doctorRepository) SetAvailability(ctx context.Context, db *gorm.DB, email string, available bool, since *time.Time) error {
	if available {
		since = nil
	}
	return db.WithContext(ctx).Model(&entity.Doctor{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"availability":      available,
			"unavailable_since": since,
		}).Error
}

func (r *doctorRepository) Delete(ctx context.Context, db *gorm.DB, email string) (int64, error) {
	result := db.WithContext(ctx).Where("email = ?", email).Delete(&entity.Doctor{})
	return result.RowsAffected, result.Error
}
