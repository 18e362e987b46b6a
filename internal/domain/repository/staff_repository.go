package repository

import (
	"context"

	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type StaffRepository interface {
	Create(ctx context.Context, db *gorm.DB, staff *entity.Staff) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Staff, error)
	DeleteByEmail(ctx context.Context, db *gorm.DB, email string) error
}
