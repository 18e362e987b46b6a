package service

import (
	"context"

	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records who did what to which doctor, leave or appointment.
// Callers treat failures as non-fatal; the business write has already happened.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action string, subject string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action string, subject string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action string, subject string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action string, subject string, newValue interface{}) error {
	return s.write(ctx, tx, staffID, action, subject, nil, newValue)
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action string, subject string, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, staffID, action, subject, oldValue, newValue)
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action string, subject string, oldValue interface{}) error {
	return s.write(ctx, tx, staffID, action, subject, oldValue, nil)
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, staffID *uuid.UUID, action, subject string, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		StaffID: staffID,
		Action:  action,
		Subject: subject,
		Metadata: entity.JSON{
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(ctx, tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s for %s: %+v", action, subject, err)
		return err
	}

	return nil
}
