package dto

import (
	"time"

	"hospital-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type ListAuditLogsRequest struct {
	Action  string `json:"action" validate:"omitempty,max=100"`
	Subject string `json:"subject" validate:"omitempty,max=255"`
}

// Response DTOs

type AuditLogResponse struct {
	ID         int64       `json:"id"`
	StaffID    *uuid.UUID  `json:"staffId,omitempty"`
	StaffEmail string      `json:"staffEmail,omitempty"`
	Action     string      `json:"action"`
	Subject    string      `json:"subject,omitempty"`
	Metadata   entity.JSON `json:"metadata"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
