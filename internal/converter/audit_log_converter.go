package converter

import (
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	resp := &dto.AuditLogResponse{
		ID:        log.ID,
		StaffID:   log.StaffID,
		Action:    log.Action,
		Subject:   log.Subject,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
	if log.Staff != nil {
		resp.StaffEmail = log.Staff.Email
	}
	return resp
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
