package converter

import (
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/scheduling"
)

// LeaveToResponse converts a DoctorLeave entity to LeaveResponse DTO
func LeaveToResponse(leave *entity.DoctorLeave) *dto.LeaveResponse {
	if leave == nil {
		return nil
	}

	return &dto.LeaveResponse{
		ID:          leave.ID,
		DoctorEmail: leave.DoctorEmail,
		FromDate:    leave.FromDate.Format(scheduling.DateLayout),
		ToDate:      leave.ToDate.Format(scheduling.DateLayout),
		Reason:      leave.Reason,
		Status:      string(leave.Status),
		RequestedAt: leave.RequestedAt,
	}
}

// LeavesToResponses converts a slice of DoctorLeave entities to slice of LeaveResponse DTOs
func LeavesToResponses(leaves []entity.DoctorLeave) []dto.LeaveResponse {
	responses := make([]dto.LeaveResponse, len(leaves))
	for i := range leaves {
		responses[i] = *LeaveToResponse(&leaves[i])
	}
	return responses
}
