package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeaveRequest struct {
	DoctorEmail string `json:"doctorEmail" validate:"required,email"`
	FromDate    string `json:"fromDate" validate:"required,isodate"`
	ToDate      string `json:"toDate" validate:"required,isodate"`
	Reason      string `json:"reason" validate:"omitempty,max=1000"`
}

type UpdateLeaveStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Approved Rejected"`
}

// Response DTOs

type LeaveResponse struct {
	ID          uuid.UUID `json:"id"`
	DoctorEmail string    `json:"doctorEmail"`
	FromDate    string    `json:"fromDate"`
	ToDate      string    `json:"toDate"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

type LeaveListResponse struct {
	Leaves []LeaveResponse `json:"leaves"`
	Total  int             `json:"total"`
}
