package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	FullName    string `json:"fullName" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,min=10,max=20"`
	Reason      string `json:"reason" validate:"omitempty,max=1000"`
	Disease     string `json:"disease" validate:"omitempty,max=255"`
	State       string `json:"state" validate:"omitempty,max=100"`
	City        string `json:"city" validate:"omitempty,max=100"`
	DoctorEmail string `json:"doctorEmail" validate:"required,email"`
	Date        string `json:"date" validate:"required,isodate"`
	Time        string `json:"time" validate:"required,clock"`
}

type ListAppointmentsRequest struct {
	DoctorEmail string `json:"doctorEmail" validate:"omitempty,email"`
	Date        string `json:"date" validate:"omitempty,isodate"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                uuid.UUID  `json:"id"`
	FullName          string     `json:"fullName"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	Disease           string     `json:"disease,omitempty"`
	State             string     `json:"state,omitempty"`
	City              string     `json:"city,omitempty"`
	Doctor            string     `json:"doctor"`
	DoctorEmail       string     `json:"doctorEmail"`
	Date              string     `json:"date"`
	Time              string     `json:"time"`
	Status            string     `json:"status"`
	RescheduleExpires *time.Time `json:"rescheduleExpires,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AppointmentCountResponse struct {
	DoctorEmail string `json:"doctorEmail"`
	Count       int64  `json:"count"`
}
