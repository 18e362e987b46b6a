package dto

import "hospital-scheduler/internal/scheduling"

// Request DTOs

type CommitRescheduleRequest struct {
	Date string `json:"date" validate:"required,isodate"`
	Time string `json:"time" validate:"required,clock"`
}

// Response DTOs

type RescheduleSessionResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	Date        string              `json:"date"`
	Slots       []scheduling.Slot   `json:"slots"`
	Message     string              `json:"message,omitempty"`
}

type CommitRescheduleResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	Message     string              `json:"message"`
}
