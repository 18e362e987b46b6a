package dto

import "hospital-scheduler/internal/scheduling"

// Request DTOs

type GetSlotsRequest struct {
	DoctorEmail string `json:"doctorEmail" validate:"required,email"`
	Date        string `json:"date" validate:"required,isodate"`
}

// Response DTOs

type SlotsResponse struct {
	Date           string            `json:"date"`
	DoctorEmail    string            `json:"doctorEmail"`
	AvailableSlots []scheduling.Slot `json:"availableSlots"`
	Message        string            `json:"message,omitempty"`
}

// ConflictResponse carries a fresh grid so the caller can retry at once
type ConflictResponse struct {
	AvailableSlots []scheduling.Slot `json:"availableSlots"`
}
