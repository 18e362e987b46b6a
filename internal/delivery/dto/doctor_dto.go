package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Name           string `json:"name" validate:"required,min=2"`
	Designation    string `json:"designation" validate:"omitempty,max=100"`
	Specialization string `json:"specialization" validate:"required,max=100"`
	About          string `json:"about" validate:"omitempty"`
	Qualification  string `json:"qualification" validate:"omitempty,max=255"`
	Experience     string `json:"experience" validate:"omitempty,max=100"`
	State          string `json:"state" validate:"omitempty,max=100"`
	City           string `json:"city" validate:"omitempty,max=100"`
	WorkStart      string `json:"from" validate:"required,clock"`
	WorkEnd        string `json:"to" validate:"required,clock"`
	Availability   *bool  `json:"availability" validate:"omitempty"`
}

// UpdateDoctorRequest is a partial update; empty fields are left unchanged.
// UnavailableDate picks the day whose appointments are disrupted when
// Availability flips to false (default today).
type UpdateDoctorRequest struct {
	Name            string `json:"name" validate:"omitempty,min=2"`
	Designation     string `json:"designation" validate:"omitempty,max=100"`
	Specialization  string `json:"specialization" validate:"omitempty,max=100"`
	About           string `json:"about" validate:"omitempty"`
	Qualification   string `json:"qualification" validate:"omitempty,max=255"`
	Experience      string `json:"experience" validate:"omitempty,max=100"`
	State           string `json:"state" validate:"omitempty,max=100"`
	City            string `json:"city" validate:"omitempty,max=100"`
	WorkStart       string `json:"from" validate:"omitempty,clock"`
	WorkEnd         string `json:"to" validate:"omitempty,clock"`
	Availability    *bool  `json:"availability" validate:"omitempty"`
	UnavailableDate string `json:"unavailableDate" validate:"omitempty,isodate"`
}

type ListDoctorsRequest struct {
	Lang           string `json:"lang" validate:"omitempty,max=10"`
	Name           string `json:"name" validate:"omitempty,max=255"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
	City           string `json:"city" validate:"omitempty,max=100"`
}

// Response DTOs

type DoctorResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Designation      string     `json:"designation,omitempty"`
	Specialization   string     `json:"specialization,omitempty"`
	About            string     `json:"about,omitempty"`
	Qualification    string     `json:"qualification,omitempty"`
	Experience       string     `json:"experience,omitempty"`
	State            string     `json:"state,omitempty"`
	City             string     `json:"city,omitempty"`
	WorkStart        string     `json:"from"`
	WorkEnd          string     `json:"to"`
	Availability     bool       `json:"availability"`
	UnavailableSince *time.Time `json:"unavailableSince,omitempty"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

// UpdateDoctorResponse reports how many patients the update disrupted
type UpdateDoctorResponse struct {
	Doctor   DoctorResponse `json:"doctor"`
	Notified int            `json:"notified"`
	Message  string         `json:"message"`
}
