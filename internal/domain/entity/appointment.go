package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the visit lifecycle of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "Pending"
	AppointmentStatusStarted    AppointmentStatus = "Started"
	AppointmentStatusInProgress AppointmentStatus = "In Progress"
	AppointmentStatusCompleted  AppointmentStatus = "Completed"
)

var appointmentStatusRank = map[AppointmentStatus]int{
	AppointmentStatusPending:    0,
	AppointmentStatusStarted:    1,
	AppointmentStatusInProgress: 2,
	AppointmentStatusCompleted:  3,
}

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentStatusRank[s]
	return ok
}

// CanAdvanceTo reports whether the status may move to next.
// Statuses only move forward; a reschedule is the sole way back to Pending.
func (s AppointmentStatus) CanAdvanceTo(next AppointmentStatus) bool {
	from, ok := appointmentStatusRank[s]
	if !ok {
		return next.Valid()
	}
	to, ok := appointmentStatusRank[next]
	return ok && to >= from
}

// Appointment is one patient visit occupying a (doctor, date, time) slot.
// The slot unique index backs the at-most-one-occupant rule.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName    string            `gorm:"type:varchar(255)" json:"full_name"`
	Email       string            `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone       string            `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Reason      string            `gorm:"type:text" json:"reason,omitempty"`
	Disease     string            `gorm:"type:varchar(255)" json:"disease,omitempty"`
	State       string            `gorm:"type:varchar(100)" json:"state,omitempty"`
	City        string            `gorm:"type:varchar(100)" json:"city,omitempty"`
	Doctor      string            `gorm:"type:varchar(255)" json:"doctor"`
	DoctorEmail string            `gorm:"type:varchar(255);not null;uniqueIndex:idx_appointments_slot,priority:1" json:"doctor_email"`
	Date        time.Time         `gorm:"type:date;not null;uniqueIndex:idx_appointments_slot,priority:2" json:"date"`
	Time        string            `gorm:"type:varchar(5);not null;uniqueIndex:idx_appointments_slot,priority:3" json:"time"` // "HH:MM"
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`

	RescheduleToken   *string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	RescheduleExpires *time.Time `json:"reschedule_expires,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SlotIndexName is the unique index guarding slot occupancy
const SlotIndexName = "idx_appointments_slot"

// IsCompleted checks if the visit is finished
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// AffectedBy reports whether a disruption starting at cutoff ("HH:MM") on the
// appointment's day must reschedule it. Zero-padded clocks compare correctly
// as strings.
func (a *Appointment) AffectedBy(cutoff string) bool {
	return !a.IsCompleted() && a.Time >= cutoff
}

// HasLiveToken reports whether the reschedule token can still be redeemed at now
func (a *Appointment) HasLiveToken(now time.Time) bool {
	return a.RescheduleToken != nil && a.RescheduleExpires != nil && a.RescheduleExpires.After(now)
}

// AppointmentFilter is a domain-level filter for listing appointments
type AppointmentFilter struct {
	DoctorEmail  string
	PatientEmail string
	Date         *time.Time
}
