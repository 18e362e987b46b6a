package entity

import (
	"time"

	"github.com/google/uuid"
)

// LeaveStatus represents the review state of a leave request
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "Pending"
	LeaveStatusApproved LeaveStatus = "Approved"
	LeaveStatusRejected LeaveStatus = "Rejected"
)

// DoctorLeave is a doctor absence over an inclusive range of calendar days.
// Only Approved leave blocks scheduling; Pending and Approved leaves of one
// doctor never overlap.
type DoctorLeave struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorEmail string      `gorm:"type:varchar(255);not null;index" json:"doctor_email"`
	FromDate    time.Time   `gorm:"type:date;not null;index" json:"from_date"`
	ToDate      time.Time   `gorm:"type:date;not null;index" json:"to_date"`
	Reason      string      `gorm:"type:text" json:"reason,omitempty"`
	Status      LeaveStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	RequestedAt time.Time   `gorm:"autoCreateTime" json:"requested_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorLeave) TableName() string {
	return "doctor_leaves"
}

// Blocking reports whether the leave takes part in the overlap invariant
func (l *DoctorLeave) Blocking() bool {
	return l.Status == LeaveStatusPending || l.Status == LeaveStatusApproved
}

// Overlaps uses the inclusive test from <= other.to && to >= other.from
func (l *DoctorLeave) Overlaps(from, to time.Time) bool {
	return !from.After(l.ToDate) && !to.Before(l.FromDate)
}

// Covers reports whether day falls inside [FromDate, ToDate]
func (l *DoctorLeave) Covers(day time.Time) bool {
	return l.Overlaps(day, day)
}
