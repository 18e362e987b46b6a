package entity

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the bookable practitioner. Email is the identity used across
// appointments, leaves and the staff login.
type Doctor struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name           string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Designation    string    `gorm:"type:varchar(100)" json:"designation,omitempty"`
	Specialization string    `gorm:"type:varchar(100);index" json:"specialization,omitempty"`
	About          string    `gorm:"type:text" json:"about,omitempty"`
	Qualification  string    `gorm:"type:varchar(255)" json:"qualification,omitempty"`
	Experience     string    `gorm:"type:varchar(100)" json:"experience,omitempty"`
	State          string    `gorm:"type:varchar(100);index" json:"state,omitempty"`
	City           string    `gorm:"type:varchar(100);index" json:"city,omitempty"`
	WorkStart      string    `gorm:"type:varchar(16);not null" json:"work_start"` // e.g. "10:00 AM"
	WorkEnd        string    `gorm:"type:varchar(16);not null" json:"work_end"`   // e.g. "06:00 PM"

	// Availability is a same-day override: false blocks booking only on the
	// IST calendar day the query is made, never on other dates.
	Availability     bool       `gorm:"not null" json:"availability"`
	UnavailableSince *time.Time `json:"unavailable_since,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// DoctorFilter narrows directory listings. Empty fields are ignored.
type DoctorFilter struct {
	Name           string // ILIKE
	Specialization string // ILIKE
	City           string // ILIKE
}
