package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StaffID   *uuid.UUID `gorm:"type:uuid;index" json:"staff_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Subject   string     `gorm:"type:varchar(255);index" json:"subject,omitempty"` // doctor email or appointment id
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Staff *Staff `gorm:"foreignKey:StaffID;constraint:OnDelete:SET NULL" json:"staff,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionStaffLogin            = "staff.login"
	AuditActionStaffLogout           = "staff.logout"
	AuditActionDoctorCreate          = "doctor.create"
	AuditActionDoctorUpdate          = "doctor.update"
	AuditActionDoctorDelete          = "doctor.delete"
	AuditActionDoctorDisruption      = "doctor.disruption"
	AuditActionDoctorCancelDay       = "doctor.cancel_day"
	AuditActionLeaveRequest          = "leave.request"
	AuditActionLeaveStatus           = "leave.status"
	AuditActionAppointmentCreate     = "appointment.create"
	AuditActionAppointmentStatus     = "appointment.status"
	AuditActionAppointmentReschedule = "appointment.reschedule"
	AuditActionAppointmentDelete     = "appointment.delete"
)

// AuditLogFilter narrows audit log listings
type AuditLogFilter struct {
	Action  string
	Subject string
}
