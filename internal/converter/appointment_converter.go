package converter

import (
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/scheduling"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// The reschedule token itself is never exposed.
func AppointmentToResponse(appt *entity.Appointment) *dto.AppointmentResponse {
	if appt == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                appt.ID,
		FullName:          appt.FullName,
		Email:             appt.Email,
		Phone:             appt.Phone,
		Reason:            appt.Reason,
		Disease:           appt.Disease,
		State:             appt.State,
		City:              appt.City,
		Doctor:            appt.Doctor,
		DoctorEmail:       appt.DoctorEmail,
		Date:              appt.Date.Format(scheduling.DateLayout),
		Time:              appt.Time,
		Status:            string(appt.Status),
		RescheduleExpires: appt.RescheduleExpires,
		CreatedAt:         appt.CreatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appts []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appts))
	for i := range appts {
		responses[i] = *AppointmentToResponse(&appts[i])
	}
	return responses
}
