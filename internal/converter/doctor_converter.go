package converter

import (
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:               doctor.ID,
		Email:            doctor.Email,
		Name:             doctor.Name,
		Designation:      doctor.Designation,
		Specialization:   doctor.Specialization,
		About:            doctor.About,
		Qualification:    doctor.Qualification,
		Experience:       doctor.Experience,
		State:            doctor.State,
		City:             doctor.City,
		WorkStart:        doctor.WorkStart,
		WorkEnd:          doctor.WorkEnd,
		Availability:     doctor.Availability,
		UnavailableSince: doctor.UnavailableSince,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
