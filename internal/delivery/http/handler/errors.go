package handler

import (
	"errors"
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
)

const (
	MsgSlotTaken   = "That slot was just booked, please choose another."
	MsgLinkInvalid = "Link invalid/expired"
)

// writeSchedulingError maps errors shared by the slot, booking, reschedule
// and disruption endpoints. Anything unrecognised is a 500 with fallback.
func writeSchedulingError(w http.ResponseWriter, err error, fallback string) {
	var conflict *usecase.SlotConflictError
	var unavailable *usecase.UnavailableError

	switch {
	case errors.As(err, &conflict):
		slots := conflict.Slots
		if slots == nil {
			slots = []scheduling.Slot{}
		}
		response.Conflict(w, MsgSlotTaken, dto.ConflictResponse{AvailableSlots: slots})
	case errors.Is(err, usecase.ErrSlotConflict):
		response.Conflict(w, MsgSlotTaken, nil)
	case errors.As(err, &unavailable):
		response.Conflict(w, unavailable.Reason, nil)
	case errors.Is(err, usecase.ErrTokenNotFound):
		response.NotFound(w, MsgLinkInvalid)
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrNotOwnCalendar):
		response.Forbidden(w, "Doctors can only manage their own calendar")
	case errors.Is(err, scheduling.ErrMalformedDate):
		response.BadRequest(w, "Invalid date, use YYYY-MM-DD")
	case errors.Is(err, scheduling.ErrMalformedTime):
		response.BadRequest(w, "Invalid time")
	case errors.Is(err, usecase.ErrSlotNotOnGrid):
		response.BadRequest(w, "Time is not a bookable slot for this doctor")
	case errors.Is(err, usecase.ErrSlotInPast):
		response.BadRequest(w, "Cannot book a slot in the past")
	default:
		response.InternalServerError(w, fallback)
	}
}
