package handler

import (
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
	"hospital-scheduler/pkg/validator"
)

type SlotHandler struct {
	slotUsecase usecase.SlotUsecase
	validator   *validator.CustomValidator
}

func NewSlotHandler(slotUsecase usecase.SlotUsecase, validator *validator.CustomValidator) *SlotHandler {
	return &SlotHandler{
		slotUsecase: slotUsecase,
		validator:   validator,
	}
}

// GetSlots answers GET /slots?doctorEmail=&date=. A blocked day is a 200
// with an empty grid and a message, not an error.
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.GetSlotsRequest{
		DoctorEmail: q.Get("doctorEmail"),
		Date:        q.Get("date"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slots, err := h.slotUsecase.GetSlots(r.Context(), &req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get slots")
		return
	}

	message := slots.Message
	if message == "" {
		message = "Slots retrieved successfully"
	}
	response.Success(w, http.StatusOK, message, slots)
}
