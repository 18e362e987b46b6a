package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
	"hospital-scheduler/pkg/validator"
)

type DisruptionHandler struct {
	disruptionUsecase usecase.DisruptionUsecase
	validator         *validator.CustomValidator
}

func NewDisruptionHandler(disruptionUsecase usecase.DisruptionUsecase, validator *validator.CustomValidator) *DisruptionHandler {
	return &DisruptionHandler{
		disruptionUsecase: disruptionUsecase,
		validator:         validator,
	}
}

func (h *DisruptionHandler) CancelDay(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.disruptionUsecase.CancelDay(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrDisruptionPersist) {
			response.InternalServerError(w, "No appointment could be updated")
			return
		}
		writeSchedulingError(w, err, "Failed to cancel day")
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}
