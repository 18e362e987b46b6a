package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
	"hospital-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type LeaveHandler struct {
	leaveUsecase usecase.LeaveUsecase
	validator    *validator.CustomValidator
}

func NewLeaveHandler(leaveUsecase usecase.LeaveUsecase, validator *validator.CustomValidator) *LeaveHandler {
	return &LeaveHandler{
		leaveUsecase: leaveUsecase,
		validator:    validator,
	}
}

func (h *LeaveHandler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	leave, err := h.leaveUsecase.RequestLeave(r.Context(), &req)
	if err != nil {
		var overlap *usecase.LeaveOverlapError
		switch {
		case errors.As(err, &overlap):
			response.Conflict(w, overlap.Error(), overlap)
		case errors.Is(err, usecase.ErrLeaveBusy):
			response.Conflict(w, "Another leave request for this doctor is in progress", nil)
		case errors.Is(err, usecase.ErrInvalidLeaveRange):
			response.BadRequest(w, "fromDate must not be after toDate")
		default:
			writeSchedulingError(w, err, "Failed to request leave")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Leave requested successfully", leave)
}

func (h *LeaveHandler) GetAllLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.leaveUsecase.GetAllLeaves(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get leaves")
		return
	}

	response.Success(w, http.StatusOK, "Leaves retrieved successfully", leaves)
}

func (h *LeaveHandler) GetLeavesByDoctor(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.leaveUsecase.GetLeavesByDoctor(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		writeSchedulingError(w, err, "Failed to get leaves")
		return
	}

	response.Success(w, http.StatusOK, "Leaves retrieved successfully", leaves)
}

func (h *LeaveHandler) UpdateLeaveStatus(w http.ResponseWriter, r *http.Request) {
	leaveID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid leave ID", nil)
		return
	}

	var req dto.UpdateLeaveStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	leave, err := h.leaveUsecase.UpdateLeaveStatus(r.Context(), leaveID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrLeaveNotFound):
			response.NotFound(w, "Leave not found")
		case errors.Is(err, usecase.ErrInvalidLeaveStatus):
			response.BadRequest(w, "Status must be Approved or Rejected")
		default:
			response.InternalServerError(w, "Failed to update leave")
		}
		return
	}

	response.Success(w, http.StatusOK, "Leave "+leave.Status, leave)
}
