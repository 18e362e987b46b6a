package handler

import (
	"encoding/json"
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
	"hospital-scheduler/pkg/validator"

	"github.com/gorilla/mux"
)

type RescheduleHandler struct {
	rescheduleUsecase usecase.RescheduleUsecase
	validator         *validator.CustomValidator
}

func NewRescheduleHandler(rescheduleUsecase usecase.RescheduleUsecase, validator *validator.CustomValidator) *RescheduleHandler {
	return &RescheduleHandler{
		rescheduleUsecase: rescheduleUsecase,
		validator:         validator,
	}
}

func (h *RescheduleHandler) FetchSession(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	session, err := h.rescheduleUsecase.FetchSession(r.Context(), token, r.URL.Query().Get("date"))
	if err != nil {
		writeSchedulingError(w, err, "Failed to load reschedule session")
		return
	}

	response.Success(w, http.StatusOK, "Reschedule session retrieved successfully", session)
}

func (h *RescheduleHandler) CommitReschedule(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req dto.CommitRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.rescheduleUsecase.CommitReschedule(r.Context(), token, &req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to reschedule")
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}
