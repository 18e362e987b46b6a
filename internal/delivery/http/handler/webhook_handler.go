package handler

import (
	"encoding/json"
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
)

type WebhookHandler struct {
	webhookUsecase usecase.WebhookUsecase
}

func NewWebhookHandler(webhookUsecase usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{
		webhookUsecase: webhookUsecase,
	}
}

// Fulfill always answers 200 in the Dialogflow envelope, even for an
// unreadable body, so the agent can speak a fallback.
func (h *WebhookHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req dto.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusOK, dto.NewWebhookResponse(usecase.MsgWebhookError))
		return
	}

	response.JSON(w, http.StatusOK, h.webhookUsecase.Fulfill(r.Context(), &req))
}
