package dto

// Request DTOs

type CancelDayRequest struct {
	DoctorEmail string `json:"doctorEmail" validate:"required,email"`
	Date        string `json:"date" validate:"required,isodate"`
}

// Response DTOs

// DisruptionResponse counts appointments selected and persisted with a token.
// DeliveryFailures are logged and never reduce Notified.
type DisruptionResponse struct {
	Message          string `json:"message"`
	Notified         int    `json:"notified"`
	DeliveryFailures int    `json:"deliveryFailures,omitempty"`
}
