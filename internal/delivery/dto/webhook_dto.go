package dto

// WebhookRequest is the part of a Dialogflow ES fulfillment request we read
type WebhookRequest struct {
	QueryResult struct {
		QueryText    string                 `json:"queryText"`
		LanguageCode string                 `json:"languageCode"`
		Parameters   map[string]interface{} `json:"parameters"`
		Intent       struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
	} `json:"queryResult"`
}

type WebhookText struct {
	Text []string `json:"text"`
}

type WebhookMessage struct {
	Text WebhookText `json:"text"`
}

type WebhookResponse struct {
	FulfillmentText     string           `json:"fulfillmentText"`
	FulfillmentMessages []WebhookMessage `json:"fulfillmentMessages"`
}

// NewWebhookResponse wraps one reply in the Dialogflow envelope
func NewWebhookResponse(text string) *WebhookResponse {
	return &WebhookResponse{
		FulfillmentText:     text,
		FulfillmentMessages: []WebhookMessage{{Text: WebhookText{Text: []string{text}}}},
	}
}
