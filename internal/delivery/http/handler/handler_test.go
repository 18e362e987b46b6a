package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	return env
}

type stubSlotUsecase struct {
	usecase.SlotUsecase
	resp *dto.SlotsResponse
	err  error
	got  *dto.GetSlotsRequest
}

func (s *stubSlotUsecase) GetSlots(_ context.Context, req *dto.GetSlotsRequest) (*dto.SlotsResponse, error) {
	s.got = req
	return s.resp, s.err
}

type stubRescheduleUsecase struct {
	session   *dto.RescheduleSessionResponse
	commit    *dto.CommitRescheduleResponse
	err       error
	gotToken  string
	gotDate   string
	gotCommit *dto.CommitRescheduleRequest
}

func (s *stubRescheduleUsecase) FetchSession(_ context.Context, token, date string) (*dto.RescheduleSessionResponse, error) {
	s.gotToken, s.gotDate = token, date
	return s.session, s.err
}

func (s *stubRescheduleUsecase) CommitReschedule(_ context.Context, token string, req *dto.CommitRescheduleRequest) (*dto.CommitRescheduleResponse, error) {
	s.gotToken, s.gotCommit = token, req
	return s.commit, s.err
}

type stubWebhookUsecase struct {
	text string
}

func (s *stubWebhookUsecase) Fulfill(_ context.Context, req *dto.WebhookRequest) *dto.WebhookResponse {
	return dto.NewWebhookResponse(s.text + ":" + req.QueryResult.Intent.DisplayName)
}

type stubAppointmentUsecase struct {
	usecase.AppointmentUsecase
	err error
}

func (s *stubAppointmentUsecase) CreateAppointment(_ context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: uuid.New(), Email: req.Email, Date: req.Date, Time: req.Time, Status: string(entity.AppointmentStatusPending)}, nil
}

func (s *stubAppointmentUsecase) UpdateStatus(_ context.Context, _ uuid.UUID, _ *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	return nil, s.err
}

func TestGetSlots(t *testing.T) {
	grid := []scheduling.Slot{{Start: "10:00", End: "10:15"}, {Start: "10:15", End: "10:30", Booked: true}}

	tests := []struct {
		name     string
		query    string
		stub     *stubSlotUsecase
		wantCode int
		wantMsg  string
	}{
		{
			name:     "grid",
			query:    "?doctorEmail=rao@h.in&date=2025-03-11",
			stub:     &stubSlotUsecase{resp: &dto.SlotsResponse{Date: "2025-03-11", AvailableSlots: grid}},
			wantCode: http.StatusOK,
			wantMsg:  "Slots retrieved successfully",
		},
		{
			name:     "blocked day is still 200",
			query:    "?doctorEmail=rao@h.in&date=2025-03-11",
			stub:     &stubSlotUsecase{resp: &dto.SlotsResponse{AvailableSlots: []scheduling.Slot{}, Message: usecase.MsgOnLeave}},
			wantCode: http.StatusOK,
			wantMsg:  usecase.MsgOnLeave,
		},
		{
			name:     "missing date",
			query:    "?doctorEmail=rao@h.in",
			stub:     &stubSlotUsecase{},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Validation failed",
		},
		{
			name:     "malformed date",
			query:    "?doctorEmail=rao@h.in&date=11-03-2025",
			stub:     &stubSlotUsecase{},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Validation failed",
		},
		{
			name:     "unknown doctor",
			query:    "?doctorEmail=nobody@h.in&date=2025-03-11",
			stub:     &stubSlotUsecase{err: usecase.ErrDoctorNotFound},
			wantCode: http.StatusNotFound,
			wantMsg:  "Doctor not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSlotHandler(tt.stub, validator.NewValidator())
			req := httptest.NewRequest(http.MethodGet, "/api/slots"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.GetSlots(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if env := decode(t, rec); env.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestFetchSession_InvalidLink(t *testing.T) {
	stub := &stubRescheduleUsecase{err: usecase.ErrTokenNotFound}
	h := NewRescheduleHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/api/reschedule/abc?date=2025-03-11", nil)
	req = mux.SetURLVars(req, map[string]string{"token": "abc"})
	rec := httptest.NewRecorder()
	h.FetchSession(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	if env := decode(t, rec); env.Message != MsgLinkInvalid {
		t.Fatalf("message = %q", env.Message)
	}
	if stub.gotToken != "abc" || stub.gotDate != "2025-03-11" {
		t.Fatalf("usecase got token %q date %q", stub.gotToken, stub.gotDate)
	}
}

func TestCommitReschedule(t *testing.T) {
	fresh := []scheduling.Slot{{Start: "11:00", End: "11:15"}, {Start: "11:15", End: "11:30", Booked: true}}

	tests := []struct {
		name      string
		body      string
		err       error
		wantCode  int
		wantMsg   string
		wantSlots int
	}{
		{
			name:     "success",
			body:     `{"date":"2025-03-11","time":"11:00"}`,
			wantCode: http.StatusOK,
			wantMsg:  usecase.MsgRescheduled,
		},
		{
			name:      "slot taken carries a fresh grid",
			body:      `{"date":"2025-03-11","time":"11:15"}`,
			err:       &usecase.SlotConflictError{Slots: fresh},
			wantCode:  http.StatusConflict,
			wantMsg:   MsgSlotTaken,
			wantSlots: 2,
		},
		{
			name:     "expired link",
			body:     `{"date":"2025-03-11","time":"11:00"}`,
			err:      usecase.ErrTokenNotFound,
			wantCode: http.StatusNotFound,
			wantMsg:  MsgLinkInvalid,
		},
		{
			name:     "off grid",
			body:     `{"date":"2025-03-11","time":"11:07"}`,
			err:      usecase.ErrSlotNotOnGrid,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Time is not a bookable slot for this doctor",
		},
		{
			name:     "bad json",
			body:     `{"date":`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Invalid request body",
		},
		{
			name:     "missing time",
			body:     `{"date":"2025-03-11"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Validation failed",
		},
		{
			name:     "storage failure",
			body:     `{"date":"2025-03-11","time":"11:00"}`,
			err:      context.DeadlineExceeded,
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Failed to reschedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRescheduleUsecase{
				err:    tt.err,
				commit: &dto.CommitRescheduleResponse{Message: usecase.MsgRescheduled},
			}
			h := NewRescheduleHandler(stub, validator.NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/api/reschedule/tok", strings.NewReader(tt.body))
			req = mux.SetURLVars(req, map[string]string{"token": "tok"})
			rec := httptest.NewRecorder()
			h.CommitReschedule(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			env := decode(t, rec)
			if env.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", env.Message, tt.wantMsg)
			}
			if tt.wantSlots > 0 {
				var conflict dto.ConflictResponse
				if err := json.Unmarshal(env.Data, &conflict); err != nil {
					t.Fatalf("conflict data: %v", err)
				}
				if len(conflict.AvailableSlots) != tt.wantSlots {
					t.Fatalf("availableSlots = %d, want %d", len(conflict.AvailableSlots), tt.wantSlots)
				}
			}
		})
	}
}

func TestCreateAppointment_ConflictWithoutGridListsNoSlots(t *testing.T) {
	body := `{"fullName":"Asha","email":"asha@example.com","doctorEmail":"rao@h.in","date":"2025-03-11","time":"10:00"}`
	h := NewAppointmentHandler(&stubAppointmentUsecase{err: &usecase.SlotConflictError{}}, validator.NewValidator())
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateAppointment(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("code = %d, want %d", rec.Code, http.StatusConflict)
	}
	if !strings.Contains(rec.Body.String(), `"availableSlots":[]`) {
		t.Fatalf("expected an empty availableSlots list, got %s", rec.Body.String())
	}
}

func TestCreateAppointment_Errors(t *testing.T) {
	body := `{"fullName":"Asha","email":"asha@example.com","doctorEmail":"rao@h.in","date":"2025-03-11","time":"10:00"}`

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"booked", nil, http.StatusCreated, ""},
		{"leave", &usecase.UnavailableError{Reason: usecase.MsgOnLeave}, http.StatusConflict, usecase.MsgOnLeave},
		{"race lost", &usecase.SlotConflictError{}, http.StatusConflict, MsgSlotTaken},
		{"past", usecase.ErrSlotInPast, http.StatusBadRequest, "Cannot book a slot in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&stubAppointmentUsecase{err: tt.err}, validator.NewValidator())
			req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.CreateAppointment(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantMsg != "" {
				if env := decode(t, rec); env.Message != tt.wantMsg {
					t.Fatalf("message = %q, want %q", env.Message, tt.wantMsg)
				}
			}
		})
	}
}

func TestUpdateStatus_InvalidID(t *testing.T) {
	h := NewAppointmentHandler(&stubAppointmentUsecase{}, validator.NewValidator())
	req := httptest.NewRequest(http.MethodPatch, "/admin/appointments/nope", strings.NewReader(`{"status":"Started"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestUpdateStatus_BackwardsIsConflict(t *testing.T) {
	h := NewAppointmentHandler(&stubAppointmentUsecase{err: usecase.ErrInvalidStatusTransition}, validator.NewValidator())
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPatch, "/admin/appointments/"+id, strings.NewReader(`{"status":"Pending"}`))
	req = mux.SetURLVars(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", rec.Code)
	}
}

func TestWebhook_AlwaysOK(t *testing.T) {
	h := NewWebhookHandler(&stubWebhookUsecase{text: "reply"})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"intent", `{"queryResult":{"intent":{"displayName":"Doctor List"}}}`, "reply:Doctor List"},
		{"unreadable body", `not json`, usecase.MsgWebhookError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Fulfill(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d, want 200", rec.Code)
			}
			var resp dto.WebhookResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.FulfillmentText != tt.want {
				t.Fatalf("fulfillmentText = %q, want %q", resp.FulfillmentText, tt.want)
			}
			if len(resp.FulfillmentMessages) != 1 || resp.FulfillmentMessages[0].Text.Text[0] != tt.want {
				t.Fatalf("fulfillmentMessages = %+v", resp.FulfillmentMessages)
			}
		})
	}
}

func TestWriteSchedulingError_Forbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSchedulingError(rec, usecase.ErrNotOwnCalendar, "x")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rec.Code)
	}
}
