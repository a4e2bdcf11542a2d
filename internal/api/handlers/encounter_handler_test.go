package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clinicamia/agenda-service/internal/api/handlers"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

// MockEncounterService defines the mock service
type MockEncounterService struct {
	mock.Mock
}

func (m *MockEncounterService) GetAppointment(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockEncounterService) Transition(ctx context.Context, appointmentID string, target entities.AppointmentStatus) (*entities.Appointment, error) {
	args := m.Called(ctx, appointmentID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func sampleAppointment(status entities.AppointmentStatus) *entities.Appointment {
	now := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	return &entities.Appointment{
		ID:              "appt-1",
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		ScheduledDate:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartMinutes:    540,
		DurationMinutes: 30,
		Status:          status,
		PatientName:     "Ana Torres",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestEncounterHandler_GetAppointment(t *testing.T) {
	t.Run("returns appointment", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		mockService.On("GetAppointment", mock.Anything, "appt-1").
			Return(sampleAppointment(entities.AppointmentStatusScheduled), nil)

		req := httptest.NewRequest("GET", "/api/appointments/appt-1", nil)
		req.SetPathValue("id", "appt-1")
		w := httptest.NewRecorder()

		handler.GetAppointment(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response entities.Appointment
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "appt-1", response.ID)
		assert.Equal(t, entities.AppointmentStatusScheduled, response.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		mockService.On("GetAppointment", mock.Anything, "missing").
			Return(nil, apperrors.NewNotFoundError("appointment not found"))

		req := httptest.NewRequest("GET", "/api/appointments/missing", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()

		handler.GetAppointment(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 when id missing", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		req := httptest.NewRequest("GET", "/api/appointments/", nil)
		w := httptest.NewRecorder()

		handler.GetAppointment(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetAppointment")
	})
}

func TestEncounterHandler_UpdateStatus(t *testing.T) {
	postStatus := func(status string) *http.Request {
		body, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest("POST", "/api/appointments/appt-1/status", bytes.NewBuffer(body))
		req.SetPathValue("id", "appt-1")
		return req
	}

	t.Run("applies valid transition", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		mockService.On("Transition", mock.Anything, "appt-1", entities.AppointmentStatusWaiting).
			Return(sampleAppointment(entities.AppointmentStatusWaiting), nil)

		w := httptest.NewRecorder()
		handler.UpdateStatus(w, postStatus("waiting"))

		assert.Equal(t, http.StatusOK, w.Code)

		var response entities.Appointment
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusWaiting, response.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 422 on invalid transition", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		mockService.On("Transition", mock.Anything, "appt-1", entities.AppointmentStatusInProgress).
			Return(nil, apperrors.NewInvalidTransitionError("cannot move appointment from completed to in_progress"))

		w := httptest.NewRecorder()
		handler.UpdateStatus(w, postStatus("in_progress"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("returns 409 on concurrent in-progress conflict", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		mockService.On("Transition", mock.Anything, "appt-1", entities.AppointmentStatusInProgress).
			Return(nil, apperrors.NewConflictError("another appointment is already in progress"))

		w := httptest.NewRecorder()
		handler.UpdateStatus(w, postStatus("in_progress"))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("returns 400 on unknown status", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		mockService.On("Transition", mock.Anything, "appt-1", entities.AppointmentStatus("rescheduled")).
			Return(nil, apperrors.NewValidationError("unknown appointment status: rescheduled"))

		w := httptest.NewRecorder()
		handler.UpdateStatus(w, postStatus("rescheduled"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 on empty status", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		w := httptest.NewRecorder()
		handler.UpdateStatus(w, postStatus(""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Transition")
	})

	t.Run("returns 400 on malformed payload", func(t *testing.T) {
		mockService := new(MockEncounterService)
		handler := handlers.NewEncounterHandler(mockService)

		req := httptest.NewRequest("POST", "/api/appointments/appt-1/status", bytes.NewBufferString("{not json"))
		req.SetPathValue("id", "appt-1")
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Transition")
	})
}
