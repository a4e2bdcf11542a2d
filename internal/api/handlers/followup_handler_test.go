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
	"github.com/clinicamia/agenda-service/internal/application/services"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

// MockFollowUpService defines the mock service
type MockFollowUpService struct {
	mock.Mock
}

func (m *MockFollowUpService) Schedule(ctx context.Context, input services.CreateFollowUpInput) (*entities.FollowUp, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpService) Get(ctx context.Context, id string) (*entities.FollowUp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpService) Complete(ctx context.Context, id, notes string) (*entities.FollowUp, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpService) LinkAppointment(ctx context.Context, id, appointmentID string) (*entities.FollowUp, error) {
	args := m.Called(ctx, id, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpService) Cancel(ctx context.Context, id string) (*entities.FollowUp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpService) ListByPatient(ctx context.Context, patientID string) ([]*services.FollowUpView, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*services.FollowUpView), args.Error(1)
}

func (m *MockFollowUpService) ListPendingByDoctor(ctx context.Context, doctorID string) ([]*services.FollowUpView, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*services.FollowUpView), args.Error(1)
}

func sampleFollowUp(status entities.FollowUpStatus) *entities.FollowUp {
	created := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	return &entities.FollowUp{
		ID:                  "fu-1",
		OriginAppointmentID: "appt-1",
		PatientID:           "patient-1",
		DoctorID:            "doctor-1",
		Type:                entities.FollowUpTypePostConsult,
		Priority:            entities.FollowUpPriorityNormal,
		Status:              status,
		OffsetDays:          15,
		SuggestedDate:       entities.SuggestedDateFrom(created, 15),
		CreatedAt:           created,
		UpdatedAt:           created,
	}
}

func TestFollowUpHandler_CreateFollowUp(t *testing.T) {
	t.Run("creates follow-up", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		mockService.On("Schedule", mock.Anything, mock.MatchedBy(func(input services.CreateFollowUpInput) bool {
			return input.OriginAppointmentID == "appt-1" &&
				input.PatientID == "patient-1" &&
				input.OffsetDays != nil && *input.OffsetDays == 15
		})).Return(sampleFollowUp(entities.FollowUpStatusPending), nil)

		payload := map[string]interface{}{
			"origin_appointment_id": "appt-1",
			"patient_id":            "patient-1",
			"doctor_id":             "doctor-1",
			"type":                  "post_consult_control",
			"offset_days":           15,
			"reason":                "control de tensión",
		}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/follow-ups", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.CreateFollowUp(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response entities.FollowUp
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "fu-1", response.ID)
		assert.Equal(t, entities.FollowUpStatusPending, response.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 400 when offset is rejected", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		mockService.On("Schedule", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("offset_days is required"))

		body, _ := json.Marshal(map[string]string{"patient_id": "patient-1"})
		req := httptest.NewRequest("POST", "/api/follow-ups", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.CreateFollowUp(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 on malformed payload", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		req := httptest.NewRequest("POST", "/api/follow-ups", bytes.NewBufferString("{broken"))
		w := httptest.NewRecorder()

		handler.CreateFollowUp(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Schedule")
	})
}

func TestFollowUpHandler_CompleteFollowUp(t *testing.T) {
	t.Run("completes with notes", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		completed := sampleFollowUp(entities.FollowUpStatusCompleted)
		mockService.On("Complete", mock.Anything, "fu-1", "paciente estable").
			Return(completed, nil)

		body, _ := json.Marshal(map[string]string{"notes": "paciente estable"})
		req := httptest.NewRequest("POST", "/api/follow-ups/fu-1/complete", bytes.NewBuffer(body))
		req.SetPathValue("id", "fu-1")
		w := httptest.NewRecorder()

		handler.CompleteFollowUp(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("completes without body", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		mockService.On("Complete", mock.Anything, "fu-1", "").
			Return(sampleFollowUp(entities.FollowUpStatusCompleted), nil)

		req := httptest.NewRequest("POST", "/api/follow-ups/fu-1/complete", nil)
		req.SetPathValue("id", "fu-1")
		w := httptest.NewRecorder()

		handler.CompleteFollowUp(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("returns 422 when cancelled", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		mockService.On("Complete", mock.Anything, "fu-1", "").
			Return(nil, apperrors.NewInvalidTransitionError("cannot complete a cancelled follow-up"))

		req := httptest.NewRequest("POST", "/api/follow-ups/fu-1/complete", nil)
		req.SetPathValue("id", "fu-1")
		w := httptest.NewRecorder()

		handler.CompleteFollowUp(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestFollowUpHandler_LinkAppointment(t *testing.T) {
	t.Run("links appointment", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		linked := sampleFollowUp(entities.FollowUpStatusAppointmentScheduled)
		linkedID := "appt-9"
		linked.LinkedAppointmentID = &linkedID
		mockService.On("LinkAppointment", mock.Anything, "fu-1", "appt-9").
			Return(linked, nil)

		body, _ := json.Marshal(map[string]string{"appointment_id": "appt-9"})
		req := httptest.NewRequest("POST", "/api/follow-ups/fu-1/appointment", bytes.NewBuffer(body))
		req.SetPathValue("id", "fu-1")
		w := httptest.NewRecorder()

		handler.LinkAppointment(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response entities.FollowUp
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		if assert.NotNil(t, response.LinkedAppointmentID) {
			assert.Equal(t, "appt-9", *response.LinkedAppointmentID)
		}
	})

	t.Run("returns 400 when appointment_id missing", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		body, _ := json.Marshal(map[string]string{})
		req := httptest.NewRequest("POST", "/api/follow-ups/fu-1/appointment", bytes.NewBuffer(body))
		req.SetPathValue("id", "fu-1")
		w := httptest.NewRecorder()

		handler.LinkAppointment(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "LinkAppointment")
	})
}

func TestFollowUpHandler_Lists(t *testing.T) {
	t.Run("lists patient follow-ups", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		views := []*services.FollowUpView{
			{FollowUp: sampleFollowUp(entities.FollowUpStatusPending), Overdue: true},
		}
		mockService.On("ListByPatient", mock.Anything, "patient-1").Return(views, nil)

		req := httptest.NewRequest("GET", "/api/patients/patient-1/follow-ups", nil)
		req.SetPathValue("id", "patient-1")
		w := httptest.NewRecorder()

		handler.ListPatientFollowUps(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			FollowUps []struct {
				ID      string `json:"id"`
				Overdue bool   `json:"overdue"`
			} `json:"follow_ups"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.FollowUps, 1)
		assert.True(t, response.FollowUps[0].Overdue)
	})

	t.Run("lists pending follow-ups for doctor", func(t *testing.T) {
		mockService := new(MockFollowUpService)
		handler := handlers.NewFollowUpHandler(mockService)

		views := []*services.FollowUpView{
			{FollowUp: sampleFollowUp(entities.FollowUpStatusPending)},
		}
		mockService.On("ListPendingByDoctor", mock.Anything, "doctor-1").Return(views, nil)

		req := httptest.NewRequest("GET", "/api/doctors/doctor-1/follow-ups/pending", nil)
		req.SetPathValue("id", "doctor-1")
		w := httptest.NewRecorder()

		handler.ListPendingFollowUps(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestFollowUpHandler_GetCatalog(t *testing.T) {
	handler := handlers.NewFollowUpHandler(new(MockFollowUpService))

	req := httptest.NewRequest("GET", "/api/follow-ups/catalog", nil)
	w := httptest.NewRecorder()

	handler.GetCatalog(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Types         []entities.FollowUpType `json:"types"`
		OffsetPresets []int                   `json:"offset_presets"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response.Types, entities.FollowUpTypePostConsult)
	assert.Equal(t, entities.FollowUpOffsetPresets, response.OffsetPresets)
}
