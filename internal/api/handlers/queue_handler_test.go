package handlers_test

import (
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

// MockQueueService defines the mock service
type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) GetDailyQueue(ctx context.Context, doctorID string) (*entities.DailyQueue, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyQueue), args.Error(1)
}

func (m *MockQueueService) GetScheduleChecksum(ctx context.Context, doctorID string, from, to time.Time) (string, error) {
	args := m.Called(ctx, doctorID, from, to)
	return args.String(0), args.Error(1)
}

func TestQueueHandler_GetDailyQueue(t *testing.T) {
	t.Run("returns queue for doctor", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		queue := &entities.DailyQueue{
			DoctorID:       "doctor-1",
			Date:           "2025-03-12",
			Ordered:        []*entities.Appointment{sampleAppointment(entities.AppointmentStatusConfirmed)},
			CompletedCount: 0,
			Checksum:       "1-1741766400000",
		}
		mockService.On("GetDailyQueue", mock.Anything, "doctor-1").Return(queue, nil)

		req := httptest.NewRequest("GET", "/api/doctors/doctor-1/daily-queue", nil)
		req.SetPathValue("id", "doctor-1")
		w := httptest.NewRecorder()

		handler.GetDailyQueue(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Queue entities.DailyQueue `json:"queue"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "doctor-1", response.Queue.DoctorID)
		assert.Len(t, response.Queue.Ordered, 1)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 500 on repository failure", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		mockService.On("GetDailyQueue", mock.Anything, "doctor-1").
			Return(nil, apperrors.NewInternalError("failed to list appointments", nil))

		req := httptest.NewRequest("GET", "/api/doctors/doctor-1/daily-queue", nil)
		req.SetPathValue("id", "doctor-1")
		w := httptest.NewRecorder()

		handler.GetDailyQueue(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("returns 400 when doctor id missing", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		req := httptest.NewRequest("GET", "/api/doctors//daily-queue", nil)
		w := httptest.NewRecorder()

		handler.GetDailyQueue(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetDailyQueue")
	})
}

func TestQueueHandler_GetScheduleChecksum(t *testing.T) {
	t.Run("returns checksum", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		mockService.On("GetScheduleChecksum", mock.Anything, "doctor-1", time.Time{}, time.Time{}).
			Return("4-1741766400000", nil)

		req := httptest.NewRequest("GET", "/api/doctors/doctor-1/schedule-checksum", nil)
		req.SetPathValue("id", "doctor-1")
		w := httptest.NewRecorder()

		handler.GetScheduleChecksum(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "4-1741766400000", response["checksum"])
		assert.Equal(t, "doctor-1", response["doctor_id"])
	})

	t.Run("forwards the requested date range", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		from := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)
		mockService.On("GetScheduleChecksum", mock.Anything, "doctor-1", from, to).
			Return("2-1741766400000", nil)

		req := httptest.NewRequest("GET", "/api/doctors/doctor-1/schedule-checksum?from=2025-03-12&to=2025-04-11", nil)
		req.SetPathValue("id", "doctor-1")
		w := httptest.NewRecorder()

		handler.GetScheduleChecksum(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects malformed range dates", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		req := httptest.NewRequest("GET", "/api/doctors/doctor-1/schedule-checksum?from=12-03-2025", nil)
		req.SetPathValue("id", "doctor-1")
		w := httptest.NewRecorder()

		handler.GetScheduleChecksum(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetScheduleChecksum")
	})

	t.Run("returns empty sentinel when schedule has no appointments", func(t *testing.T) {
		mockService := new(MockQueueService)
		handler := handlers.NewQueueHandler(mockService)

		mockService.On("GetScheduleChecksum", mock.Anything, "doctor-2", time.Time{}, time.Time{}).
			Return("empty", nil)

		req := httptest.NewRequest("GET", "/api/doctors/doctor-2/schedule-checksum", nil)
		req.SetPathValue("id", "doctor-2")
		w := httptest.NewRecorder()

		handler.GetScheduleChecksum(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "empty", response["checksum"])
	})
}
