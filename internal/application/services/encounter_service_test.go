package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/clinicamia/agenda-service/internal/application/services"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

func newEncounterService(repo *MockAppointmentRepository, bus *MockEventBus) *services.EncounterService {
	queueService := services.NewDailyQueueService(repo, nil, time.UTC, 30*time.Second, 0, 0)
	return services.NewEncounterService(repo, queueService, bus, nil)
}

func testAppointment(id string, status entities.AppointmentStatus) *entities.Appointment {
	return &entities.Appointment{
		ID:              id,
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		ScheduledDate:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartMinutes:    9 * 60,
		DurationMinutes: 30,
		Status:          status,
	}
}

func TestEncounterService_Transition(t *testing.T) {
	t.Run("re-applying the current status is a no-op success", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		appointment := testAppointment("appt-1", entities.AppointmentStatusWaiting)
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)

		result, err := service.Transition(context.Background(), "appt-1", entities.AppointmentStatusWaiting)

		assert.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusWaiting, result.Status)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal statuses have no outgoing transitions", func(t *testing.T) {
		terminal := []entities.AppointmentStatus{
			entities.AppointmentStatusCompleted,
			entities.AppointmentStatusCancelled,
			entities.AppointmentStatusNoShow,
		}
		targets := []entities.AppointmentStatus{
			entities.AppointmentStatusScheduled,
			entities.AppointmentStatusConfirmed,
			entities.AppointmentStatusWaiting,
			entities.AppointmentStatusInProgress,
			entities.AppointmentStatusCompleted,
			entities.AppointmentStatusCancelled,
			entities.AppointmentStatusNoShow,
		}

		for _, from := range terminal {
			for _, to := range targets {
				if from == to {
					continue
				}
				repo := new(MockAppointmentRepository)
				bus := new(MockEventBus)
				service := newEncounterService(repo, bus)

				repo.On("GetByID", mock.Anything, "appt-1").Return(testAppointment("appt-1", from), nil)

				_, err := service.Transition(context.Background(), "appt-1", to)

				assert.Error(t, err, "expected %s -> %s to fail", from, to)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition))
				repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		}
	})

	t.Run("waiting to in-progress succeeds and publishes an event", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		appointment := testAppointment("appt-1", entities.AppointmentStatusWaiting)
		updated := testAppointment("appt-1", entities.AppointmentStatusInProgress)

		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)
		repo.On("ListByDoctorAndDate", mock.Anything, "doctor-1", appointment.ScheduledDate).
			Return([]*entities.Appointment{appointment}, nil)
		repo.On("UpdateStatus", mock.Anything, "appt-1",
			entities.AppointmentStatusWaiting, entities.AppointmentStatusInProgress, mock.Anything).
			Return(updated, nil)
		bus.On("Publish", mock.Anything, "doctor:doctor-1", mock.MatchedBy(func(e *entities.AppointmentEvent) bool {
			return e.AppointmentID == "appt-1" &&
				e.FromStatus == entities.AppointmentStatusWaiting &&
				e.ToStatus == entities.AppointmentStatusInProgress
		})).Return(nil)

		result, err := service.Transition(context.Background(), "appt-1", entities.AppointmentStatusInProgress)

		assert.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusInProgress, result.Status)
		bus.AssertExpectations(t)
	})

	t.Run("in-progress to waiting is rejected and state untouched", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		repo.On("GetByID", mock.Anything, "appt-1").
			Return(testAppointment("appt-1", entities.AppointmentStatusInProgress), nil)

		_, err := service.Transition(context.Background(), "appt-1", entities.AppointmentStatusWaiting)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition))
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second in-progress for the same doctor is a conflict", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		appointment := testAppointment("appt-2", entities.AppointmentStatusWaiting)
		busy := testAppointment("appt-1", entities.AppointmentStatusInProgress)

		repo.On("GetByID", mock.Anything, "appt-2").Return(appointment, nil)
		repo.On("ListByDoctorAndDate", mock.Anything, "doctor-1", appointment.ScheduledDate).
			Return([]*entities.Appointment{busy, appointment}, nil)

		_, err := service.Transition(context.Background(), "appt-2", entities.AppointmentStatusInProgress)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completing stamps the completion time", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		appointment := testAppointment("appt-1", entities.AppointmentStatusInProgress)
		updated := testAppointment("appt-1", entities.AppointmentStatusCompleted)

		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)
		repo.On("UpdateStatus", mock.Anything, "appt-1",
			entities.AppointmentStatusInProgress, entities.AppointmentStatusCompleted,
			mock.MatchedBy(func(stamp *repositories.StatusStamp) bool {
				return stamp != nil && stamp.CompletedAt != nil && stamp.CancelledAt == nil
			})).Return(updated, nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := service.Transition(context.Background(), "appt-1", entities.AppointmentStatusCompleted)

		assert.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCompleted, result.Status)
	})

	t.Run("unknown target status is a validation error", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		_, err := service.Transition(context.Background(), "appt-1", entities.AppointmentStatus("rescheduled"))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("lost race on conditional write surfaces as conflict", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		appointment := testAppointment("appt-1", entities.AppointmentStatusWaiting)
		repo.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)
		repo.On("UpdateStatus", mock.Anything, "appt-1",
			entities.AppointmentStatusWaiting, entities.AppointmentStatusCancelled, mock.Anything).
			Return(nil, apperrors.NewConflictError("appointment appt-1 status changed concurrently"))

		_, err := service.Transition(context.Background(), "appt-1", entities.AppointmentStatusCancelled)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("missing appointment propagates not found", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newEncounterService(repo, bus)

		repo.On("GetByID", mock.Anything, "missing").
			Return(nil, apperrors.NewNotFoundError("appointment with id missing not found"))

		_, err := service.Transition(context.Background(), "missing", entities.AppointmentStatusConfirmed)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
