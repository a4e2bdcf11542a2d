package services

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/providers"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

// EncounterService applies appointment status transitions
type EncounterService struct {
	repo                repositories.AppointmentRepository
	queueService        *DailyQueueService
	eventBus            providers.EventBus
	notificationService *NotificationService
	now                 func() time.Time
}

// NewEncounterService creates a new encounter service
func NewEncounterService(
	repo repositories.AppointmentRepository,
	queueService *DailyQueueService,
	eventBus providers.EventBus,
	notificationService *NotificationService,
) *EncounterService {
	return &EncounterService{
		repo:                repo,
		queueService:        queueService,
		eventBus:            eventBus,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// GetAppointment retrieves a single appointment
func (s *EncounterService) GetAppointment(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Transition moves an appointment to the target status. Re-applying the
// current status is a no-op success so callers may retry after a timeout
// without side effects.
func (s *EncounterService) Transition(ctx context.Context, appointmentID string, target entities.AppointmentStatus) (*entities.Appointment, error) {
	if !entities.IsValidStatus(target) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", target))
	}

	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	current := appointment.Status
	if current == target {
		return appointment, nil
	}

	if !current.CanTransitionTo(target) {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf(
			"cannot move appointment %s from %s to %s",
			appointmentID, current, target,
		))
	}

	if target == entities.AppointmentStatusInProgress {
		if err := s.checkNoOtherInProgress(ctx, appointment); err != nil {
			return nil, err
		}
	}

	stamp := &repositories.StatusStamp{}
	now := s.now()
	switch target {
	case entities.AppointmentStatusCompleted:
		stamp.CompletedAt = &now
	case entities.AppointmentStatusCancelled:
		stamp.CancelledAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, appointmentID, current, target, stamp)
	if err != nil {
		return nil, err
	}

	s.queueService.InvalidateQueue(ctx, updated.DoctorID)
	s.publishStatusChange(ctx, updated, current, target)

	if target == entities.AppointmentStatusNoShow && s.notificationService != nil {
		// Best effort; a delivery failure never fails the transition
		go s.notificationService.SendNoShowNotice(context.Background(), updated)
	}

	return updated, nil
}

// checkNoOtherInProgress enforces the one-in-progress-per-doctor invariant
// before the write; the conditional update then closes the remaining race
// between two transitions on the same appointment.
func (s *EncounterService) checkNoOtherInProgress(ctx context.Context, appointment *entities.Appointment) error {
	siblings, err := s.repo.ListByDoctorAndDate(ctx, appointment.DoctorID, appointment.ScheduledDate)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ID != appointment.ID && sibling.Status == entities.AppointmentStatusInProgress {
			return apperrors.NewConflictError(fmt.Sprintf(
				"doctor %s already has appointment %s in progress",
				appointment.DoctorID, sibling.ID,
			))
		}
	}
	return nil
}

func (s *EncounterService) publishStatusChange(ctx context.Context, appointment *entities.Appointment, from, to entities.AppointmentStatus) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewStatusChangedEvent(appointment.DoctorID, appointment.ID, from, to)
	channel := providers.GetDoctorChannel(appointment.DoctorID)
	if err := s.eventBus.Publish(ctx, channel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("appointment_id", appointment.ID).
			Msg("failed to publish status change event")
	}
}
