package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

// FollowUpService manages the lifecycle of control visits
type FollowUpService struct {
	repo            repositories.FollowUpRepository
	appointmentRepo repositories.AppointmentRepository
	notifications   *NotificationService
	maxOffsetDays   int
	now             func() time.Time
}

// NewFollowUpService creates a new follow-up service. notifications may be
// nil, in which case reminders are disabled.
func NewFollowUpService(
	repo repositories.FollowUpRepository,
	appointmentRepo repositories.AppointmentRepository,
	maxOffsetDays int,
	notifications *NotificationService,
) *FollowUpService {
	if maxOffsetDays <= 0 {
		maxOffsetDays = entities.MaxFollowUpOffsetDays
	}
	return &FollowUpService{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		notifications:   notifications,
		maxOffsetDays:   maxOffsetDays,
		now:             time.Now,
	}
}

// CreateFollowUpInput carries the fields for scheduling a control visit
type CreateFollowUpInput struct {
	OriginAppointmentID string
	PatientID           string
	DoctorID            string
	Type                entities.FollowUpType
	Priority            entities.FollowUpPriority
	OffsetDays          *int
	Reason              string
	Instructions        string
}

// FollowUpView pairs a follow-up with its derived overdue flag
type FollowUpView struct {
	*entities.FollowUp
	Overdue bool `json:"overdue"`
}

// Schedule creates a follow-up in Pending state, deriving the suggested
// date from the creation date plus the offset
func (s *FollowUpService) Schedule(ctx context.Context, input CreateFollowUpInput) (*entities.FollowUp, error) {
	if input.OffsetDays == nil {
		return nil, apperrors.NewValidationError("offset days is required")
	}
	offset := *input.OffsetDays
	if offset < 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("offset days must not be negative, got %d", offset))
	}
	if offset > s.maxOffsetDays {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"offset days must not exceed %d, got %d", s.maxOffsetDays, offset))
	}
	if input.PatientID == "" || input.DoctorID == "" {
		return nil, apperrors.NewValidationError("patient id and doctor id are required")
	}
	// Type is free form; the catalog constants are presets, not a whitelist
	if input.Type == "" {
		input.Type = entities.FollowUpTypePostConsult
	}
	if input.Priority == "" {
		input.Priority = entities.FollowUpPriorityNormal
	}
	if !entities.IsValidFollowUpPriority(input.Priority) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown priority %q", input.Priority))
	}

	// The origin appointment must resolve, but its status does not gate
	// creation: clinicians schedule controls from in-progress encounters too
	if _, err := s.appointmentRepo.GetByID(ctx, input.OriginAppointmentID); err != nil {
		return nil, err
	}

	now := s.now()
	followUp := &entities.FollowUp{
		ID:                  uuid.New().String(),
		PatientID:           input.PatientID,
		DoctorID:            input.DoctorID,
		OriginAppointmentID: input.OriginAppointmentID,
		Type:                input.Type,
		Priority:            input.Priority,
		OffsetDays:          offset,
		SuggestedDate:       entities.SuggestedDateFrom(now, offset),
		Reason:              input.Reason,
		Instructions:        input.Instructions,
		Status:              entities.FollowUpStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, followUp); err != nil {
		return nil, err
	}

	return followUp, nil
}

// Get retrieves a follow-up by ID
func (s *FollowUpService) Get(ctx context.Context, id string) (*entities.FollowUp, error) {
	return s.repo.GetByID(ctx, id)
}

// Complete marks a follow-up done, recording notes and the completion
// instant. Completing an already completed follow-up is a no-op success.
func (s *FollowUpService) Complete(ctx context.Context, id, notes string) (*entities.FollowUp, error) {
	followUp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if followUp.Status == entities.FollowUpStatusCompleted {
		return followUp, nil
	}
	if followUp.Status == entities.FollowUpStatusCancelled {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf(
			"cannot complete cancelled follow-up %s", id))
	}

	now := s.now()
	followUp.Status = entities.FollowUpStatusCompleted
	followUp.CompletionNotes = &notes
	followUp.CompletedAt = &now

	if err := s.repo.Update(ctx, followUp); err != nil {
		return nil, err
	}

	return followUp, nil
}

// LinkAppointment associates a newly booked appointment with the follow-up.
// Re-linking overwrites the previous reference, last write wins.
func (s *FollowUpService) LinkAppointment(ctx context.Context, id, appointmentID string) (*entities.FollowUp, error) {
	if appointmentID == "" {
		return nil, apperrors.NewValidationError("appointment id is required")
	}

	followUp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch followUp.Status {
	case entities.FollowUpStatusPending, entities.FollowUpStatusAppointmentScheduled:
	default:
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf(
			"cannot link appointment to %s follow-up %s", followUp.Status, id))
	}

	if _, err := s.appointmentRepo.GetByID(ctx, appointmentID); err != nil {
		return nil, err
	}

	followUp.Status = entities.FollowUpStatusAppointmentScheduled
	followUp.LinkedAppointmentID = &appointmentID

	if err := s.repo.Update(ctx, followUp); err != nil {
		return nil, err
	}

	return followUp, nil
}

// Cancel moves the follow-up to Cancelled. Cancelling twice is a no-op.
func (s *FollowUpService) Cancel(ctx context.Context, id string) (*entities.FollowUp, error) {
	followUp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if followUp.Status == entities.FollowUpStatusCancelled {
		return followUp, nil
	}
	if followUp.Status == entities.FollowUpStatusCompleted {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf(
			"cannot cancel completed follow-up %s", id))
	}

	followUp.Status = entities.FollowUpStatusCancelled

	if err := s.repo.Update(ctx, followUp); err != nil {
		return nil, err
	}

	return followUp, nil
}

// ListByPatient returns a patient's follow-ups ordered by suggested date
func (s *FollowUpService) ListByPatient(ctx context.Context, patientID string) ([]*FollowUpView, error) {
	followUps, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.toViews(followUps), nil
}

// ListPendingByDoctor returns a doctor's outstanding controls ordered by
// suggested date, flagging the overdue ones
func (s *FollowUpService) ListPendingByDoctor(ctx context.Context, doctorID string) ([]*FollowUpView, error) {
	followUps, err := s.repo.ListPendingByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.toViews(followUps), nil
}

// SendDueReminders messages the patients of pending follow-ups whose
// suggested date has arrived. Each follow-up is reminded at most once;
// the reminder timestamp is recorded before the next tick can resend.
// Returns the number of reminders dispatched.
func (s *FollowUpService) SendDueReminders(ctx context.Context) (int, error) {
	if s.notifications == nil {
		return 0, nil
	}

	logger := observability.LoggerFromContext(ctx)
	now := s.now()
	due, err := s.repo.ListDueReminders(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, followUp := range due {
		appointment, err := s.appointmentRepo.GetByID(ctx, followUp.OriginAppointmentID)
		if err != nil {
			logger.Warn().Err(err).
				Str("follow_up_id", followUp.ID).
				Msg("failed to resolve origin appointment for reminder")
			continue
		}

		s.notifications.SendFollowUpReminder(ctx, followUp, appointment.PatientPhone)

		stamp := now
		followUp.ReminderSentAt = &stamp
		if err := s.repo.Update(ctx, followUp); err != nil {
			logger.Warn().Err(err).
				Str("follow_up_id", followUp.ID).
				Msg("failed to record reminder timestamp")
			continue
		}
		sent++
	}

	return sent, nil
}

// RunReminderLoop dispatches due reminders on every tick until the context
// is cancelled. No-op when notifications are disabled.
func (s *FollowUpService) RunReminderLoop(ctx context.Context, interval time.Duration) {
	if s.notifications == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			sent, err := s.SendDueReminders(tickCtx)
			cancel()
			if err != nil {
				observability.GetLogger().Warn().Err(err).Msg("reminder dispatch failed")
			} else if sent > 0 {
				observability.GetLogger().Info().Int("sent", sent).Msg("dispatched follow-up reminders")
			}
		}
	}
}

func (s *FollowUpService) toViews(followUps []*entities.FollowUp) []*FollowUpView {
	now := s.now()
	views := make([]*FollowUpView, 0, len(followUps))
	for _, followUp := range followUps {
		views = append(views, &FollowUpView{
			FollowUp: followUp,
			Overdue:  followUp.IsOverdue(now),
		})
	}
	return views
}
