package repositories

import (
	"context"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
)

// FollowUpRepository defines the interface for follow-up data operations
type FollowUpRepository interface {
	// Create creates a new follow-up
	Create(ctx context.Context, followUp *entities.FollowUp) error

	// GetByID retrieves a follow-up by ID
	GetByID(ctx context.Context, id string) (*entities.FollowUp, error)

	// Update persists follow-up mutations (status, linked appointment, notes)
	Update(ctx context.Context, followUp *entities.FollowUp) error

	// ListByPatient retrieves a patient's follow-ups ordered by suggested date ascending
	ListByPatient(ctx context.Context, patientID string) ([]*entities.FollowUp, error)

	// ListPendingByDoctor retrieves a doctor's pending follow-ups ordered by
	// suggested date ascending
	ListPendingByDoctor(ctx context.Context, doctorID string) ([]*entities.FollowUp, error)

	// ListDueReminders retrieves pending follow-ups whose suggested date has
	// arrived and that have not been reminded yet
	ListDueReminders(ctx context.Context, now time.Time) ([]*entities.FollowUp, error)
}
