package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	"github.com/clinicamia/agenda-service/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

var followUpColumns = []interface{}{
	"id", "patient_id", "doctor_id", "origin_appointment_id", "type",
	"priority", "offset_days", "suggested_date", "reason", "instructions",
	"status", "linked_appointment_id", "completion_notes", "completed_at",
	"reminder_sent_at", "created_at", "updated_at",
}

// FollowUpAdapter implements the FollowUpRepository interface
type FollowUpAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFollowUpAdapter creates a new follow-up adapter
func NewFollowUpAdapter(client *postgres.Client) repositories.FollowUpRepository {
	return &FollowUpAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new follow-up
func (a *FollowUpAdapter) Create(ctx context.Context, followUp *entities.FollowUp) error {
	record := goqu.Record{
		"id":                    followUp.ID,
		"patient_id":            followUp.PatientID,
		"doctor_id":             followUp.DoctorID,
		"origin_appointment_id": followUp.OriginAppointmentID,
		"type":                  followUp.Type,
		"priority":              followUp.Priority,
		"offset_days":           followUp.OffsetDays,
		"suggested_date":        followUp.SuggestedDate,
		"reason":                followUp.Reason,
		"instructions":          followUp.Instructions,
		"status":                followUp.Status,
		"created_at":            followUp.CreatedAt,
		"updated_at":            followUp.UpdatedAt,
	}

	query, args, err := a.db.Insert("follow_ups").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create follow-up", err)
	}

	return nil
}

// GetByID retrieves a follow-up by ID
func (a *FollowUpAdapter) GetByID(ctx context.Context, id string) (*entities.FollowUp, error) {
	query, args, err := a.db.Select(followUpColumns...).
		From("follow_ups").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	followUp, err := scanFollowUp(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("follow-up with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get follow-up", err)
	}

	return followUp, nil
}

// Update persists follow-up mutations
func (a *FollowUpAdapter) Update(ctx context.Context, followUp *entities.FollowUp) error {
	followUp.UpdatedAt = time.Now()

	record := goqu.Record{
		"status":                followUp.Status,
		"linked_appointment_id": followUp.LinkedAppointmentID,
		"completion_notes":      followUp.CompletionNotes,
		"completed_at":          followUp.CompletedAt,
		"reminder_sent_at":      followUp.ReminderSentAt,
		"updated_at":            followUp.UpdatedAt,
	}

	query, args, err := a.db.Update("follow_ups").
		Set(record).
		Where(goqu.Ex{"id": followUp.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update follow-up", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("follow-up with id %s not found", followUp.ID))
	}

	return nil
}

// ListByPatient retrieves a patient's follow-ups ordered by suggested date ascending
func (a *FollowUpAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.FollowUp, error) {
	return a.list(ctx, goqu.Ex{"patient_id": patientID})
}

// ListPendingByDoctor retrieves a doctor's pending follow-ups ordered by
// suggested date ascending
func (a *FollowUpAdapter) ListPendingByDoctor(ctx context.Context, doctorID string) ([]*entities.FollowUp, error) {
	return a.list(ctx, goqu.Ex{"doctor_id": doctorID, "status": entities.FollowUpStatusPending})
}

// ListDueReminders retrieves pending follow-ups whose suggested date has
// arrived and that carry no reminder timestamp yet
func (a *FollowUpAdapter) ListDueReminders(ctx context.Context, now time.Time) ([]*entities.FollowUp, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return a.list(ctx, goqu.Ex{
		"status":           entities.FollowUpStatusPending,
		"suggested_date":   goqu.Op{"lte": today},
		"reminder_sent_at": nil,
	})
}

func (a *FollowUpAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.FollowUp, error) {
	query, args, err := a.db.Select(followUpColumns...).
		From("follow_ups").
		Where(where).
		Order(goqu.I("suggested_date").Asc(), goqu.I("id").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list follow-ups", err)
	}
	defer rows.Close()

	var followUps []*entities.FollowUp
	for rows.Next() {
		followUp, err := scanFollowUp(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan follow-up", err)
		}
		followUps = append(followUps, followUp)
	}

	return followUps, rows.Err()
}

func scanFollowUp(row rowScanner) (*entities.FollowUp, error) {
	followUp := &entities.FollowUp{}
	var reason, instructions sql.NullString
	var linkedAppointmentID, completionNotes sql.NullString
	var completedAt, reminderSentAt sql.NullTime

	err := row.Scan(
		&followUp.ID,
		&followUp.PatientID,
		&followUp.DoctorID,
		&followUp.OriginAppointmentID,
		&followUp.Type,
		&followUp.Priority,
		&followUp.OffsetDays,
		&followUp.SuggestedDate,
		&reason,
		&instructions,
		&followUp.Status,
		&linkedAppointmentID,
		&completionNotes,
		&completedAt,
		&reminderSentAt,
		&followUp.CreatedAt,
		&followUp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	followUp.Reason = reason.String
	followUp.Instructions = instructions.String
	if linkedAppointmentID.Valid {
		followUp.LinkedAppointmentID = &linkedAppointmentID.String
	}
	if completionNotes.Valid {
		followUp.CompletionNotes = &completionNotes.String
	}
	if completedAt.Valid {
		followUp.CompletedAt = &completedAt.Time
	}
	if reminderSentAt.Valid {
		followUp.ReminderSentAt = &reminderSentAt.Time
	}

	return followUp, nil
}
