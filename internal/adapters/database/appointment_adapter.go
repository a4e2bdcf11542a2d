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

var appointmentColumns = []interface{}{
	"id", "patient_id", "doctor_id", "specialty_id", "scheduled_date",
	"start_minutes", "duration_minutes", "status", "emergency", "priority",
	"reason", "patient_name", "patient_phone", "completed_at", "cancelled_at",
	"created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	appointment, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}

	return appointment, nil
}

// ListByDoctorAndDate retrieves a doctor's appointments for a calendar date
func (a *AppointmentAdapter) ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]*entities.Appointment, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"doctor_id": doctorID, "scheduled_date": day}).
		Order(goqu.I("start_minutes").Asc(), goqu.I("id").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, rows.Err()
}

// UpdateStatus applies a status change conditioned on the currently stored
// status. The WHERE clause carries both id and expected status so two
// concurrent transitions cannot both succeed; the loser sees a conflict.
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, expected, target entities.AppointmentStatus, stamp *repositories.StatusStamp) (*entities.Appointment, error) {
	record := goqu.Record{
		"status":     target,
		"updated_at": time.Now(),
	}
	if stamp != nil {
		if stamp.CompletedAt != nil {
			record["completed_at"] = *stamp.CompletedAt
		}
		if stamp.CancelledAt != nil {
			record["cancelled_at"] = *stamp.CancelledAt
		}
	}

	query, args, err := a.db.Update("appointments").
		Set(record).
		Where(goqu.Ex{"id": id, "status": expected}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update appointment status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing row from a lost race on the expected status
		current, getErr := a.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.NewConflictError(fmt.Sprintf(
			"appointment %s status changed concurrently: expected %s, found %s",
			id, expected, current.Status,
		))
	}

	return a.GetByID(ctx, id)
}

// ScheduleSummary returns the non-cancelled appointment count and latest
// update instant for a doctor within a date range
func (a *AppointmentAdapter) ScheduleSummary(ctx context.Context, doctorID string, from, to time.Time) (int, time.Time, error) {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	query, args, err := a.db.Select(
		goqu.COUNT("id"),
		goqu.MAX("updated_at"),
	).From("appointments").
		Where(
			goqu.Ex{"doctor_id": doctorID},
			goqu.C("scheduled_date").Gte(fromDay),
			goqu.C("scheduled_date").Lte(toDay),
			goqu.C("status").Neq(entities.AppointmentStatusCancelled),
		).
		ToSQL()

	if err != nil {
		return 0, time.Time{}, apperrors.NewInternalError("failed to build summary query", err)
	}

	var count int
	var lastUpdate sql.NullTime
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count, &lastUpdate)
	if err != nil {
		return 0, time.Time{}, apperrors.NewInternalError("failed to get schedule summary", err)
	}

	return count, lastUpdate.Time, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var specialtyID sql.NullString
	var priority, reason, patientName, patientPhone sql.NullString
	var completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&specialtyID,
		&appointment.ScheduledDate,
		&appointment.StartMinutes,
		&appointment.DurationMinutes,
		&appointment.Status,
		&appointment.Emergency,
		&priority,
		&reason,
		&patientName,
		&patientPhone,
		&completedAt,
		&cancelledAt,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if specialtyID.Valid {
		appointment.SpecialtyID = &specialtyID.String
	}
	appointment.Priority = priority.String
	appointment.Reason = reason.String
	appointment.PatientName = patientName.String
	appointment.PatientPhone = patientPhone.String
	if completedAt.Valid {
		appointment.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		appointment.CancelledAt = &cancelledAt.Time
	}

	return appointment, nil
}
