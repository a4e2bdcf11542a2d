package repositories

import (
	"context"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data
// operations. Appointments are created by the external booking system;
// this service only reads them and transitions their status.
type AppointmentRepository interface {
	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// ListByDoctorAndDate retrieves a doctor's appointments for a calendar date
	ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]*entities.Appointment, error)

	// UpdateStatus applies a status change conditioned on the currently
	// stored status. It returns a conflict error when the stored status no
	// longer matches expected, so concurrent transitions cannot both win.
	UpdateStatus(ctx context.Context, id string, expected, target entities.AppointmentStatus, stamp *StatusStamp) (*entities.Appointment, error)

	// ScheduleSummary returns the non-cancelled appointment count and most
	// recent update instant for a doctor within a date range, used to derive
	// the schedule checksum.
	ScheduleSummary(ctx context.Context, doctorID string, from, to time.Time) (count int, lastUpdate time.Time, err error)
}

// StatusStamp carries the timestamps recorded alongside a status change
type StatusStamp struct {
	CompletedAt *time.Time
	CancelledAt *time.Time
}
