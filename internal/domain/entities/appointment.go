package entities

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusWaiting    AppointmentStatus = "waiting"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// Duration bounds for a single appointment, in minutes
const (
	MinAppointmentDuration     = 5
	MaxAppointmentDuration     = 480
	DefaultAppointmentDuration = 30
)

const minutesPerDay = 24 * 60

// allowedTransitions maps each status to the set of statuses reachable from it.
// Terminal statuses have no entry.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {
		AppointmentStatusConfirmed,
		AppointmentStatusWaiting,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusWaiting,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusWaiting: {
		AppointmentStatusInProgress,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusInProgress: {
		AppointmentStatusCompleted,
	},
}

// IsValidStatus reports whether s is one of the known appointment statuses
func IsValidStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusWaiting,
		AppointmentStatusInProgress, AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is reachable from s in a single step
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s. The returned
// slice is a copy and may be modified by the caller.
func (s AppointmentStatus) AllowedTransitions() []AppointmentStatus {
	targets := allowedTransitions[s]
	out := make([]AppointmentStatus, len(targets))
	copy(out, targets)
	return out
}

// Appointment represents a scheduled clinical encounter between a patient and a doctor
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	PatientID       string            `json:"patient_id" db:"patient_id"`
	DoctorID        string            `json:"doctor_id" db:"doctor_id"`
	SpecialtyID     *string           `json:"specialty_id,omitempty" db:"specialty_id"`
	ScheduledDate   time.Time         `json:"scheduled_date" db:"scheduled_date"`
	StartMinutes    int               `json:"start_minutes" db:"start_minutes"`
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Emergency       bool              `json:"emergency" db:"emergency"`
	Priority        string            `json:"priority" db:"priority"`
	Reason          string            `json:"reason" db:"reason"`
	PatientName     string            `json:"patient_name" db:"patient_name"`
	PatientPhone    string            `json:"patient_phone" db:"patient_phone"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// StartClock renders the start time as HH:MM
func (a *Appointment) StartClock() string {
	return fmt.Sprintf("%02d:%02d", a.StartMinutes/60, a.StartMinutes%60)
}

// Validate checks the schedule fields of the appointment against the given
// duration bounds. Non-positive bounds fall back to the package defaults.
func (a *Appointment) Validate(minDuration, maxDuration int) error {
	if minDuration <= 0 {
		minDuration = MinAppointmentDuration
	}
	if maxDuration <= 0 {
		maxDuration = MaxAppointmentDuration
	}
	if a.StartMinutes < 0 || a.StartMinutes >= minutesPerDay {
		return fmt.Errorf("start time %d is outside the calendar day", a.StartMinutes)
	}
	if a.DurationMinutes < minDuration || a.DurationMinutes > maxDuration {
		return fmt.Errorf("duration %d is outside the allowed range [%d, %d]",
			a.DurationMinutes, minDuration, maxDuration)
	}
	if a.StartMinutes+a.DurationMinutes > minutesPerDay {
		return fmt.Errorf("appointment ending at %d spills past midnight", a.StartMinutes+a.DurationMinutes)
	}
	if !IsValidStatus(a.Status) {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	return nil
}
