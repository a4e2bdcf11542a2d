package entities

import "time"

// Period buckets a time-of-day into morning, afternoon or evening
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// Fixed bucket boundaries, in minutes since midnight
const (
	AfternoonStartMinutes = 720
	EveningStartMinutes   = 1080
)

// PeriodFor returns the bucket for a time-of-day in minutes since midnight
func PeriodFor(startMinutes int) Period {
	switch {
	case startMinutes < AfternoonStartMinutes:
		return PeriodMorning
	case startMinutes < EveningStartMinutes:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// PeriodBuckets groups a day's appointments by period, each bucket
// preserving the ordered sequence's sort
type PeriodBuckets struct {
	Morning   []*Appointment `json:"morning"`
	Afternoon []*Appointment `json:"afternoon"`
	Evening   []*Appointment `json:"evening"`
}

// DailyQueue is the derived, ephemeral view of a doctor's day. It is
// recomputed in full from the latest snapshot and never mutated in place.
type DailyQueue struct {
	DoctorID       string                    `json:"doctor_id"`
	Date           string                    `json:"date"`
	Ordered        []*Appointment            `json:"ordered"`
	Periods        PeriodBuckets             `json:"periods"`
	InProgress     *Appointment              `json:"in_progress,omitempty"`
	NextUpcoming   *Appointment              `json:"next_upcoming,omitempty"`
	StatusCounts   map[AppointmentStatus]int `json:"status_counts"`
	CompletedCount int                       `json:"completed_count"`
	ProgressRatio  float64                   `json:"progress_ratio"`
	Warnings       []string                  `json:"warnings,omitempty"`
	GeneratedAt    time.Time                 `json:"generated_at"`
	Checksum       string                    `json:"checksum"`
}
