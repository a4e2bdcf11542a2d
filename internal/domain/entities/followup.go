package entities

import "time"

// FollowUpStatus represents the lifecycle status of a follow-up
type FollowUpStatus string

const (
	FollowUpStatusPending              FollowUpStatus = "pending"
	FollowUpStatusAppointmentScheduled FollowUpStatus = "appointment_scheduled"
	FollowUpStatusCompleted            FollowUpStatus = "completed"
	FollowUpStatusCancelled            FollowUpStatus = "cancelled"
)

// FollowUpType categorizes the clinical purpose of a control visit.
// The value is free form; the constants below are the common presets
// surfaced to clinicians, not an exhaustive set.
type FollowUpType string

const (
	FollowUpTypePostConsult    FollowUpType = "post_consult_control"
	FollowUpTypeExamReview     FollowUpType = "exam_review"
	FollowUpTypeTreatment      FollowUpType = "treatment_control"
	FollowUpTypeChronic        FollowUpType = "chronic_control"
	FollowUpTypeProcedure      FollowUpType = "procedure_followup"
	FollowUpTypePreventiveCare FollowUpType = "preventive_control"
)

// FollowUpPriority represents the urgency of a follow-up
type FollowUpPriority string

const (
	FollowUpPriorityLow    FollowUpPriority = "low"
	FollowUpPriorityNormal FollowUpPriority = "normal"
	FollowUpPriorityHigh   FollowUpPriority = "high"
	FollowUpPriorityUrgent FollowUpPriority = "urgent"
)

// Follow-up offset defaults, in days
const (
	DefaultFollowUpOffsetDays = 15
	MaxFollowUpOffsetDays     = 365
)

// FollowUpOffsetPresets are the common offsets surfaced to clinicians
var FollowUpOffsetPresets = []int{7, 15, 30, 60, 90}

// FollowUpTypeCatalog lists the preset follow-up types
var FollowUpTypeCatalog = []FollowUpType{
	FollowUpTypePostConsult,
	FollowUpTypeExamReview,
	FollowUpTypeTreatment,
	FollowUpTypeChronic,
	FollowUpTypeProcedure,
	FollowUpTypePreventiveCare,
}

// IsValidFollowUpPriority reports whether p is a known priority
func IsValidFollowUpPriority(p FollowUpPriority) bool {
	switch p {
	case FollowUpPriorityLow, FollowUpPriorityNormal, FollowUpPriorityHigh, FollowUpPriorityUrgent:
		return true
	}
	return false
}

// FollowUp represents a deferred control visit recommendation generated
// from a prior encounter. Its lifecycle is independent of the originating
// appointment: closing or cancelling that appointment does not cascade here.
type FollowUp struct {
	ID                  string           `json:"id" db:"id"`
	PatientID           string           `json:"patient_id" db:"patient_id"`
	DoctorID            string           `json:"doctor_id" db:"doctor_id"`
	OriginAppointmentID string           `json:"origin_appointment_id" db:"origin_appointment_id"`
	Type                FollowUpType     `json:"type" db:"type"`
	Priority            FollowUpPriority `json:"priority" db:"priority"`
	OffsetDays          int              `json:"offset_days" db:"offset_days"`
	SuggestedDate       time.Time        `json:"suggested_date" db:"suggested_date"`
	Reason              string           `json:"reason" db:"reason"`
	Instructions        string           `json:"instructions" db:"instructions"`
	Status              FollowUpStatus   `json:"status" db:"status"`
	LinkedAppointmentID *string          `json:"linked_appointment_id,omitempty" db:"linked_appointment_id"`
	CompletionNotes     *string          `json:"completion_notes,omitempty" db:"completion_notes"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	ReminderSentAt      *time.Time       `json:"reminder_sent_at,omitempty" db:"reminder_sent_at"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" db:"updated_at"`
}

// SuggestedDateFrom derives the suggested control date from a creation
// instant and an offset in days, using date-only arithmetic.
func SuggestedDateFrom(createdAt time.Time, offsetDays int) time.Time {
	day := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, createdAt.Location())
	return day.AddDate(0, 0, offsetDays)
}

// IsOverdue reports whether a pending follow-up's suggested date has passed
func (f *FollowUp) IsOverdue(now time.Time) bool {
	if f.Status != FollowUpStatusPending {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return f.SuggestedDate.Before(today)
}
