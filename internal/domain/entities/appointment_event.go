package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// AppointmentEventType represents the type of appointment event
type AppointmentEventType string

const AppointmentEventTypeStatusChanged AppointmentEventType = "status_changed"

// AppointmentEvent represents a real-time update for a doctor's queue
type AppointmentEvent struct {
	ID            string               `json:"id"`
	DoctorID      string               `json:"doctor_id"`
	AppointmentID string               `json:"appointment_id"`
	EventType     AppointmentEventType `json:"event_type"`
	FromStatus    AppointmentStatus    `json:"from_status,omitempty"`
	ToStatus      AppointmentStatus    `json:"to_status,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewStatusChangedEvent creates an event for a successful transition
func NewStatusChangedEvent(doctorID, appointmentID string, from, to AppointmentStatus) *AppointmentEvent {
	return &AppointmentEvent{
		ID:            generateEventID(),
		DoctorID:      doctorID,
		AppointmentID: appointmentID,
		EventType:     AppointmentEventTypeStatusChanged,
		FromStatus:    from,
		ToStatus:      to,
		Timestamp:     time.Now(),
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
