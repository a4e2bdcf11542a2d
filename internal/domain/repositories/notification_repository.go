package repositories

import (
	"context"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
)

// NotificationRepository records notifications sent for appointments
type NotificationRepository interface {
	// Create records a sent or failed notification
	Create(ctx context.Context, notification *entities.AppointmentNotification) error

	// ListByAppointment retrieves notifications for an appointment
	ListByAppointment(ctx context.Context, appointmentID string) ([]*entities.AppointmentNotification, error)
}
