package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/providers"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
)

// NotificationService handles patient-facing messages triggered by the
// encounter lifecycle. Sends are best effort: failures are recorded and
// logged, never propagated to the triggering transition.
type NotificationService struct {
	sender providers.NotificationSender
	repo   repositories.NotificationRepository
	now    func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	sender providers.NotificationSender,
	repo repositories.NotificationRepository,
) *NotificationService {
	return &NotificationService{
		sender: sender,
		repo:   repo,
		now:    time.Now,
	}
}

// SendNoShowNotice messages a patient who missed their appointment
func (n *NotificationService) SendNoShowNotice(ctx context.Context, appointment *entities.Appointment) {
	if appointment.PatientPhone == "" {
		return
	}

	name := appointment.PatientName
	if name == "" {
		name = "paciente"
	}
	body := fmt.Sprintf(
		"Hola %s, notamos que no pudo asistir a su cita de las %s. "+
			"Por favor comuníquese con la clínica para reagendarla.",
		name, appointment.StartClock(),
	)

	n.deliver(ctx, appointment.ID, entities.NotificationNoShowNotice, appointment.PatientPhone, body)
}

// SendFollowUpReminder messages a patient about an upcoming control visit
func (n *NotificationService) SendFollowUpReminder(ctx context.Context, followUp *entities.FollowUp, patientPhone string) {
	if patientPhone == "" {
		return
	}

	body := fmt.Sprintf(
		"Le recordamos su control médico sugerido para el %s. "+
			"Agende su cita con anticipación.",
		followUp.SuggestedDate.Format("2006-01-02"),
	)

	n.deliver(ctx, followUp.OriginAppointmentID, entities.NotificationFollowUpReminder, patientPhone, body)
}

func (n *NotificationService) deliver(ctx context.Context, appointmentID string, notificationType entities.NotificationType, recipient, body string) {
	logger := observability.LoggerFromContext(ctx)

	record := &entities.AppointmentNotification{
		ID:               uuid.New().String(),
		AppointmentID:    appointmentID,
		NotificationType: notificationType,
		Channel:          entities.ChannelWhatsApp,
		Recipient:        recipient,
		Status:           entities.NotificationStatusSent,
		SentAt:           n.now(),
	}

	if err := n.sender.SendText(ctx, recipient, body); err != nil {
		logger.Warn().Err(err).
			Str("appointment_id", appointmentID).
			Str("type", string(notificationType)).
			Msg("failed to send notification")
		message := err.Error()
		record.Status = entities.NotificationStatusFailed
		record.ErrorMessage = &message
	}

	if n.repo != nil {
		if err := n.repo.Create(ctx, record); err != nil {
			logger.Warn().Err(err).
				Str("appointment_id", appointmentID).
				Msg("failed to record notification")
		}
	}
}
