package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	"github.com/clinicamia/agenda-service/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

// NotificationAdapter implements the NotificationRepository interface
type NotificationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewNotificationAdapter creates a new notification adapter
func NewNotificationAdapter(client *postgres.Client) repositories.NotificationRepository {
	return &NotificationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create records a sent or failed notification
func (a *NotificationAdapter) Create(ctx context.Context, notification *entities.AppointmentNotification) error {
	record := goqu.Record{
		"id":                notification.ID,
		"appointment_id":    notification.AppointmentID,
		"notification_type": notification.NotificationType,
		"channel":           notification.Channel,
		"recipient":         notification.Recipient,
		"status":            notification.Status,
		"error_message":     notification.ErrorMessage,
		"sent_at":           notification.SentAt,
	}

	query, args, err := a.db.Insert("appointment_notifications").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to record notification", err)
	}

	return nil
}

// ListByAppointment retrieves notifications for an appointment
func (a *NotificationAdapter) ListByAppointment(ctx context.Context, appointmentID string) ([]*entities.AppointmentNotification, error) {
	query, args, err := a.db.Select(
		"id", "appointment_id", "notification_type", "channel",
		"recipient", "status", "error_message", "sent_at",
	).From("appointment_notifications").
		Where(goqu.Ex{"appointment_id": appointmentID}).
		Order(goqu.I("sent_at").Desc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list notifications", err)
	}
	defer rows.Close()

	var notifications []*entities.AppointmentNotification
	for rows.Next() {
		notification := &entities.AppointmentNotification{}
		var errorMessage sql.NullString

		err := rows.Scan(
			&notification.ID,
			&notification.AppointmentID,
			&notification.NotificationType,
			&notification.Channel,
			&notification.Recipient,
			&notification.Status,
			&errorMessage,
			&notification.SentAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan notification", err)
		}

		if errorMessage.Valid {
			notification.ErrorMessage = &errorMessage.String
		}

		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}
