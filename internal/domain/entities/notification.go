package entities

import "time"

// NotificationChannel represents the delivery channel
type NotificationChannel string

const (
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// NotificationType represents the notification purpose
type NotificationType string

const (
	NotificationNoShowNotice     NotificationType = "no_show_notice"
	NotificationFollowUpReminder NotificationType = "follow_up_reminder"
)

// NotificationStatus represents the delivery status
type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// AppointmentNotification tracks notifications sent for an appointment
type AppointmentNotification struct {
	ID               string              `json:"id" db:"id"`
	AppointmentID    string              `json:"appointment_id" db:"appointment_id"`
	NotificationType NotificationType    `json:"notification_type" db:"notification_type"`
	Channel          NotificationChannel `json:"channel" db:"channel"`
	Recipient        string              `json:"recipient" db:"recipient"`
	Status           NotificationStatus  `json:"status" db:"status"`
	ErrorMessage     *string             `json:"error_message,omitempty" db:"error_message"`
	SentAt           time.Time           `json:"sent_at" db:"sent_at"`
}
