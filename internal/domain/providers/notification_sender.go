package providers

import "context"

// NotificationSender delivers a text message to a patient's phone.
// Implementations are best-effort; a delivery failure never blocks the
// state transition that triggered it.
type NotificationSender interface {
	// SendText sends a free-form text message to the given phone number
	SendText(ctx context.Context, toPhone, message string) error
}
