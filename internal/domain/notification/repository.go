package notification

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, notifications []Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Service delivers notifications asynchronously. Send never blocks the
// caller and delivery failures are logged, not returned.
type Service interface {
	Send(msg Message)
	Close()
}
