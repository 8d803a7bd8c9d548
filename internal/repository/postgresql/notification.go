package postgresql

import (
	"context"
	"fmt"

	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// CreateBatch implements notification.Repository.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	for _, n := range notifications {
		_, err := q.Exec(ctx, `
			INSERT INTO notifications (
				id, recipient_id, severity, title, body,
				related_entity_kind, related_entity_id, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			n.ID, n.RecipientID, n.Severity, n.Title, n.Body,
			n.RelatedEntityKind, n.RelatedEntityID, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}
	return nil
}

// ListByRecipient implements notification.Repository.
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	rows, err := q.Query(ctx, `
		SELECT id, recipient_id, severity, title, body,
		       related_entity_kind, related_entity_id, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Severity, &n.Title, &n.Body,
			&n.RelatedEntityKind, &n.RelatedEntityID, &n.ReadAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead implements notification.Repository.
func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE id = $1 AND read_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
