package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
)

type NotificationRepository struct {
	mu   sync.RWMutex
	rows []notification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateBatch(_ context.Context, notifications []notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, notifications...)
	return nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []notification.Notification
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].RecipientID != recipientID {
			continue
		}
		out = append(out, r.rows[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			now := time.Now().UTC()
			r.rows[i].ReadAt = &now
			return nil
		}
	}
	return errors.New("notification not found")
}
