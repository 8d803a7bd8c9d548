package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
)

// Config holds the sink's queue and worker tuning.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

type service struct {
	repo   notification.Repository
	config Config

	queue  chan notification.Message
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotificationService starts the background workers. Delivery is
// fire-and-forget: Send never blocks and failures never reach callers.
func NewNotificationService(repo notification.Repository, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		config: cfg,
		queue:  make(chan notification.Message, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification sink started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

// Send implements notification.Service. When the queue is full the
// message is dropped and logged.
func (s *service) Send(msg notification.Message) {
	select {
	case s.queue <- msg:
	default:
		slog.Warn("notification queue full, dropping message",
			"title", msg.Title,
			"recipients", len(msg.Recipients),
		)
	}
}

// Close drains the queue and stops the workers.
func (s *service) Close() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.Notification, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			slog.Error("failed to flush notification batch",
				"worker", id,
				"count", len(batch),
				"error", err,
			)
		}
		batch = batch[:0]
	}

	for {
		select {
		case msg := <-s.queue:
			batch = append(batch, expand(msg)...)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued, then final flush.
			for {
				select {
				case msg := <-s.queue:
					batch = append(batch, expand(msg)...)
				default:
					flush()
					return
				}
			}
		}
	}
}

// expand fans one message out to one row per recipient.
func expand(msg notification.Message) []notification.Notification {
	now := time.Now().UTC()
	rows := make([]notification.Notification, 0, len(msg.Recipients))
	for _, recipient := range msg.Recipients {
		rows = append(rows, notification.Notification{
			ID:                uuid.NewString(),
			RecipientID:       recipient,
			Severity:          msg.Severity,
			Title:             msg.Title,
			Body:              msg.Body,
			RelatedEntityKind: msg.RelatedEntityKind,
			RelatedEntityID:   msg.RelatedEntityID,
			CreatedAt:         now,
		})
	}
	return rows
}
