package correction

import (
	"context"
	"time"
)

// Repository defines data access for correction requests and their audit
// log.
type Repository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, req Request) error

	// List returns requests matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Request, error)

	// ListSubmittedInPeriod returns SUBMITTED requests created in
	// [from, to], for cutoff stamping.
	ListSubmittedInPeriod(ctx context.Context, from, to time.Time) ([]Request, error)

	// ListApprovedUnapplied returns approved requests not yet picked up
	// by payroll.
	ListApprovedUnapplied(ctx context.Context) ([]Request, error)

	// MarkApplied flags an approved request as consumed by payroll.
	MarkApplied(ctx context.Context, id string) error

	AppendEvent(ctx context.Context, event Event) error
	ListEvents(ctx context.Context, correctionID string) ([]Event, error)
}

// ConfigRepository resolves the active duration config. Returns
// ErrRequestNotFound-style sentinel from the implementation when nothing
// is configured; callers fall back to DefaultMaxDurationMinutes.
type ConfigRepository interface {
	GetActive(ctx context.Context) (DurationConfig, error)
}

// Service is the correction workflow engine's contract.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (Response, error)
	Decide(ctx context.Context, req DecideRequest) (Response, error)
	Get(ctx context.Context, id string) (Response, error)
	List(ctx context.Context, filter Filter) ([]Response, error)
	PendingForManager(ctx context.Context, managerID string) ([]Response, error)
	ApprovedUnapplied(ctx context.Context) ([]Response, error)
}
