package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
)

type CorrectionRepository struct {
	mu       sync.RWMutex
	requests map[string]correction.Request
	events   []correction.Event
	applied  map[string]bool
}

func NewCorrectionRepository() *CorrectionRepository {
	return &CorrectionRepository{
		requests: make(map[string]correction.Request),
		applied:  make(map[string]bool),
	}
}

func (r *CorrectionRepository) Create(_ context.Context, req correction.Request) (correction.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = cloneRequest(req)
	return req, nil
}

func (r *CorrectionRepository) GetByID(_ context.Context, id string) (correction.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return correction.Request{}, correction.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *CorrectionRepository) Update(_ context.Context, req correction.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return correction.ErrRequestNotFound
	}
	r.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *CorrectionRepository) List(_ context.Context, filter correction.Filter) ([]correction.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []correction.Request
	for _, req := range r.requests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.LineManagerID != nil && req.LineManagerID != *filter.LineManagerID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.From != nil && req.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && req.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CorrectionRepository) ListSubmittedInPeriod(ctx context.Context, from, to time.Time) ([]correction.Request, error) {
	status := correction.StatusSubmitted
	return r.List(ctx, correction.Filter{Status: &status, From: &from, To: &to})
}

func (r *CorrectionRepository) ListApprovedUnapplied(_ context.Context) ([]correction.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []correction.Request
	for _, req := range r.requests {
		if req.Status == correction.StatusApproved && req.AppliedToPayroll && !r.applied[req.ID] {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CorrectionRepository) MarkApplied(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return correction.ErrRequestNotFound
	}
	r.applied[id] = true
	return nil
}

func (r *CorrectionRepository) AppendEvent(_ context.Context, event correction.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *CorrectionRepository) ListEvents(_ context.Context, correctionID string) ([]correction.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []correction.Event
	for _, e := range r.events {
		if e.CorrectionID == correctionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func cloneRequest(req correction.Request) correction.Request {
	flow := make([]correction.FlowEntry, len(req.ApprovalFlow))
	copy(flow, req.ApprovalFlow)
	req.ApprovalFlow = flow
	return req
}

// CorrectionConfigRepository serves the single active duration config.
type CorrectionConfigRepository struct {
	mu     sync.RWMutex
	config *correction.DurationConfig
}

func NewCorrectionConfigRepository() *CorrectionConfigRepository {
	return &CorrectionConfigRepository{}
}

func (r *CorrectionConfigRepository) SetActive(cfg correction.DurationConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = &cfg
}

func (r *CorrectionConfigRepository) GetActive(_ context.Context) (correction.DurationConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.config == nil {
		return correction.DurationConfig{}, correction.ErrNoDurationConfig
	}
	return *r.config, nil
}
