package employee

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context, entityID string) ([]Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]Employee, error)
}
