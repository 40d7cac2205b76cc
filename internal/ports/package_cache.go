package ports

import (
	"context"
	"package-tracking-service/internal/domain"
)

// Contract for a read-through cache of packages keyed by id.
// Get reports a miss as a nil package together with the id's current version.
// Fill stores a package read after that miss only if no Invalidate for the id
// happened since; otherwise it silently drops it.
type PackageCache interface {
	Get(ctx context.Context, id int64) (*domain.Package, int64, error)
	Fill(ctx context.Context, p *domain.Package, version int64) error
	Invalidate(ctx context.Context, id int64) error
}
