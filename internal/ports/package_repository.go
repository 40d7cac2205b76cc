package ports

import (
	"context"
	"package-tracking-service/internal/domain"
)

// Port: the persistence boundary for Package records.
// Implementations return domain.ErrNotFound for missing ids and
// domain.ErrDuplicateTrackingNumber when the store rejects a tracking number.
type PackageRepository interface {
	// Insert p and fill in its generated ID.
	Create(ctx context.Context, p *domain.Package) error
	// Return active packages ordered by id, skipping offset and returning at most limit.
	ListActive(ctx context.Context, offset, limit int) ([]*domain.Package, error)
	// Count active packages.
	CountActive(ctx context.Context) (int, error)
	// Return the package with the given id regardless of its active flag.
	Get(ctx context.Context, id int64) (*domain.Package, error)
	// Return the package holding trackingNumber regardless of its active flag.
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Package, error)
	// Persist the business fields of p.
	Update(ctx context.Context, p *domain.Package) error
	// Flip the active flag of the package with the given id.
	SetActive(ctx context.Context, id int64, active bool) error
	// Permanently remove the package. Removing a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	// Verify the store is reachable.
	Ping(ctx context.Context) error
}
