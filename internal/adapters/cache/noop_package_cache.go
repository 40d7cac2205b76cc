package cache

import (
	"context"
	"package-tracking-service/internal/domain"
)

// Cache used when REDIS_URL is unset: every lookup misses.
type NoopPackageCache struct{}

func (NoopPackageCache) Get(context.Context, int64) (*domain.Package, int64, error) {
	return nil, 0, nil
}
func (NoopPackageCache) Fill(context.Context, *domain.Package, int64) error { return nil }
func (NoopPackageCache) Invalidate(context.Context, int64) error            { return nil }
