package services

import (
	"context"
	"errors"
	"fmt"
	"package-tracking-service/internal/adapters/cache"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/ports"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultListLimit    = 10
	DefaultMaxListLimit = 100
)

// PackageService is the only writer of the package store.
// It enforces tracking number uniqueness and existence rules for both the
// JSON API and the web pages.
type PackageService struct {
	Repo         ports.PackageRepository
	Cache        ports.PackageCache
	MaxListLimit int
	Now          func() time.Time
}

// NewPackageService wires a service; a nil cache disables caching.
func NewPackageService(repo ports.PackageRepository, c ports.PackageCache, maxListLimit int) *PackageService {
	if c == nil {
		c = cache.NoopPackageCache{}
	}
	if maxListLimit < 1 {
		maxListLimit = DefaultMaxListLimit
	}

	return &PackageService{
		Repo:         repo,
		Cache:        c,
		MaxListLimit: maxListLimit,
		Now:          time.Now,
	}
}

// Postgres keeps microseconds; truncating keeps the returned record equal to the stored one.
func (s *PackageService) now() time.Time {
	return s.Now().UTC().Truncate(time.Microsecond)
}

// Create stores a new active package.
// A tracking number is never reused, even when its package was soft-deleted.
func (s *PackageService) Create(ctx context.Context, in domain.PackageInput) (*domain.Package, error) {
	_, err := s.Repo.GetByTrackingNumber(ctx, in.TrackingNumber)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateTrackingNumber
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("create package: check tracking number: %w", err)
	}

	p := domain.NewPackage(in, s.now())
	// The store's unique constraint settles races between the check above and this insert.
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	return p, nil
}

// List returns active packages after skipping offset, at most limit of them.
// A non-positive limit means DefaultListLimit; limits above MaxListLimit are capped.
func (s *PackageService) List(ctx context.Context, offset, limit int) ([]*domain.Package, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > s.MaxListLimit {
		limit = s.MaxListLimit
	}

	pkgs, err := s.Repo.ListActive(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	return pkgs, nil
}

// CountActive returns the number of packages that are not soft-deleted.
func (s *PackageService) CountActive(ctx context.Context) (int, error) {
	n, err := s.Repo.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("count packages: %w", err)
	}
	return n, nil
}

// Get returns a package whether or not it is active.
// Cache read failures fall back to the store.
func (s *PackageService) Get(ctx context.Context, id int64) (*domain.Package, error) {
	cached, version, cacheErr := s.Cache.Get(ctx, id)
	if cacheErr != nil {
		zerolog.Ctx(ctx).Warn().Err(cacheErr).Int64("package_id", id).Msg("package cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}

	if cacheErr == nil {
		if err := s.Cache.Fill(ctx, p, version); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("package_id", id).Msg("package cache write failed")
		}
	}

	return p, nil
}

// Update replaces all business fields of a package.
// id, created_at and active keep their stored values.
func (s *PackageService) Update(ctx context.Context, id int64, in domain.PackageInput) (*domain.Package, error) {
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}

	holder, err := s.Repo.GetByTrackingNumber(ctx, in.TrackingNumber)
	switch {
	case err == nil && holder.ID != id:
		return nil, domain.ErrDuplicateTrackingNumber
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("update package: check tracking number: %w", err)
	}

	p.Apply(in)
	if err := s.mutate(ctx, "update package", id, func() error {
		return s.Repo.Update(ctx, p)
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// SoftDelete hides a package from listings. Repeating it is not an error.
func (s *PackageService) SoftDelete(ctx context.Context, id int64) error {
	return s.mutate(ctx, "soft delete package", id, func() error {
		return s.Repo.SetActive(ctx, id, false)
	})
}

// HardDelete removes a package permanently. A missing id is a no-op.
func (s *PackageService) HardDelete(ctx context.Context, id int64) error {
	return s.mutate(ctx, "hard delete package", id, func() error {
		return s.Repo.Delete(ctx, id)
	})
}

// Ping reports whether the store is reachable.
func (s *PackageService) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

// mutate runs write between two cache invalidations of id.
// A failed first invalidation aborts before the store is touched. The second
// drops any fill that read the store before write committed.
func (s *PackageService) mutate(ctx context.Context, op string, id int64, write func() error) error {
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		return fmt.Errorf("%s: invalidate cache: %w", op, err)
	}
	if err := write(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		return fmt.Errorf("%s: invalidate cache: %w", op, err)
	}

	return nil
}
