package repositories

import (
	"context"
	"package-tracking-service/internal/domain"
	"sort"
	"sync"
)

// In-memory implementation of the PackageRepository port.
// It enforces the same tracking number uniqueness as the SQL schema and
// backs DB_DRIVER=memory as well as service tests.
type MemoryPackageRepository struct {
	mu       sync.RWMutex
	nextID   int64
	packages map[int64]domain.Package
}

func NewMemoryPackageRepository() *MemoryPackageRepository {
	return &MemoryPackageRepository{packages: make(map[int64]domain.Package)}
}

func (m *MemoryPackageRepository) Create(_ context.Context, p *domain.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.trackingNumberTaken(p.TrackingNumber, 0) {
		return domain.ErrDuplicateTrackingNumber
	}

	m.nextID++
	p.ID = m.nextID
	m.packages[p.ID] = *p
	return nil
}

func (m *MemoryPackageRepository) ListActive(_ context.Context, offset, limit int) ([]*domain.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := m.sortedActive()
	if offset >= len(active) {
		return []*domain.Package{}, nil
	}
	active = active[offset:]
	if limit < len(active) {
		active = active[:limit]
	}

	return active, nil
}

func (m *MemoryPackageRepository) CountActive(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sortedActive()), nil
}

func (m *MemoryPackageRepository) Get(_ context.Context, id int64) (*domain.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.packages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryPackageRepository) GetByTrackingNumber(_ context.Context, trackingNumber string) (*domain.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.packages {
		if p.TrackingNumber == trackingNumber {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryPackageRepository) Update(_ context.Context, p *domain.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.packages[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if m.trackingNumberTaken(p.TrackingNumber, p.ID) {
		return domain.ErrDuplicateTrackingNumber
	}

	stored.Apply(p.Input())
	m.packages[p.ID] = stored
	return nil
}

func (m *MemoryPackageRepository) SetActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.packages[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = active
	m.packages[id] = p
	return nil
}

func (m *MemoryPackageRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.packages, id)
	return nil
}

func (m *MemoryPackageRepository) Ping(context.Context) error { return nil }

// Callers hold m.mu.
func (m *MemoryPackageRepository) trackingNumberTaken(trackingNumber string, exceptID int64) bool {
	for id, p := range m.packages {
		if id != exceptID && p.TrackingNumber == trackingNumber {
			return true
		}
	}
	return false
}

// Callers hold m.mu.
func (m *MemoryPackageRepository) sortedActive() []*domain.Package {
	out := make([]*domain.Package, 0, len(m.packages))
	for _, p := range m.packages {
		if p.Active {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
