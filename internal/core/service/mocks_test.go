package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

// Mock CacheRepository
type mockCacheRepo struct {
	snapshots      map[string]domain.CartSnapshot
	ttls           map[string]time.Duration
	idempotencySet map[string]bool
	saveErr        error
	mu             sync.Mutex
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		snapshots:      make(map[string]domain.CartSnapshot),
		ttls:           make(map[string]time.Duration),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) SaveSnapshot(ctx context.Context, snapshot domain.CartSnapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshots[snapshot.SessionID] = snapshot
	m.ttls[snapshot.SessionID] = ttl
	return nil
}

func (m *mockCacheRepo) LoadSnapshot(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[sessionID]
	if !ok {
		return domain.CartSnapshot{}, port.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *mockCacheRepo) snapshot(sessionID string) (domain.CartSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[sessionID]
	return snap, ok
}

// Mock CatalogRepository
type mockCatalogRepo struct {
	products map[domain.ProductID]domain.Product
	err      error
	mu       sync.Mutex
}

func newMockCatalogRepo(products ...domain.Product) *mockCatalogRepo {
	m := &mockCatalogRepo{products: make(map[domain.ProductID]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalogRepo) UpsertProducts(ctx context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return nil
}

func (m *mockCatalogRepo) ListProducts(ctx context.Context, collection domain.Collection) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, p := range m.products {
		if collection == "" || p.Collection == collection {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, port.ErrProductNotFound
	}
	return p, nil
}

// Mock AppointmentRepository
type mockAppointmentRepo struct {
	booked map[string]domain.Appointment
	err    error
	mu     sync.Mutex
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{booked: make(map[string]domain.Appointment)}
}

func (m *mockAppointmentRepo) CreateAppointment(ctx context.Context, appt domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := appt.Date.Format(domain.DateLayout) + " " + appt.Time
	if _, ok := m.booked[key]; ok {
		return port.ErrDuplicateSlot
	}
	m.booked[key] = appt
	return nil
}

var errBackend = errors.New("backend unavailable")

func testProduct(id, name, price string, collection domain.Collection) domain.Product {
	m, err := domain.ParsePrice(price, domain.DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return domain.Product{
		ID:          domain.ProductID(id),
		Name:        name,
		Description: name + " description",
		Collection:  collection,
		Image:       "https://example.com/" + id + ".jpg",
		Price:       m,
	}
}
