package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/clock-shop/internal/adapter/storage"
	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/core/service"
	"github.com/rl1809/clock-shop/internal/port"
)

type memoryCache struct {
	mu        sync.Mutex
	snapshots map[string]domain.CartSnapshot
	keys      map[string]bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		snapshots: make(map[string]domain.CartSnapshot),
		keys:      make(map[string]bool),
	}
}

func (m *memoryCache) SaveSnapshot(ctx context.Context, snapshot domain.CartSnapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.SessionID] = snapshot
	return nil
}

func (m *memoryCache) LoadSnapshot(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[sessionID]
	if !ok {
		return domain.CartSnapshot{}, port.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *memoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryCache) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type MockAppointmentRepo struct {
	mock.Mock
}

func (m *MockAppointmentRepo) CreateAppointment(ctx context.Context, appt domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

type fixture struct {
	products     *storage.MemoryCatalog
	cart         *service.CartService
	catalog      *service.CatalogService
	appointments *service.AppointmentService
	showroom     *service.ShowroomService
	apptRepo     *MockAppointmentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	products := storage.NewMemoryCatalog()
	catalog := service.NewCatalogService(products, logger)
	require.NoError(t, catalog.Seed(context.Background(), service.SeedCatalog(), domain.DefaultCurrency, true))

	cart := service.NewCartService(newMemoryCache(), products, logger, service.CartServiceConfig{})
	t.Cleanup(cart.Close)

	apptRepo := new(MockAppointmentRepo)
	return &fixture{
		products:     products,
		cart:         cart,
		catalog:      catalog,
		appointments: service.NewAppointmentService(apptRepo, logger),
		showroom:     service.NewShowroomService(catalog),
		apptRepo:     apptRepo,
	}
}
