package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateRequest = errors.New("duplicate request")
)

const (
	DefaultSessionTTL = 30 * time.Minute
	idempotencyPrefix = "cart:add:"
)

type CartServiceConfig struct {
	Currency   string
	SessionTTL time.Duration
	QueueSize  int
}

type CartItemView struct {
	ID               domain.ProductID `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Image            string           `json:"image"`
	UnitPrice        float64          `json:"unit_price"`
	Currency         string           `json:"currency"`
	Quantity         int              `json:"quantity"`
	LineTotal        float64          `json:"line_total"`
	DisplayPrice     string           `json:"display_price"`
	DisplayLineTotal string           `json:"display_line_total"`
}

type CartView struct {
	SessionID    string         `json:"session_id"`
	Items        []CartItemView `json:"items"`
	IsOpen       bool           `json:"is_open"`
	TotalItems   int            `json:"total_items"`
	TotalPrice   float64        `json:"total_price"`
	Currency     string         `json:"currency"`
	DisplayTotal string         `json:"display_total"`
}

type cartSession struct {
	id          string
	mu          sync.Mutex // serialises mutate + snapshot save
	store       *domain.CartStore
	unsubscribe func()

	// guarded by mu
	pending []domain.CartChange
	evicted bool
}

// CartService owns one CartStore per visitor session. Live sessions are kept
// in memory for the session TTL and every mutation is snapshotted to the
// cache, so a session evicted here (or served by another instance) is
// rehydrated on its next request.
type CartService struct {
	cache      port.CacheRepository
	catalog    port.CatalogRepository
	logger     *zap.Logger
	currency   string
	sessionTTL time.Duration
	now        func() time.Time

	sessions *ttlcache.Cache[string, *cartSession]
	loadMu   sync.Mutex

	eventQueue chan domain.CartEvent
	closeMu    sync.RWMutex
	closed     bool
}

func NewCartService(cache port.CacheRepository, catalog port.CatalogRepository, logger *zap.Logger, cfg CartServiceConfig) *CartService {
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &CartService{
		cache:      cache,
		catalog:    catalog,
		logger:     logger,
		currency:   cfg.Currency,
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
		sessions: ttlcache.New[string, *cartSession](
			ttlcache.WithTTL[string, *cartSession](cfg.SessionTTL),
		),
		eventQueue: make(chan domain.CartEvent, cfg.QueueSize),
	}

	s.sessions.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *cartSession]) {
		sess := item.Value()
		sess.mu.Lock()
		sess.evicted = true
		sess.mu.Unlock()
		sess.unsubscribe()
		s.logger.Debug("cart session evicted", zap.String("session_id", item.Key()), zap.Int("reason", int(reason)))
	})
	go s.sessions.Start()

	return s
}

func (s *CartService) CreateSession(ctx context.Context) (CartView, error) {
	id := uuid.NewString()
	store := domain.NewCartStore(s.currency)
	if err := s.save(ctx, id, store); err != nil {
		return CartView{}, err
	}

	sess := s.register(id, store)
	s.logger.Info("created cart session", zap.String("session_id", id))
	return s.view(sess), nil
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (CartView, error) {
	sess, err := s.lock(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// AddToCart adds one unit of the catalog product. A non-empty requestID makes
// the call idempotent: replaying it returns ErrDuplicateRequest. The request
// id is released again when the add fails, so the client may retry it.
func (s *CartService) AddToCart(ctx context.Context, sessionID string, productID domain.ProductID, requestID string) (CartView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if errors.Is(err, port.ErrProductNotFound) {
		return CartView{}, ErrProductNotFound
	}
	if err != nil {
		return CartView{}, fmt.Errorf("get product: %w", err)
	}
	if product.Price.Currency != sess.store.Currency() {
		return CartView{}, fmt.Errorf("add %s: %w", productID, domain.ErrCurrencyMismatch)
	}

	var key string
	if requestID != "" {
		key = idempotencyPrefix + sessionID + ":" + requestID
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return CartView{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return CartView{}, ErrDuplicateRequest
		}
	}

	view, err := s.mutate(ctx, sessionID, func(store *domain.CartStore) {
		s.logger.Info("adding item", zap.String("session_id", sessionID), zap.String("product_id", string(productID)))
		store.AddToCart(product.Descriptor())
	})
	if err != nil && key != "" {
		if relErr := s.cache.ReleaseIdempotency(context.WithoutCancel(ctx), key); relErr != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("session_id", sessionID), zap.Error(relErr))
		}
	}
	return view, err
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID domain.ProductID, quantity int) (CartView, error) {
	return s.mutate(ctx, sessionID, func(store *domain.CartStore) {
		s.logger.Info("updating quantity",
			zap.String("session_id", sessionID),
			zap.String("product_id", string(productID)),
			zap.Int("new_quantity", quantity),
		)
		store.UpdateQuantity(productID, quantity)
	})
}

func (s *CartService) RemoveFromCart(ctx context.Context, sessionID string, productID domain.ProductID) (CartView, error) {
	return s.mutate(ctx, sessionID, func(store *domain.CartStore) {
		s.logger.Info("removing item", zap.String("session_id", sessionID), zap.String("product_id", string(productID)))
		store.RemoveFromCart(productID)
	})
}

func (s *CartService) OpenCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutate(ctx, sessionID, func(store *domain.CartStore) {
		store.OpenCart()
	})
}

func (s *CartService) CloseCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutate(ctx, sessionID, func(store *domain.CartStore) {
		store.CloseCart()
	})
}

func (s *CartService) GetEventQueue() <-chan domain.CartEvent {
	return s.eventQueue
}

// Close stops session expiry and closes the event queue. Cart calls made
// after Close still work but their events are dropped.
func (s *CartService) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.sessions.Stop()
	close(s.eventQueue)
}

// mutate applies fn to the session cart and saves the result. If the save
// fails the cart is rolled back and the changes fn made are never published.
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*domain.CartStore)) (CartView, error) {
	sess, err := s.lock(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	defer sess.mu.Unlock()

	prev := sess.store.State()
	fn(sess.store)
	changes := sess.pending
	sess.pending = nil

	if err := s.save(ctx, sess.id, sess.store); err != nil {
		sess.store.Restore(prev)
		return CartView{}, err
	}
	for _, change := range changes {
		s.publish(sess.id, change)
	}
	return s.view(sess), nil
}

// lock returns the live session with its mutex held. A session evicted while
// the caller waited is reloaded from its snapshot instead.
func (s *CartService) lock(ctx context.Context, sessionID string) (*cartSession, error) {
	for {
		sess, err := s.session(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		if !sess.evicted {
			return sess, nil
		}
		sess.mu.Unlock()
	}
}

// session returns the live session, rehydrating it from its snapshot when it
// is no longer in memory.
func (s *CartService) session(ctx context.Context, sessionID string) (*cartSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	if item := s.sessions.Get(sessionID); item != nil {
		return item.Value(), nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if item := s.sessions.Get(sessionID); item != nil {
		return item.Value(), nil
	}

	snapshot, err := s.cache.LoadSnapshot(ctx, sessionID)
	if errors.Is(err, port.ErrSnapshotNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	currency := snapshot.Currency
	if currency == "" {
		currency = s.currency
	}
	store := domain.NewCartStore(currency)
	store.Restore(snapshot.State)

	s.logger.Info("restored cart session", zap.String("session_id", sessionID), zap.Int("items", len(snapshot.State.Items)))
	return s.register(sessionID, store), nil
}

func (s *CartService) register(sessionID string, store *domain.CartStore) *cartSession {
	sess := &cartSession{id: sessionID, store: store}
	// Changes only happen inside mutate, which holds sess.mu.
	sess.unsubscribe = store.Subscribe(func(change domain.CartChange) {
		sess.pending = append(sess.pending, change)
	})
	s.sessions.Set(sessionID, sess, ttlcache.DefaultTTL)
	return sess
}

func (s *CartService) save(ctx context.Context, sessionID string, store *domain.CartStore) error {
	snapshot := domain.CartSnapshot{
		SessionID: sessionID,
		Currency:  store.Currency(),
		State:     store.State(),
		UpdatedAt: s.now(),
	}
	if err := s.cache.SaveSnapshot(ctx, snapshot, s.sessionTTL); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *CartService) publish(sessionID string, change domain.CartChange) {
	event := domain.CartEvent{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Kind:       change.Kind,
		ProductID:  change.ProductID,
		Quantity:   change.Quantity,
		OccurredAt: s.now(),
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.eventQueue <- event:
	default:
		s.logger.Warn("event queue full, dropping cart event",
			zap.String("session_id", sessionID),
			zap.String("kind", string(change.Kind)),
		)
	}
}

func (s *CartService) view(sess *cartSession) CartView {
	state := sess.store.State()
	total := sess.store.TotalPrice()

	items := make([]CartItemView, 0, len(state.Items))
	for _, it := range state.Items {
		line := it.LineTotal()
		items = append(items, CartItemView{
			ID:               it.ID,
			Name:             it.Name,
			Description:      it.Description,
			Image:            it.Image,
			UnitPrice:        it.Price.Float64(),
			Currency:         it.Price.Currency,
			Quantity:         it.Quantity,
			LineTotal:        line.Float64(),
			DisplayPrice:     it.Price.Format(),
			DisplayLineTotal: line.Format(),
		})
	}

	return CartView{
		SessionID:    sess.id,
		Items:        items,
		IsOpen:       state.IsOpen,
		TotalItems:   sess.store.TotalItems(),
		TotalPrice:   total.Float64(),
		Currency:     total.Currency,
		DisplayTotal: total.Format(),
	}
}
