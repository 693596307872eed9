package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID          ProductID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Price       Money     `json:"price"`
	Quantity    int       `json:"quantity"`
}

func (i CartItem) LineTotal() Money {
	return i.Price.Mul(i.Quantity)
}

type CartState struct {
	Items  []CartItem `json:"items"`
	IsOpen bool       `json:"is_open"`
}

type ChangeKind string

const (
	ChangeItemAdded       ChangeKind = "item_added"
	ChangeQuantityUpdated ChangeKind = "quantity_updated"
	ChangeItemRemoved     ChangeKind = "item_removed"
	ChangeCartOpened      ChangeKind = "cart_opened"
	ChangeCartClosed      ChangeKind = "cart_closed"
)

// CartChange describes one mutation that altered the cart. Quantity is the
// item's quantity after the change (0 when removed).
type CartChange struct {
	Kind      ChangeKind
	ProductID ProductID
	Quantity  int
	State     CartState
}

type subscriber struct {
	id int
	fn func(CartChange)
}

// CartStore is the cart of a single visitor session.
//
// Items are unique by product id and always carry a quantity of at least one.
// Totals are derived on every call and never stored. Subscribers are called
// after the store lock is released, in the order they subscribed, and only for
// operations that changed the cart.
type CartStore struct {
	mu          sync.Mutex
	currency    string
	items       []CartItem
	isOpen      bool
	subscribers []subscriber
	nextSubID   int
}

func NewCartStore(currency string) *CartStore {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &CartStore{currency: currency}
}

func (s *CartStore) Currency() string {
	return s.currency
}

// AddToCart puts one unit of the product in the cart. A product already in
// the cart only has its quantity bumped; its name, price and image stay as
// they were first added. The cart is not opened.
func (s *CartStore) AddToCart(p ProductDescriptor) {
	s.mu.Lock()
	var quantity int
	if i := s.indexLocked(p.ID); i >= 0 {
		s.items[i].Quantity++
		quantity = s.items[i].Quantity
	} else {
		s.items = append(s.items, CartItem{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Image:       p.Image,
			Price:       p.Price,
			Quantity:    1,
		})
		quantity = 1
	}
	s.notifyAndUnlock(ChangeItemAdded, p.ID, quantity)
}

func (s *CartStore) RemoveFromCart(id ProductID) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.notifyAndUnlock(ChangeItemRemoved, id, 0)
}

// UpdateQuantity sets the quantity of an item already in the cart. A quantity
// of zero or less removes the item.
func (s *CartStore) UpdateQuantity(id ProductID, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(id)
		return
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity = quantity
	s.notifyAndUnlock(ChangeQuantityUpdated, id, quantity)
}

func (s *CartStore) OpenCart() {
	s.setOpen(true)
}

func (s *CartStore) CloseCart() {
	s.setOpen(false)
}

func (s *CartStore) setOpen(open bool) {
	s.mu.Lock()
	if s.isOpen == open {
		s.mu.Unlock()
		return
	}
	s.isOpen = open

	kind := ChangeCartClosed
	if open {
		kind = ChangeCartOpened
	}
	s.notifyAndUnlock(kind, "", 0)
}

func (s *CartStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums price x quantity over all items in the store currency.
func (s *CartStore) TotalPrice() Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal().Amount)
	}
	return Money{Amount: total, Currency: s.currency}
}

// State returns a copy of the cart.
func (s *CartStore) State() CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Restore replaces the cart with a previously captured state. Duplicate ids
// are merged into the first occurrence and items without a positive quantity
// are dropped. Subscribers are not notified.
func (s *CartStore) Restore(state CartState) {
	items := make([]CartItem, 0, len(state.Items))
	seen := make(map[ProductID]int, len(state.Items))
	for _, it := range state.Items {
		if it.Quantity <= 0 {
			continue
		}
		if i, ok := seen[it.ID]; ok {
			items[i].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(items)
		items = append(items, it)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.isOpen = state.IsOpen
}

// Subscribe registers fn for every effective change. The returned function
// removes the subscription.
func (s *CartStore) Subscribe(fn func(CartChange)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *CartStore) indexLocked(id ProductID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *CartStore) stateLocked() CartState {
	items := make([]CartItem, len(s.items))
	copy(items, s.items)
	return CartState{Items: items, IsOpen: s.isOpen}
}

// notifyAndUnlock must be called with s.mu held.
func (s *CartStore) notifyAndUnlock(kind ChangeKind, id ProductID, quantity int) {
	if len(s.subscribers) == 0 {
		s.mu.Unlock()
		return
	}

	change := CartChange{Kind: kind, ProductID: id, Quantity: quantity, State: s.stateLocked()}
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}
