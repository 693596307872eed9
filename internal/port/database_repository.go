package port

import (
	"context"
	"errors"

	"github.com/rl1809/clock-shop/internal/core/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSlot   = errors.New("appointment slot already booked")
)

type CatalogRepository interface {
	// UpsertProducts inserts or replaces catalog products by id
	UpsertProducts(ctx context.Context, products []domain.Product) error

	// ListProducts returns products ordered by collection then position; an empty collection lists all
	ListProducts(ctx context.Context, collection domain.Collection) ([]domain.Product, error)

	// GetProduct retrieves a product by id, or ErrProductNotFound
	GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error)
}

type AppointmentRepository interface {
	// CreateAppointment persists a booking; returns ErrDuplicateSlot when the date and time are taken
	CreateAppointment(ctx context.Context, appt domain.Appointment) error
}

type EventRepository interface {
	// AppendCartEvent writes one cart change to the journal
	AppendCartEvent(ctx context.Context, event domain.CartEvent) error
}
