package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

const mysqlDuplicateEntry = 1062

//go:embed schema.sql
var schema string

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the tables the adapter needs if they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) UpsertProducts(ctx context.Context, products []domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, name, description, tag, collection, position, image, images,
			price, currency, specifications, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), description = VALUES(description), tag = VALUES(tag),
			collection = VALUES(collection), position = VALUES(position), image = VALUES(image),
			images = VALUES(images), price = VALUES(price), currency = VALUES(currency),
			specifications = VALUES(specifications), version = version + 1, updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		images, err := json.Marshal(nonNil(p.Images))
		if err != nil {
			return fmt.Errorf("encode images: %w", err)
		}
		specs, err := json.Marshal(nonNil(p.Specifications))
		if err != nil {
			return fmt.Errorf("encode specifications: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			p.ID, p.Name, p.Description, p.Tag, p.Collection, p.Position, p.Image, string(images),
			p.Price.Amount, p.Price.Currency, string(specs),
		)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

const productColumns = `id, name, description, tag, collection, position, image, images, price, currency, specifications`

func (m *MySQLAdapter) ListProducts(ctx context.Context, collection domain.Collection) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if collection != "" {
		query += ` WHERE collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY collection, position`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, port.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (m *MySQLAdapter) CreateAppointment(ctx context.Context, appt domain.Appointment) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO appointments (id, service, appt_date, time_slot, first_name, last_name, email,
			phone, clock_type, issue, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.ID, appt.Service, appt.Date, appt.Time, appt.FirstName, appt.LastName, appt.Email,
		appt.Phone, appt.ClockType, appt.Issue, appt.Notes, appt.Status, appt.CreatedAt,
	)

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return port.ErrDuplicateSlot
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) AppendCartEvent(ctx context.Context, event domain.CartEvent) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_events (id, session_id, kind, product_id, quantity, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.SessionID, event.Kind, event.ProductID, event.Quantity, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert cart event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p             domain.Product
		images, specs []byte
		collection    string
		currency      string
	)

	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Tag, &collection, &p.Position, &p.Image,
		&images, &p.Price.Amount, &currency, &specs)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, err
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}

	p.Collection = domain.Collection(collection)
	p.Price.Currency = currency
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return domain.Product{}, fmt.Errorf("decode images of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(specs, &p.Specifications); err != nil {
		return domain.Product{}, fmt.Errorf("decode specifications of %s: %w", p.ID, err)
	}
	return p, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
