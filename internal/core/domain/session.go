package domain

import "time"

// CartSnapshot is the persisted form of a session cart.
type CartSnapshot struct {
	SessionID string    `json:"session_id"`
	Currency  string    `json:"currency"`
	State     CartState `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}
