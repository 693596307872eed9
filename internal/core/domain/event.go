package domain

import "time"

// CartEvent is the journal record of one cart change in a session.
type CartEvent struct {
	ID         string
	SessionID  string
	Kind       ChangeKind
	ProductID  ProductID
	Quantity   int
	OccurredAt time.Time
}
