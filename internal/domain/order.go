package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Next returns the forward-adjacent status in the kitchen flow.
// Terminal statuses have no successor.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case StatusPending:
		return StatusConfirmed, true
	case StatusConfirmed:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	case StatusReady:
		return StatusCompleted, true
	}
	return "", false
}

// CanTransitionTo allows only the forward-adjacent step, plus cancellation
// while the order is still pending. The server stays authoritative; this is
// the same gate the dashboard buttons expose.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if n, ok := s.Next(); ok && n == next {
		return true
	}
	return s == StatusPending && next == StatusCancelled
}

func ParseStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

type OrderType string

const (
	TypeOnTable  OrderType = "ON_TABLE"
	TypeTakeAway OrderType = "TAKE_AWAY"
)

// TableRef is the canonical table association of an order. Upstream payloads
// carry the association in several shapes; they are folded into this one at
// the decode boundary, never downstream.
type TableRef struct {
	ID     int64
	Number int
}

type ItemExtra struct {
	Name  string
	Price decimal.Decimal
}

type OrderItem struct {
	Title       string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	ImageURL    string
	Section     string
	Extras      []ItemExtra
	Notes       string
}

type Order struct {
	ID         int64
	Status     OrderStatus
	Type       OrderType
	Table      *TableRef
	TotalPrice decimal.Decimal
	Items      []OrderItem
	CreatedAt  time.Time
}

// Group keys identify the table (or the takeaway bucket) an order belongs to
// for the "has unseen order" badges. A table may be keyed by id or by display
// number, depending on which field the order carried.
const GroupKeyTakeaway = "takeaway"

func TableIDKey(id int64) string { return fmt.Sprintf("tableId-%d", id) }

func TableNumKey(n int) string { return fmt.Sprintf("tableNum-%d", n) }

// GroupKey attributes the order to a badge group. Takeaway wins over any
// table association; an order with neither cannot be attributed.
func (o Order) GroupKey() (string, bool) {
	if o.Type == TypeTakeAway {
		return GroupKeyTakeaway, true
	}
	if o.Table == nil {
		return "", false
	}
	if o.Table.ID > 0 {
		return TableIDKey(o.Table.ID), true
	}
	if o.Table.Number > 0 {
		return TableNumKey(o.Table.Number), true
	}
	return "", false
}

// BelongsTo reports whether the order is attributed to the given table.
// The id match is canonical; the number match covers payloads that only
// carried a display number.
func (o Order) BelongsTo(t Table) bool {
	if o.Table == nil {
		return false
	}
	if o.Table.ID > 0 {
		return o.Table.ID == t.ID
	}
	return o.Table.Number > 0 && o.Table.Number == t.Number
}
