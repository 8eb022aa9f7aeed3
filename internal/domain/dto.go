package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire payloads for the platform API and the order event feed. Depending on
// the path that created the order, the table association arrives as a flat
// tableId, a flat tableNumber, an embedded table object, or any mix of them.
// ToOrder folds all of that into one TableRef so the rest of the code never
// has to guess.

type TableStubPayload struct {
	ID     int64 `json:"id"`
	Number int   `json:"number"`
}

type ItemExtraPayload struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type OrderItemPayload struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Quantity    int                `json:"quantity"`
	Price       decimal.Decimal    `json:"price"`
	TotalPrice  decimal.Decimal    `json:"totalPrice"`
	Image       *string            `json:"image,omitempty"`
	Section     *string            `json:"section,omitempty"`
	Extras      []ItemExtraPayload `json:"extras,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

type OrderPayload struct {
	ID          int64              `json:"id"`
	Status      string             `json:"status"`
	OrderType   string             `json:"orderType"`
	TableID     *int64             `json:"tableId,omitempty"`
	TableNumber *int               `json:"tableNumber,omitempty"`
	Table       *TableStubPayload  `json:"table,omitempty"`
	TotalPrice  decimal.Decimal    `json:"totalPrice"`
	Items       []OrderItemPayload `json:"items"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func (p OrderPayload) ToOrder() Order {
	o := Order{
		ID:         p.ID,
		Status:     OrderStatus(p.Status),
		Type:       OrderType(p.OrderType),
		TotalPrice: p.TotalPrice,
		CreatedAt:  p.CreatedAt,
		Items:      make([]OrderItem, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		o.Items = append(o.Items, it.toItem())
	}

	var ref TableRef
	switch {
	case p.TableID != nil:
		ref.ID = *p.TableID
	case p.Table != nil:
		ref.ID = p.Table.ID
	}
	switch {
	case p.TableNumber != nil:
		ref.Number = *p.TableNumber
	case p.Table != nil:
		ref.Number = p.Table.Number
	}
	if ref.ID > 0 || ref.Number > 0 {
		o.Table = &ref
	}
	return o
}

func (p OrderItemPayload) toItem() OrderItem {
	it := OrderItem{
		Title:       p.Title,
		Description: p.Description,
		Quantity:    p.Quantity,
		UnitPrice:   p.Price,
		LineTotal:   p.TotalPrice,
	}
	if p.Image != nil {
		it.ImageURL = *p.Image
	}
	if p.Section != nil {
		it.Section = *p.Section
	}
	if p.Notes != nil {
		it.Notes = *p.Notes
	}
	for _, e := range p.Extras {
		it.Extras = append(it.Extras, ItemExtra{Name: e.Name, Price: e.Price})
	}
	return it
}

type TablePayload struct {
	ID            int64   `json:"id"`
	Number        int     `json:"number"`
	Name          *string `json:"name,omitempty"`
	IsSessionOpen bool    `json:"isSessionOpen"`
	IsActive      bool    `json:"isActive"`
}

func (p TablePayload) ToTable() Table {
	t := Table{
		ID:            p.ID,
		Number:        p.Number,
		IsSessionOpen: p.IsSessionOpen,
		IsActive:      p.IsActive,
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	return t
}
