package api

import (
	"time"

	"restaurant-dashboard/internal/dashboard"
	"restaurant-dashboard/internal/domain"
)

// Response shapes for the dashboard UI. Money is rendered with exactly two
// decimal places; timestamps as RFC 3339 for the client to localize.

type itemExtraView struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type orderItemView struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   string          `json:"unitPrice"`
	LineTotal   string          `json:"lineTotal"`
	Image       string          `json:"image,omitempty"`
	Section     string          `json:"section,omitempty"`
	Extras      []itemExtraView `json:"extras,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

type tableRefView struct {
	ID     int64 `json:"id,omitempty"`
	Number int   `json:"number,omitempty"`
}

type orderView struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	OrderType  string          `json:"orderType"`
	Table      *tableRefView   `json:"table,omitempty"`
	TotalPrice string          `json:"totalPrice"`
	Items      []orderItemView `json:"items"`
	CreatedAt  string          `json:"createdAt"`
	Unseen     bool            `json:"unseen"`
}

type snapshotView struct {
	Orders     []orderView `json:"orders"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Status     string      `json:"status,omitempty"`
	Loading    bool        `json:"loading"`
}

type tableView struct {
	ID            int64  `json:"id"`
	Number        int    `json:"number"`
	Name          string `json:"name,omitempty"`
	IsSessionOpen bool   `json:"isSessionOpen"`
	IsActive      bool   `json:"isActive"`
}

type groupView struct {
	Key        string     `json:"key"`
	Table      *tableView `json:"table,omitempty"`
	OrderCount int        `json:"orderCount"`
	HasUnseen  bool       `json:"hasUnseen"`
}

type groupDetailView struct {
	Key        string      `json:"key"`
	Table      *tableView  `json:"table,omitempty"`
	LastOrders []orderView `json:"lastOrders"`
	TotalCount int         `json:"totalCount"`
}

func toOrderView(o domain.Order, unseen bool) orderView {
	v := orderView{
		ID:         o.ID,
		Status:     string(o.Status),
		OrderType:  string(o.Type),
		TotalPrice: o.TotalPrice.StringFixed(2),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		Items:      make([]orderItemView, 0, len(o.Items)),
		Unseen:     unseen,
	}
	if o.Table != nil {
		v.Table = &tableRefView{ID: o.Table.ID, Number: o.Table.Number}
	}
	for _, it := range o.Items {
		iv := orderItemView{
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			LineTotal:   it.LineTotal.StringFixed(2),
			Image:       it.ImageURL,
			Section:     it.Section,
			Notes:       it.Notes,
		}
		for _, e := range it.Extras {
			iv.Extras = append(iv.Extras, itemExtraView{Name: e.Name, Price: e.Price.StringFixed(2)})
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

func toSnapshotView(s dashboard.Snapshot) snapshotView {
	v := snapshotView{
		Orders:     make([]orderView, 0, len(s.Orders)),
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Status:     string(s.StatusFilter),
		Loading:    s.Loading,
	}
	for _, e := range s.Orders {
		v.Orders = append(v.Orders, toOrderView(e.Order, e.Unseen))
	}
	return v
}

func toTableView(t domain.Table) tableView {
	return tableView{
		ID:            t.ID,
		Number:        t.Number,
		Name:          t.Name,
		IsSessionOpen: t.IsSessionOpen,
		IsActive:      t.IsActive,
	}
}

func toGroupView(g dashboard.GroupSummary) groupView {
	v := groupView{Key: g.Key, OrderCount: g.OrderCount, HasUnseen: g.HasUnseen}
	if g.Table != nil {
		tv := toTableView(*g.Table)
		v.Table = &tv
	}
	return v
}

func toGroupDetailView(g dashboard.GroupDetail) groupDetailView {
	v := groupDetailView{
		Key:        g.Key,
		LastOrders: make([]orderView, 0, len(g.LastOrders)),
		TotalCount: g.TotalCount,
	}
	if g.Table != nil {
		tv := toTableView(*g.Table)
		v.Table = &tv
	}
	for _, o := range g.LastOrders {
		v.LastOrders = append(v.LastOrders, toOrderView(o, false))
	}
	return v
}
