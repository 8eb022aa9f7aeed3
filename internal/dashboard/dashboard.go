package dashboard

import (
	"context"
	"sync"

	"restaurant-dashboard/internal/backend"
	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/domain"
)

const defaultPageSize = 20

// Backend is the slice of the platform API the dashboard consumes.
type Backend interface {
	ListOrders(ctx context.Context, status domain.OrderStatus, page, pageSize int) (backend.OrdersPage, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
	SetTableSession(ctx context.Context, id int64, open bool) (domain.Table, error)
}

// Dashboard is the reconciled view behind the staff Orders page: the current
// page of orders, the table list, the unseen markers and the open detail
// dialog. REST loads, push events and HTTP commands all mutate it through the
// same mutex, so every mutation is effectively atomic.
type Dashboard struct {
	mu  sync.Mutex
	api Backend
	log *logger.Logger

	orders       []domain.Order
	totalPages   int
	page         int
	statusFilter domain.OrderStatus
	pageSize     int
	loading      bool
	loadErr      *LoadError
	loadSeq      uint64

	tables []domain.Table

	unseenOrders map[int64]struct{}
	unseenGroups map[string]struct{}

	openDetail *domain.Order
}

// LoadError is the classified outcome of a failed page load. Permission
// failures get the upgrade call-to-action instead of the generic banner.
type LoadError struct {
	Permission bool
	Message    string
}

func New(api Backend, log *logger.Logger) *Dashboard {
	return &Dashboard{
		api:          api,
		log:          log,
		page:         1,
		pageSize:     defaultPageSize,
		unseenOrders: make(map[int64]struct{}),
		unseenGroups: make(map[string]struct{}),
	}
}

// LoadTables refreshes the table list. Failures leave the current list in
// place and are log-only: tables decorate the page, they do not gate it.
func (d *Dashboard) LoadTables(ctx context.Context) {
	tables, err := d.api.ListTables(ctx)
	if err != nil {
		d.log.Error("tables_load_failed", err, nil)
		return
	}
	d.mu.Lock()
	d.tables = tables
	d.mu.Unlock()
}

func (d *Dashboard) Tables() []domain.Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Table, len(d.tables))
	copy(out, d.tables)
	return out
}

// OpenOrderDetail opens the detail dialog for an order and marks it seen.
func (d *Dashboard) OpenOrderDetail(id int64) (domain.Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.orders {
		if d.orders[i].ID == id {
			cp := d.orders[i]
			d.openDetail = &cp
			delete(d.unseenOrders, id)
			return cp, true
		}
	}
	return domain.Order{}, false
}

func (d *Dashboard) CloseOrderDetail() {
	d.mu.Lock()
	d.openDetail = nil
	d.mu.Unlock()
}

// OpenDetail returns the order currently shown in the detail dialog, if any.
func (d *Dashboard) OpenDetail() (domain.Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openDetail == nil {
		return domain.Order{}, false
	}
	return *d.openDetail, true
}

// OrderEntry pairs an order with its unseen badge for rendering.
type OrderEntry struct {
	Order  domain.Order
	Unseen bool
}

// Snapshot is a consistent copy of the order-list state.
type Snapshot struct {
	Orders       []OrderEntry
	Page         int
	TotalPages   int
	StatusFilter domain.OrderStatus
	Loading      bool
	Err          *LoadError
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Snapshot{
		Orders:       make([]OrderEntry, 0, len(d.orders)),
		Page:         d.page,
		TotalPages:   d.totalPages,
		StatusFilter: d.statusFilter,
		Loading:      d.loading,
	}
	if d.loadErr != nil {
		cp := *d.loadErr
		s.Err = &cp
	}
	for _, o := range d.orders {
		_, unseen := d.unseenOrders[o.ID]
		s.Orders = append(s.Orders, OrderEntry{Order: o, Unseen: unseen})
	}
	return s
}
