package dashboard

import (
	"context"
	"errors"

	"restaurant-dashboard/internal/domain"
	"restaurant-dashboard/internal/monitoring"
)

var (
	ErrUnknownOrder      = errors.New("order not in current view")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// UpdateStatus moves an order forward (or cancels a pending one) through the
// backend, then reconciles: the open detail dialog is patched right away so
// it never shows stale data while the full reload is in flight, the order's
// unseen badge is dropped, and the store is reloaded wholesale.
func (d *Dashboard) UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) error {
	d.mu.Lock()
	var cur *domain.Order
	for i := range d.orders {
		if d.orders[i].ID == id {
			cur = &d.orders[i]
			break
		}
	}
	if cur == nil {
		d.mu.Unlock()
		return ErrUnknownOrder
	}
	if !cur.Status.CanTransitionTo(next) {
		d.mu.Unlock()
		return ErrInvalidTransition
	}
	status, page := d.statusFilter, d.page
	d.mu.Unlock()

	if _, err := d.api.UpdateOrderStatus(ctx, id, next); err != nil {
		monitoring.RecordOrderOperation("update_status", false)
		return err
	}
	monitoring.RecordOrderOperation("update_status", true)

	d.mu.Lock()
	if d.openDetail != nil && d.openDetail.ID == id {
		d.openDetail.Status = next
	}
	delete(d.unseenOrders, id)
	d.mu.Unlock()

	return d.Load(ctx, status, page)
}

// ToggleTableSession flips a table's session gate through the backend and
// patches the local table list with the confirmed state.
func (d *Dashboard) ToggleTableSession(ctx context.Context, id int64, open bool) (domain.Table, error) {
	t, err := d.api.SetTableSession(ctx, id, open)
	if err != nil {
		monitoring.RecordOrderOperation("toggle_session", false)
		return domain.Table{}, err
	}
	monitoring.RecordOrderOperation("toggle_session", true)

	d.mu.Lock()
	for i := range d.tables {
		if d.tables[i].ID == t.ID {
			d.tables[i] = t
			break
		}
	}
	d.mu.Unlock()
	return t, nil
}
