package dashboard

import (
	"context"

	"restaurant-dashboard/internal/backend"
	"restaurant-dashboard/internal/domain"
)

// Load replaces the store's contents with the requested page. The fetch runs
// outside the lock; a monotonic sequence ticket makes sure a response that
// was superseded by a newer Load is discarded instead of clobbering fresher
// state.
func (d *Dashboard) Load(ctx context.Context, status domain.OrderStatus, page int) error {
	d.mu.Lock()
	d.loadSeq++
	seq := d.loadSeq
	d.loading = true
	d.loadErr = nil
	d.statusFilter = status
	d.page = page
	pageSize := d.pageSize
	d.mu.Unlock()

	res, err := d.api.ListOrders(ctx, status, page, pageSize)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.loadSeq {
		// a newer load is in flight or already landed
		return nil
	}
	d.loading = false
	if err != nil {
		d.loadErr = &LoadError{
			Permission: backend.IsPlanPermission(err),
			Message:    backend.Message(err, "failed to load orders"),
		}
		return err
	}
	d.orders = res.Orders
	d.totalPages = res.TotalPages
	d.pruneUnseenLocked()
	return nil
}

// prependLocked inserts a new order at the head of the list. A redelivered
// event for an id already present degrades to an in-place update.
func (d *Dashboard) prependLocked(o domain.Order) {
	for i := range d.orders {
		if d.orders[i].ID == o.ID {
			d.orders[i] = o
			return
		}
	}
	d.orders = append([]domain.Order{o}, d.orders...)
}

// patchLocked replaces the matching order in place. An absent id is a no-op:
// the order may belong to another filter or page.
func (d *Dashboard) patchLocked(o domain.Order) bool {
	for i := range d.orders {
		if d.orders[i].ID == o.ID {
			d.orders[i] = o
			return true
		}
	}
	return false
}
