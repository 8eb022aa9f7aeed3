package dashboard

import "restaurant-dashboard/internal/domain"

// Unseen markers. An order is "unseen" until staff interacts with it; a group
// key marks a table card (or the takeaway card) as holding an unseen order.
// A table is tracked under both its id key and its number key because orders
// may report the association through either field; clearing always removes
// both.

// MarkOrderSeen drops the unseen badge for one order. Idempotent.
func (d *Dashboard) MarkOrderSeen(id int64) {
	d.mu.Lock()
	delete(d.unseenOrders, id)
	d.mu.Unlock()
}

// ClearTableUnseen drops both badge keys of a table.
func (d *Dashboard) ClearTableUnseen(t domain.Table) {
	d.mu.Lock()
	d.clearTableUnseenLocked(t)
	d.mu.Unlock()
}

func (d *Dashboard) clearTableUnseenLocked(t domain.Table) {
	delete(d.unseenGroups, domain.TableIDKey(t.ID))
	delete(d.unseenGroups, domain.TableNumKey(t.Number))
}

// ClearTakeawayUnseen drops the takeaway bucket's badge.
func (d *Dashboard) ClearTakeawayUnseen() {
	d.mu.Lock()
	delete(d.unseenGroups, domain.GroupKeyTakeaway)
	d.mu.Unlock()
}

// ResetUnseen clears every per-order badge. Called when the dashboard view
// is (re)entered: the badge means "new since last visit", not
// "unacknowledged".
func (d *Dashboard) ResetUnseen() {
	d.mu.Lock()
	d.unseenOrders = make(map[int64]struct{})
	d.mu.Unlock()
}

// IsOrderUnseen reports whether the order still carries its badge.
func (d *Dashboard) IsOrderUnseen(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.unseenOrders[id]
	return ok
}

// TableHasUnseen matches either of the table's two badge keys.
func (d *Dashboard) TableHasUnseen(t domain.Table) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tableHasUnseenLocked(t)
}

func (d *Dashboard) tableHasUnseenLocked(t domain.Table) bool {
	if _, ok := d.unseenGroups[domain.TableIDKey(t.ID)]; ok {
		return true
	}
	_, ok := d.unseenGroups[domain.TableNumKey(t.Number)]
	return ok
}

func (d *Dashboard) TakeawayHasUnseen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.unseenGroups[domain.GroupKeyTakeaway]
	return ok
}

// pruneUnseenLocked keeps the unseen-order set a subset of the store after a
// wholesale page replacement.
func (d *Dashboard) pruneUnseenLocked() {
	present := make(map[int64]struct{}, len(d.orders))
	for _, o := range d.orders {
		present[o.ID] = struct{}{}
	}
	for id := range d.unseenOrders {
		if _, ok := present[id]; !ok {
			delete(d.unseenOrders, id)
		}
	}
}
