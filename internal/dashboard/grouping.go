package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"restaurant-dashboard/internal/domain"
)

// detailDepth caps how many orders the group detail dialog shows. The dialog
// is a quick-glance affordance; the true total is still reported.
const detailDepth = 3

// GroupSummary is one card of the table/takeaway grouping view.
type GroupSummary struct {
	Key        string
	Table      *domain.Table
	OrderCount int
	HasUnseen  bool
}

// GroupDetail backs the card's click-through dialog: the most recent orders
// (newest first, capped) plus the true count.
type GroupDetail struct {
	Key        string
	Table      *domain.Table
	LastOrders []domain.Order
	TotalCount int
}

// Groups derives one card per table plus the takeaway bucket from the current
// store contents. Pure derivation, no state of its own.
func (d *Dashboard) Groups() []GroupSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]GroupSummary, 0, len(d.tables)+1)
	for i := range d.tables {
		t := d.tables[i]
		out = append(out, GroupSummary{
			Key:        domain.TableIDKey(t.ID),
			Table:      &t,
			OrderCount: len(ordersForTable(d.orders, t)),
			HasUnseen:  d.tableHasUnseenLocked(t),
		})
	}
	_, takeawayUnseen := d.unseenGroups[domain.GroupKeyTakeaway]
	out = append(out, GroupSummary{
		Key:        domain.GroupKeyTakeaway,
		OrderCount: len(ordersForTakeaway(d.orders)),
		HasUnseen:  takeawayUnseen,
	})
	return out
}

// OpenGroup resolves a card click: computes the detail projection and clears
// the group's unseen badge (both table keys for a table target).
func (d *Dashboard) OpenGroup(key string) (GroupDetail, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if key == domain.GroupKeyTakeaway {
		delete(d.unseenGroups, key)
		return makeDetail(key, nil, ordersForTakeaway(d.orders)), true
	}

	t, ok := d.lookupTableLocked(key)
	if !ok {
		return GroupDetail{}, false
	}
	d.clearTableUnseenLocked(t)
	cp := t
	return makeDetail(key, &cp, ordersForTable(d.orders, t)), true
}

func (d *Dashboard) lookupTableLocked(key string) (domain.Table, bool) {
	if raw, ok := strings.CutPrefix(key, "tableId-"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Table{}, false
		}
		for _, t := range d.tables {
			if t.ID == id {
				return t, true
			}
		}
		return domain.Table{}, false
	}
	if raw, ok := strings.CutPrefix(key, "tableNum-"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Table{}, false
		}
		for _, t := range d.tables {
			if t.Number == n {
				return t, true
			}
		}
	}
	return domain.Table{}, false
}

func ordersForTable(orders []domain.Order, t domain.Table) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if o.BelongsTo(t) {
			out = append(out, o)
		}
	}
	return out
}

func ordersForTakeaway(orders []domain.Order) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if o.Type == domain.TypeTakeAway {
			out = append(out, o)
		}
	}
	return out
}

func makeDetail(key string, t *domain.Table, matched []domain.Order) GroupDetail {
	sorted := make([]domain.Order, len(matched))
	copy(sorted, matched)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	last := sorted
	if len(last) > detailDepth {
		last = last[:detailDepth]
	}
	return GroupDetail{Key: key, Table: t, LastOrders: last, TotalCount: len(matched)}
}
