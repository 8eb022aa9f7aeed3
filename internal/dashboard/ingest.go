package dashboard

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/common/mq"
	"restaurant-dashboard/internal/domain"
	"restaurant-dashboard/internal/monitoring"
)

// ApplyOrderNew merges a pushed new order: prepend to the store and raise the
// unseen badges for the order and its group.
func (d *Dashboard) ApplyOrderNew(o domain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prependLocked(o)
	d.unseenOrders[o.ID] = struct{}{}
	if key, ok := o.GroupKey(); ok {
		d.unseenGroups[key] = struct{}{}
	}
}

// ApplyOrderStatus merges a pushed status change. Patching an absent id is a
// safe no-op: a status event can outrun the first sighting of its order when
// the dashboard connected mid-flight. The open detail dialog is refreshed so
// it tracks the server-confirmed state.
func (d *Dashboard) ApplyOrderStatus(o domain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patchLocked(o)
	if d.openDetail != nil && d.openDetail.ID == o.ID {
		cp := o
		d.openDetail = &cp
	}
}

// Ingestor bridges the broker's order feed into the dashboard. One consumer
// per running instance; the exclusive queue disappears with the connection.
type Ingestor struct {
	mq       *mq.Client
	dash     *Dashboard
	log      *logger.Logger
	prefetch int
}

func NewIngestor(client *mq.Client, dash *Dashboard, log *logger.Logger) *Ingestor {
	return &Ingestor{mq: client, dash: dash, log: log, prefetch: 1}
}

// Run declares the feed and consumes it until ctx is cancelled. Events of one
// type are applied in delivery order; no ordering is assumed across types.
func (i *Ingestor) Run(ctx context.Context) error {
	queue, err := i.mq.DeclareOrderFeed()
	if err != nil {
		return err
	}
	msgs, err := i.mq.Consume(queue, "dashboard", i.prefetch)
	if err != nil {
		return err
	}
	i.log.Info("order_feed_subscribed", map[string]any{"queue": queue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("order feed channel closed")
			}
			i.handle(msg)
		}
	}
}

func (i *Ingestor) handle(msg amqp.Delivery) {
	var p domain.OrderPayload
	if err := json.Unmarshal(msg.Body, &p); err != nil {
		i.log.Error("event_decode_failed", err, map[string]any{"routing_key": msg.RoutingKey})
		_ = msg.Nack(false, false)
		return
	}
	o := p.ToOrder()

	switch msg.RoutingKey {
	case mq.RouteOrderNew:
		i.dash.ApplyOrderNew(o)
		monitoring.RecordOrderEvent("new")
		i.log.Debug("order_new_applied", map[string]any{"order_id": o.ID})
	case mq.RouteOrderStatus:
		i.dash.ApplyOrderStatus(o)
		monitoring.RecordOrderEvent("status")
		i.log.Debug("order_status_applied", map[string]any{"order_id": o.ID, "status": string(o.Status)})
	default:
		i.log.Debug("event_ignored", map[string]any{"routing_key": msg.RoutingKey})
	}
	_ = msg.Ack(false)
}
