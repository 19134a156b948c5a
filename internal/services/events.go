package services

import (
	"encoding/json"
	"time"

	"orderapi/internal/models"

	"github.com/rs/zerolog/log"
)

// Routing keys of the order events.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// EventPublisher delivers an encoded event under a routing key.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEventItem is one line of an order event.
type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderEvent is the message body published for order lifecycle changes.
type OrderEvent struct {
	Event       string           `json:"event"`
	OrderID     string           `json:"order_id"`
	UserID      string           `json:"user_id"`
	Status      string           `json:"status"`
	TotalAmount float64          `json:"total_amount"`
	Items       []OrderEventItem `json:"items"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

func newOrderEvent(event string, order *models.Order) OrderEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return OrderEvent{
		Event:       event,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       items,
		OccurredAt:  time.Now().UTC(),
	}
}

// publishOrderEvent is best effort: the order change is already committed,
// so a broker failure is only logged.
func publishOrderEvent(pub EventPublisher, event string, order *models.Order) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(newOrderEvent(event, order))
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("Failed to marshal order event")
		return
	}
	if err := pub.Publish(event, body); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Str("event", event).Msg("Failed to publish order event")
		return
	}
	log.Debug().Str("order_id", order.ID).Str("event", event).Msg("Published order event")
}
