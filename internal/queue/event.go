// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// OrderCreatedEvent is published when an order is successfully placed. It
// carries enough information for downstream consumers (fulfillment log,
// notifications, analytics) without querying the primary database. The code
// itself is deliberately absent; delivery of the purchased pin happens over
// the authenticated API, not the broker.
type OrderCreatedEvent struct {
	OrderID    uint64  `json:"order_id"`
	UserID     uint64  `json:"user_id"`
	UserEmail  string  `json:"user_email"`
	EpinID     uint64  `json:"epin_id"`
	EpinName   string  `json:"epin_name"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	OrderedAt  string  `json:"ordered_at"`
}
