package model

import "time"

// OrderStatus is the closed set of states an order can be in. Status
// transitions are driven by admins; new orders always start as Pending.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus maps a raw request value onto a known OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending:
		return OrderPending, true
	case OrderCompleted:
		return OrderCompleted, true
	case OrderCancelled:
		return OrderCancelled, true
	}
	return "", false
}

// String returns the stored representation of the status.
func (s OrderStatus) String() string { return string(s) }

// Order represents a row in the `orders` table. An order binds a user to
// exactly one e-pin; TotalPrice is the pin's price at purchase time so later
// price edits do not rewrite history.
type Order struct {
	ID         uint64      // orders.id
	UserID     uint64      // orders.user_id
	EpinID     uint64      // orders.epin_id
	Status     OrderStatus // orders.status
	TotalPrice float64     // orders.total_price
	OrderDate  time.Time   // orders.order_date
}
