// model/order.go
package model

import "time"

type OrderStatus string

const (
	OrderBorrowed        OrderStatus = "borrowed"
	OrderReturned        OrderStatus = "returned"
	OrderLost            OrderStatus = "lost"
	OrderLostAndReturned OrderStatus = "lost_and_returned"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderBorrowed, OrderReturned, OrderLost, OrderLostAndReturned:
		return true
	}
	return false
}

// Terminal statuses accept no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderReturned || s == OrderLostAndReturned
}

// CanTransition encodes the order state machine:
// borrowed -> returned | lost, lost -> lost_and_returned.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderBorrowed:
		return to == OrderReturned || to == OrderLost
	case OrderLost:
		return to == OrderLostAndReturned
	}
	return false
}

// RestocksOnEntry reports whether entering this status credits the borrowed
// copy back to inventory. A plain "lost" does not: the copy is presumed gone
// until it physically resurfaces as lost_and_returned.
func (s OrderStatus) RestocksOnEntry() bool {
	return s == OrderReturned || s == OrderLostAndReturned
}

type Order struct {
	OrderID       int64       `json:"order_id"`
	UserID        int64       `json:"user_id"`
	BookID        int64       `json:"book_id"`
	WarehouseName string      `json:"warehouse_name"`
	Status        OrderStatus `json:"status"`
	BorrowTime    time.Time   `json:"borrow_time"`
	ReturnTime    *time.Time  `json:"return_time,omitempty"`
}
