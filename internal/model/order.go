package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusPaid       OrderStatus = "Paid"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// validNext is the forward adjacency of the lifecycle. Cancelled is handled
// separately: it is reachable from any non-terminal state.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:    {StatusPaid: true, StatusProcessing: true},
	StatusPaid:       {StatusProcessing: true},
	StatusProcessing: {StatusShipped: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a permitted lifecycle move.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValid reports whether s is a known lifecycle value.
func (s OrderStatus) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

// Payment method labels. eSewa and Khalti require an external confirmation
// step before fulfilment proceeds; everything else is treated as
// cash-equivalent and confirmed at placement time.
const (
	PaymentCash   = "Cash"
	PaymentEsewa  = "eSewa"
	PaymentKhalti = "Khalti"
)

// IsDigitalPayment reports whether the method needs a separate
// payment-confirmation step.
func IsDigitalPayment(method string) bool {
	return method == PaymentEsewa || method == PaymentKhalti
}

// Order is the order aggregate root. Orders are never deleted; terminal
// orders are retained for audit.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	LocationID       uuid.UUID       `json:"locationId" db:"location_id"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	LastStatusChange time.Time       `json:"lastStatusChange" db:"last_status_change"`
	TotalAmount      decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status           OrderStatus     `json:"status" db:"status"`
	PaymentMethod    string          `json:"paymentMethod" db:"payment_method"`
	IsDirectOrder    bool            `json:"isDirectOrder" db:"is_direct_order"`
	Items            []OrderItem     `json:"items"`
	Payment          *Payment        `json:"payment,omitempty"`
}

// OrderItem is one line of an order with its price snapshots. Immutable once
// the order is placed; cancellation restores exactly Quantity per line.
type OrderItem struct {
	ID         uuid.UUID       `json:"-" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	ProductID  uuid.UUID       `json:"productId" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
	FinalPrice decimal.Decimal `json:"finalPrice" db:"final_price"`
}

// Payment is the 1:1 payment record of an order.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderID       uuid.UUID       `json:"-" db:"order_id"`
	Provider      string          `json:"provider" db:"provider"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaidAt        time.Time       `json:"paidAt" db:"paid_at"`
}

// CartItem is one requested line in a checkout cart.
type CartItem struct {
	ProductID  uuid.UUID       `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
}

// Cart is an explicit value object passed into placement by the caller.
// The core assumes no ambient session store.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Subtotal is the item total before the location fee.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.FinalPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// PlaceOrderRequest is the request payload for placing an order.
type PlaceOrderRequest struct {
	Cart          Cart      `json:"cart"`
	PaymentMethod string    `json:"paymentMethod"`
	LocationID    uuid.UUID `json:"locationId"`
	UserID        uuid.UUID `json:"userId"`
	IsDirectOrder bool      `json:"isDirectOrder"`
}

// UpdateStatusRequest is the request payload for a manual status override.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// ConfirmPaymentRequest is the request payload for a digital payment
// confirmation.
type ConfirmPaymentRequest struct {
	Provider string `json:"provider"`
}

// StatusUpdateResult reports the outcome of a manual status override.
// Changed is false when the requested status already matched; that is a
// no-op, not an error.
type StatusUpdateResult struct {
	OrderID  uuid.UUID   `json:"orderId"`
	Previous OrderStatus `json:"previous"`
	Current  OrderStatus `json:"current"`
	Changed  bool        `json:"changed"`
}
