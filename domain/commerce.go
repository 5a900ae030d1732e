package domain

import "time"

// OrderStatus is the lifecycle state of an order as reported by the server.
// The client never invents transitions; it mirrors what the API returns.
type OrderStatus string

const (
	OrderProcessing     OrderStatus = "processing"
	OrderShipped        OrderStatus = "shipped"
	OrderDelivered      OrderStatus = "delivered"
	OrderRefundRequest  OrderStatus = "processing_refund"
	OrderRefundComplete OrderStatus = "refund_success"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order mirrors a purchase held by the remote API.
type Order struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	ShopID       string      `json:"shop_id"`
	Items        []OrderItem `json:"items"`
	TotalPrice   float64     `json:"total_price"`
	Status       OrderStatus `json:"status"`
	RefundReason string      `json:"refund_reason,omitempty"`
	PaidAt       time.Time   `json:"paid_at,omitempty"`
	DeliveredAt  time.Time   `json:"delivered_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (o Order) EntityID() string { return o.ID }
