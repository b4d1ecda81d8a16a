package ordering

import (
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type OrderPlaced struct {
	shared.EventMeta
	Number     OrderNumber         `json:"number"`
	CustomerID customer.CustomerID `json:"customer_id"`
	Total      shared.Money        `json:"total"`
}

func (OrderPlaced) EventName() string { return "ordering.order_placed" }

type OrderPaid struct {
	shared.EventMeta
	PaymentMethod string       `json:"payment_method"`
	TransactionID string       `json:"transaction_id"`
	Amount        shared.Money `json:"amount"`
}

func (OrderPaid) EventName() string { return "ordering.order_paid" }

type OrderProcessing struct {
	shared.EventMeta
}

func (OrderProcessing) EventName() string { return "ordering.order_processing" }

type OrderShipped struct {
	shared.EventMeta
	TrackingNumber TrackingNumber `json:"tracking_number,omitempty"`
}

func (OrderShipped) EventName() string { return "ordering.order_shipped" }

type OrderDelivered struct {
	shared.EventMeta
}

func (OrderDelivered) EventName() string { return "ordering.order_delivered" }

type OrderCancelled struct {
	shared.EventMeta
	Reason string `json:"reason"`
}

func (OrderCancelled) EventName() string { return "ordering.order_cancelled" }

type OrderRefunded struct {
	shared.EventMeta
	Reason string       `json:"reason"`
	Amount shared.Money `json:"amount"`
}

func (OrderRefunded) EventName() string { return "ordering.order_refunded" }
