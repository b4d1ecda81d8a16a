package ordering

import (
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type (
	OrderID     = shared.ID[Order]
	OrderItemID = shared.ID[OrderItem]
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Event triggers an order status change.
type Event string

const (
	EventConfirm Event = "confirm"
	EventProcess Event = "process"
	EventShip    Event = "ship"
	EventDeliver Event = "deliver"
	EventCancel  Event = "cancel"
	EventRefund  Event = "refund"
)

// OrderTransitions is the order lifecycle. Cancelled and Refunded are
// terminal, and Delivered only moves on to Refunded.
var OrderTransitions = []shared.Transition[Status, Event]{
	{Event: EventConfirm, Src: StatusPending, Dst: StatusConfirmed},
	{Event: EventProcess, Src: StatusConfirmed, Dst: StatusProcessing},
	{Event: EventShip, Src: StatusConfirmed, Dst: StatusShipped},
	{Event: EventShip, Src: StatusProcessing, Dst: StatusShipped},
	{Event: EventDeliver, Src: StatusShipped, Dst: StatusDelivered},
	{Event: EventCancel, Src: StatusPending, Dst: StatusCancelled},
	{Event: EventCancel, Src: StatusConfirmed, Dst: StatusCancelled},
	{Event: EventCancel, Src: StatusProcessing, Dst: StatusCancelled},
	{Event: EventCancel, Src: StatusShipped, Dst: StatusCancelled},
	{Event: EventRefund, Src: StatusDelivered, Dst: StatusRefunded},
}

var orderLifecycle = shared.NewLifecycle(OrderTransitions)

// PlaceOrderParams are the inputs of PlaceOrder.
type PlaceOrderParams struct {
	TenantID      shared.TenantID
	CustomerID    customer.CustomerID
	CustomerEmail string
	Fulfillment   FulfillmentType
	Shipping      *ShippingInfo
	Items         []OrderLine
}

// Order is a customer's purchase.
type Order struct {
	shared.Entity[Order]
	shared.EventBuffer
	shared.Audit
	shared.Versioned

	clock              shared.Clock
	tenantID           shared.TenantID
	number             OrderNumber
	customerID         customer.CustomerID
	customerEmail      shared.Email
	status             Status
	paymentStatus      PaymentStatus
	fulfillment        FulfillmentType
	items              []*OrderItem
	currency           string
	discount           *shared.Money
	shippingCost       shared.Money
	tax                shared.Money
	shipping           *ShippingInfo
	paymentMethod      string
	transactionID      string
	trackingNumber     *TrackingNumber
	notes              string
	cancellationReason string
	paidAt             *time.Time
	shippedAt          *time.Time
	deliveredAt        *time.Time
	cancelledAt        *time.Time
}

// PlaceOrder validates p and returns a pending order numbered number.
func PlaceOrder(clock shared.Clock, number OrderNumber, p PlaceOrderParams) (*Order, error) {
	if p.TenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	if number == "" {
		return nil, &shared.ValidationError{Field: "order_number", Reason: "is required"}
	}
	if p.CustomerID.IsZero() {
		return nil, &shared.ValidationError{Field: "customer_id", Reason: "is required"}
	}
	email, err := shared.ParseEmail(p.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if !p.Fulfillment.Valid() {
		return nil, &shared.ValidationError{Field: "fulfillment", Reason: "unknown fulfillment type"}
	}
	if p.Fulfillment.RequiresShipping() && p.Shipping == nil {
		return nil, &shared.ValidationError{Field: "shipping", Reason: "is required for " + string(p.Fulfillment)}
	}
	if len(p.Items) == 0 {
		return nil, &shared.ValidationError{Field: "items", Reason: "order must have at least one item"}
	}

	items := make([]*OrderItem, 0, len(p.Items))
	for _, line := range p.Items {
		item, err := NewOrderItem(line)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 && items[0].unitPrice.Currency() != item.unitPrice.Currency() {
			return nil, &shared.CurrencyMismatchError{Op: "combine", Left: items[0].unitPrice.Currency(), Right: item.unitPrice.Currency()}
		}
		items = append(items, item)
	}
	currency := items[0].unitPrice.Currency()
	zero, err := shared.ZeroMoney(currency)
	if err != nil {
		return nil, err
	}

	clock = shared.ClockOrSystem(clock)
	o := &Order{
		Entity:        shared.NewEntity[Order](),
		clock:         clock,
		tenantID:      p.TenantID,
		number:        number,
		customerID:    p.CustomerID,
		customerEmail: email,
		status:        StatusPending,
		paymentStatus: PaymentPending,
		fulfillment:   p.Fulfillment,
		items:         items,
		currency:      currency,
		shippingCost:  zero,
		tax:           zero,
	}
	if p.Shipping != nil {
		s := *p.Shipping
		o.shipping = &s
	}
	o.AddEvent(OrderPlaced{EventMeta: o.meta(), Number: number, CustomerID: p.CustomerID, Total: o.Total()})
	return o, nil
}

func (o *Order) meta() shared.EventMeta {
	return shared.NewEventMeta(o.clock.UtcNow(), o.ID().String(), o.tenantID.String())
}

func (o *Order) TenantID() shared.TenantID { return o.tenantID }
func (o *Order) Number() OrderNumber { return o.number }
func (o *Order) CustomerID() customer.CustomerID { return o.customerID }
func (o *Order) CustomerEmail() shared.Email { return o.customerEmail }
func (o *Order) Status() Status { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) Fulfillment() FulfillmentType { return o.fulfillment }
func (o *Order) Items() []*OrderItem { return slices.Clone(o.items) }
func (o *Order) Currency() string { return o.currency }
func (o *Order) ShippingCost() shared.Money { return o.shippingCost }
func (o *Order) Tax() shared.Money { return o.tax }
func (o *Order) PaymentMethod() string { return o.paymentMethod }
func (o *Order) TransactionID() string { return o.transactionID }
func (o *Order) Notes() string { return o.notes }
func (o *Order) CancellationReason() string { return o.cancellationReason }
func (o *Order) RequiresShipping() bool { return o.fulfillment.RequiresShipping() }

func (o *Order) Shipping() (ShippingInfo, bool) {
	if o.shipping == nil {
		return ShippingInfo{}, false
	}
	return *o.shipping, true
}

func (o *Order) TrackingNumber() (TrackingNumber, bool) {
	if o.trackingNumber == nil {
		return "", false
	}
	return *o.trackingNumber, true
}

func (o *Order) PaidAt() (time.Time, bool) { return deref(o.paidAt) }
func (o *Order) ShippedAt() (time.Time, bool) { return deref(o.shippedAt) }
func (o *Order) DeliveredAt() (time.Time, bool) { return deref(o.deliveredAt) }
func (o *Order) CancelledAt() (time.Time, bool) { return deref(o.cancelledAt) }

func deref(t *time.Time) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// Discount is the order level discount, zero if none was applied.
func (o *Order) Discount() shared.Money {
	if o.discount == nil {
		m, _ := shared.ZeroMoney(o.currency)
		return m
	}
	return *o.discount
}

// Subtotal is the sum of item totals.
func (o *Order) Subtotal() shared.Money {
	totals := make([]shared.Money, len(o.items))
	for i, item := range o.items {
		totals[i] = item.Total()
	}
	sum, _ := shared.SumMoney(o.currency, totals...)
	return sum
}

// Total is Subtotal + ShippingCost + Tax - Discount. Discount never exceeds
// the subtotal, so the result is never negative.
func (o *Order) Total() shared.Money {
	t, _ := shared.SumMoney(o.currency, o.Subtotal(), o.shippingCost, o.tax)
	t, _ = t.Subtract(o.Discount())
	return t
}

// TotalItems is the number of units across all items.
func (o *Order) TotalItems() int {
	n := 0
	for _, item := range o.items {
		n += item.quantity
	}
	return n
}

func (o *Order) CanBeCancelled() bool {
	return orderLifecycle.Can(o.status, EventCancel)
}

func (o *Order) requireCurrency(op string, m shared.Money) error {
	if m.Currency() != o.currency {
		return &shared.CurrencyMismatchError{Op: op, Left: o.currency, Right: m.Currency()}
	}
	return nil
}

// ApplyDiscount sets the order level discount, between zero and the subtotal.
func (o *Order) ApplyDiscount(m shared.Money) error {
	if err := o.requireCurrency("discount", m); err != nil {
		return err
	}
	within, err := m.LessThanOrEqual(o.Subtotal())
	if err != nil {
		return err
	}
	if !within {
		return &shared.ValidationError{Field: "discount", Reason: "must not exceed the subtotal"}
	}
	o.discount = &m
	return nil
}

func (o *Order) SetShippingCost(m shared.Money) error {
	if err := o.requireCurrency("set shipping cost", m); err != nil {
		return err
	}
	o.shippingCost = m
	return nil
}

func (o *Order) SetTax(m shared.Money) error {
	if err := o.requireCurrency("set tax", m); err != nil {
		return err
	}
	o.tax = m
	return nil
}

func (o *Order) AddNotes(notes string) error {
	n, err := shared.RequireText("notes", notes, 0)
	if err != nil {
		return err
	}
	o.notes = n
	return nil
}

func (o *Order) fire(event Event) error {
	next, err := orderLifecycle.Apply(o.status, event)
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// ConfirmPayment records a successful payment and confirms the order.
func (o *Order) ConfirmPayment(method, transactionID string) error {
	if o.paymentStatus != PaymentPending {
		return &shared.StateError{Entity: "order", Action: "confirm payment", Reason: "payment already " + string(o.paymentStatus)}
	}
	m, err := shared.RequireText("payment_method", method, 50)
	if err != nil {
		return err
	}
	tx, err := shared.RequireText("transaction_id", transactionID, 200)
	if err != nil {
		return err
	}
	if err := o.fire(EventConfirm); err != nil {
		return err
	}
	now := o.clock.UtcNow()
	o.paymentMethod, o.transactionID = m, tx
	o.paymentStatus = PaymentPaid
	o.paidAt = &now
	o.AddEvent(OrderPaid{EventMeta: o.meta(), PaymentMethod: m, TransactionID: tx, Amount: o.Total()})
	return nil
}

func (o *Order) MarkAsProcessing() error {
	if err := o.fire(EventProcess); err != nil {
		return err
	}
	o.AddEvent(OrderProcessing{EventMeta: o.meta()})
	return nil
}

// MarkAsShipped hands the order to a carrier. tracking may be empty. Digital
// downloads are never shipped.
func (o *Order) MarkAsShipped(tracking string) error {
	if o.fulfillment == DigitalDownload {
		return &shared.StateError{Entity: "order", Action: "ship", Reason: "digital downloads are not shipped"}
	}
	var tn *TrackingNumber
	if strings.TrimSpace(tracking) != "" {
		parsed, err := ParseTrackingNumber(tracking)
		if err != nil {
			return err
		}
		tn = &parsed
	}
	if err := o.fire(EventShip); err != nil {
		return err
	}
	now := o.clock.UtcNow()
	o.trackingNumber = tn
	o.shippedAt = &now
	ev := OrderShipped{EventMeta: o.meta()}
	if tn != nil {
		ev.TrackingNumber = *tn
	}
	o.AddEvent(ev)
	return nil
}

func (o *Order) MarkAsDelivered() error {
	if err := o.fire(EventDeliver); err != nil {
		return err
	}
	now := o.clock.UtcNow()
	o.deliveredAt = &now
	o.AddEvent(OrderDelivered{EventMeta: o.meta()})
	return nil
}

// Cancel stops the order. A captured or authorized payment is flagged as
// cancelled so it can be reversed.
func (o *Order) Cancel(reason string) error {
	r, err := shared.RequireText("reason", reason, 500)
	if err != nil {
		return err
	}
	if err := o.fire(EventCancel); err != nil {
		return err
	}
	now := o.clock.UtcNow()
	o.cancellationReason = r
	o.cancelledAt = &now
	if o.paymentStatus == PaymentPaid || o.paymentStatus == PaymentAuthorized {
		o.paymentStatus = PaymentCancelled
	}
	o.AddEvent(OrderCancelled{EventMeta: o.meta(), Reason: r})
	return nil
}

// Refund returns the payment of a delivered order.
func (o *Order) Refund(reason string) error {
	r, err := shared.RequireText("reason", reason, 500)
	if err != nil {
		return err
	}
	if o.paymentStatus != PaymentPaid {
		return &shared.StateError{Entity: "order", Action: "refund", Reason: "payment is " + string(o.paymentStatus)}
	}
	if err := o.fire(EventRefund); err != nil {
		return err
	}
	o.paymentStatus = PaymentRefunded
	o.AddEvent(OrderRefunded{EventMeta: o.meta(), Reason: r, Amount: o.Total()})
	return nil
}

// OrderSnapshot is the persisted form of an Order.
type OrderSnapshot struct {
	ID                 OrderID             `json:"id"`
	TenantID           shared.TenantID     `json:"tenant_id"`
	Number             OrderNumber         `json:"number"`
	CustomerID         customer.CustomerID `json:"customer_id"`
	CustomerEmail      shared.Email        `json:"customer_email"`
	Status             Status              `json:"status"`
	PaymentStatus      PaymentStatus       `json:"payment_status"`
	Fulfillment        FulfillmentType     `json:"fulfillment"`
	Items              []OrderItemSnapshot `json:"items"`
	Currency           string              `json:"currency"`
	Discount           *shared.Money       `json:"discount,omitempty"`
	ShippingCost       shared.Money        `json:"shipping_cost"`
	Tax                shared.Money        `json:"tax"`
	Shipping           *ShippingInfo       `json:"shipping,omitempty"`
	PaymentMethod      string              `json:"payment_method,omitempty"`
	TransactionID      string              `json:"transaction_id,omitempty"`
	TrackingNumber     *TrackingNumber     `json:"tracking_number,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	PaidAt             *time.Time          `json:"paid_at,omitempty"`
	ShippedAt          *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	Audit              shared.AuditRecord  `json:"audit"`
}

func (o *Order) Snapshot() OrderSnapshot {
	items := make([]OrderItemSnapshot, len(o.items))
	for i, item := range o.items {
		items[i] = item.snapshot()
	}
	return OrderSnapshot{
		ID:                 o.ID(),
		TenantID:           o.tenantID,
		Number:             o.number,
		CustomerID:         o.customerID,
		CustomerEmail:      o.customerEmail,
		Status:             o.status,
		PaymentStatus:      o.paymentStatus,
		Fulfillment:        o.fulfillment,
		Items:              items,
		Currency:           o.currency,
		Discount:           o.discount,
		ShippingCost:       o.shippingCost,
		Tax:                o.tax,
		Shipping:           o.shipping,
		PaymentMethod:      o.paymentMethod,
		TransactionID:      o.transactionID,
		TrackingNumber:     o.trackingNumber,
		Notes:              o.notes,
		CancellationReason: o.cancellationReason,
		PaidAt:             o.paidAt,
		ShippedAt:          o.shippedAt,
		DeliveredAt:        o.deliveredAt,
		CancelledAt:        o.cancelledAt,
		Audit:              o.Audit.Snapshot(),
	}
}

func RestoreOrder(clock shared.Clock, s OrderSnapshot) (*Order, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	items := make([]*OrderItem, 0, len(s.Items))
	for _, is := range s.Items {
		item, err := restoreOrderItem(is)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &Order{
		Entity:             entity,
		Audit:              shared.RestoreAudit(s.Audit),
		clock:              shared.ClockOrSystem(clock),
		tenantID:           s.TenantID,
		number:             s.Number,
		customerID:         s.CustomerID,
		customerEmail:      s.CustomerEmail,
		status:             s.Status,
		paymentStatus:      s.PaymentStatus,
		fulfillment:        s.Fulfillment,
		items:              items,
		currency:           s.Currency,
		discount:           s.Discount,
		shippingCost:       s.ShippingCost,
		tax:                s.Tax,
		shipping:           s.Shipping,
		paymentMethod:      s.PaymentMethod,
		transactionID:      s.TransactionID,
		trackingNumber:     s.TrackingNumber,
		notes:              s.Notes,
		cancellationReason: s.CancellationReason,
		paidAt:             s.PaidAt,
		shippedAt:          s.ShippedAt,
		deliveredAt:        s.DeliveredAt,
		cancelledAt:        s.CancelledAt,
	}, nil
}
