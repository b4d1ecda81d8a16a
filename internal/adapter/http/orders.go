package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/ordering"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
)

type OrderResponse struct {
	ID             string              `json:"id"`
	Number         string              `json:"number"`
	CustomerID     string              `json:"customer_id"`
	CustomerEmail  string              `json:"customer_email"`
	Status         string              `json:"status"`
	PaymentStatus  string              `json:"payment_status"`
	Fulfillment    string              `json:"fulfillment"`
	Items          []OrderItemResponse `json:"items"`
	Subtotal       MoneyBody           `json:"subtotal"`
	Discount       MoneyBody           `json:"discount"`
	ShippingCost   MoneyBody           `json:"shipping_cost"`
	Tax            MoneyBody           `json:"tax"`
	Total          MoneyBody           `json:"total"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	CancelReason   string              `json:"cancellation_reason,omitempty"`
	Version        int                 `json:"version"`
	CreatedAt      string              `json:"created_at"`
}

type OrderItemResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	VariantID   string    `json:"variant_id,omitempty"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name,omitempty"`
	SKU         string    `json:"sku"`
	UnitPrice   MoneyBody `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Total       MoneyBody `json:"total"`
}

func toOrderResponse(o *ordering.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID().String(),
		Number:        o.Number().String(),
		CustomerID:    o.CustomerID().String(),
		CustomerEmail: o.CustomerEmail().String(),
		Status:        string(o.Status()),
		PaymentStatus: string(o.PaymentStatus()),
		Fulfillment:   string(o.Fulfillment()),
		Items:         make([]OrderItemResponse, 0, len(o.Items())),
		Subtotal:      toMoneyBody(o.Subtotal()),
		Discount:      toMoneyBody(o.Discount()),
		ShippingCost:  toMoneyBody(o.ShippingCost()),
		Tax:           toMoneyBody(o.Tax()),
		Total:         toMoneyBody(o.Total()),
		Notes:         o.Notes(),
		CancelReason:  o.CancellationReason(),
		Version:       o.Version(),
		CreatedAt:     o.CreatedAt().Format(timeLayout),
	}
	if tn, ok := o.TrackingNumber(); ok {
		resp.TrackingNumber = string(tn)
	}
	for _, item := range o.Items() {
		line := OrderItemResponse{
			ID:          item.ID().String(),
			ProductID:   item.ProductID().String(),
			ProductName: item.ProductName(),
			VariantName: item.VariantName(),
			SKU:         item.SKU(),
			UnitPrice:   toMoneyBody(item.UnitPrice()),
			Quantity:    item.Quantity(),
			Total:       toMoneyBody(item.Total()),
		}
		if id, ok := item.VariantID(); ok {
			line.VariantID = id.String()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

type ShippingBody struct {
	FullName string               `json:"full_name" minLength:"1"`
	Email    string               `json:"email" format:"email"`
	Phone    string               `json:"phone"`
	Address  shared.AddressParams `json:"address"`
}

type CheckoutInput struct {
	Body struct {
		CartID       string        `json:"cart_id"`
		CustomerID   string        `json:"customer_id"`
		Fulfillment  string        `json:"fulfillment" enum:"standard_shipping,express_shipping,local_delivery,store_pickup,digital_download"`
		Shipping     *ShippingBody `json:"shipping,omitempty" required:"false" doc:"Required for shipped fulfillment"`
		ShippingCost *MoneyBody    `json:"shipping_cost,omitempty" required:"false"`
		Tax          *MoneyBody    `json:"tax,omitempty" required:"false"`
		Notes        string        `json:"notes,omitempty" required:"false"`
	}
}

type OrderOutput struct {
	Body OrderResponse
}

type OrderIDInput struct {
	ID string `path:"id" doc:"Order ID"`
}

type OrderByNumberInput struct {
	Number string `path:"number" doc:"Order number"`
}

type ListOrdersInput struct {
	CustomerID string `query:"customer_id" required:"false"`
	Status     string `query:"status" required:"false" enum:"pending,confirmed,processing,shipped,delivered,cancelled,refunded"`
	Limit      int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"200"`
	Offset     int    `query:"offset" required:"false" default:"0" minimum:"0"`
}

type ListOrdersOutput struct {
	Body []OrderResponse
}

type ConfirmPaymentInput struct {
	ID   string `path:"id"`
	Body struct {
		Method        string `json:"method" minLength:"1"`
		TransactionID string `json:"transaction_id" minLength:"1"`
	}
}

type ShipOrderInput struct {
	ID   string `path:"id"`
	Body struct {
		TrackingNumber string `json:"tracking_number" minLength:"1"`
	}
}

type ReasonInput struct {
	ID   string `path:"id"`
	Body struct {
		Reason string `json:"reason" minLength:"1"`
	}
}

type OrderAmountInput struct {
	ID   string `path:"id"`
	Body struct {
		Amount MoneyBody `json:"amount"`
	}
}

func registerOrders(api huma.API, svc *app.OrderService) {
	huma.Register(api, huma.Operation{
		OperationID:   "checkout",
		Method:        http.MethodPost,
		Path:          "/api/v1/orders",
		Summary:       "Place an order from a cart",
		Tags:          []string{"Orders"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CheckoutInput) (*OrderOutput, error) {
		cmd, err := checkoutCommand(input)
		if err != nil {
			return nil, err
		}
		o, err := svc.Checkout(ctx, cmd)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &OrderOutput{Body: toOrderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-order",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get an order",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
		id, err := parseID[ordering.Order]("id", input.ID)
		if err != nil {
			return nil, err
		}
		o, err := svc.GetOrder(ctx, app.GetOrderQuery{OrderID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &OrderOutput{Body: toOrderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-order-by-number",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/by-number/{number}",
		Summary:     "Look up an order by its number",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderByNumberInput) (*OrderOutput, error) {
		number, err := ordering.ParseOrderNumber(input.Number)
		if err != nil {
			return nil, toHumaError(err)
		}
		o, err := svc.GetOrderByNumber(ctx, app.GetOrderByNumberQuery{Number: number})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &OrderOutput{Body: toOrderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-orders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders, newest first",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *ListOrdersInput) (*ListOrdersOutput, error) {
		q := app.ListOrdersQuery{Limit: input.Limit, Offset: input.Offset}
		if input.CustomerID != "" {
			id, err := parseID[customer.Customer]("customer_id", input.CustomerID)
			if err != nil {
				return nil, err
			}
			q.CustomerID = &id
		}
		if input.Status != "" {
			s := ordering.Status(input.Status)
			q.Status = &s
		}
		orders, err := svc.ListOrders(ctx, q)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]OrderResponse, len(orders))
		for i, o := range orders {
			resp[i] = toOrderResponse(o)
		}
		return &ListOrdersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "confirm-order-payment",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/payment",
		Summary:     "Record a successful payment",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *ConfirmPaymentInput) (*OrderOutput, error) {
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.ConfirmPayment(ctx, app.ConfirmPaymentCommand{OrderID: id, Method: input.Body.Method, TransactionID: input.Body.TransactionID})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "process-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/processing",
		Summary:     "Start preparing the order",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.StartProcessing(ctx, app.StartProcessingCommand{OrderID: id})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "ship-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/shipment",
		Summary:     "Hand the order to the carrier",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *ShipOrderInput) (*OrderOutput, error) {
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.Ship(ctx, app.ShipOrderCommand{OrderID: id, TrackingNumber: input.Body.TrackingNumber})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "deliver-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/delivery",
		Summary:     "Mark the order delivered",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.Deliver(ctx, app.DeliverOrderCommand{OrderID: id})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/cancellation",
		Summary:     "Cancel the order and restock its items",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *ReasonInput) (*OrderOutput, error) {
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.Cancel(ctx, app.CancelOrderCommand{OrderID: id, Reason: input.Body.Reason})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "refund-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/refund",
		Summary:     "Refund a paid order",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *ReasonInput) (*OrderOutput, error) {
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.Refund(ctx, app.RefundOrderCommand{OrderID: id, Reason: input.Body.Reason})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "apply-order-discount",
		Method:      http.MethodPut,
		Path:        "/api/v1/orders/{id}/discount",
		Summary:     "Apply an order-level discount",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderAmountInput) (*OrderOutput, error) {
		amount, err := input.Body.Amount.money()
		if err != nil {
			return nil, err
		}
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.ApplyDiscount(ctx, app.ApplyDiscountCommand{OrderID: id, Amount: amount})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-order-shipping-cost",
		Method:      http.MethodPut,
		Path:        "/api/v1/orders/{id}/shipping-cost",
		Summary:     "Set the shipping cost",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderAmountInput) (*OrderOutput, error) {
		amount, err := input.Body.Amount.money()
		if err != nil {
			return nil, err
		}
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.SetShippingCost(ctx, app.SetShippingCostCommand{OrderID: id, Amount: amount})
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-order-tax",
		Method:      http.MethodPut,
		Path:        "/api/v1/orders/{id}/tax",
		Summary:     "Set the tax amount",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderAmountInput) (*OrderOutput, error) {
		amount, err := input.Body.Amount.money()
		if err != nil {
			return nil, err
		}
		return orderCommand(input.ID, func(id ordering.OrderID) (*ordering.Order, error) {
			return svc.SetTax(ctx, app.SetTaxCommand{OrderID: id, Amount: amount})
		})
	})
}

// orderCommand parses the path ID, runs fn and renders the order.
func orderCommand(rawID string, fn func(ordering.OrderID) (*ordering.Order, error)) (*OrderOutput, error) {
	id, err := parseID[ordering.Order]("id", rawID)
	if err != nil {
		return nil, err
	}
	o, err := fn(id)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &OrderOutput{Body: toOrderResponse(o)}, nil
}

func checkoutCommand(input *CheckoutInput) (app.CheckoutCommand, error) {
	var cmd app.CheckoutCommand
	var err error
	if cmd.CartID, err = parseID[shopping.ShoppingCart]("cart_id", input.Body.CartID); err != nil {
		return cmd, err
	}
	if cmd.CustomerID, err = parseID[customer.Customer]("customer_id", input.Body.CustomerID); err != nil {
		return cmd, err
	}
	cmd.Fulfillment = ordering.FulfillmentType(input.Body.Fulfillment)
	cmd.Notes = input.Body.Notes
	if s := input.Body.Shipping; s != nil {
		address, err := shared.NewAddress(s.Address)
		if err != nil {
			return cmd, toHumaError(err)
		}
		info, err := ordering.NewShippingInfo(s.FullName, s.Email, s.Phone, address)
		if err != nil {
			return cmd, toHumaError(err)
		}
		cmd.Shipping = &info
	}
	if cmd.ShippingCost, err = optionalMoney(input.Body.ShippingCost); err != nil {
		return cmd, err
	}
	if cmd.Tax, err = optionalMoney(input.Body.Tax); err != nil {
		return cmd, err
	}
	return cmd, nil
}
