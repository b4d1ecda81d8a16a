package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type CustomerResponse struct {
	ID            string            `json:"id"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone,omitempty"`
	Status        string            `json:"status"`
	EmailVerified bool              `json:"email_verified"`
	LoyaltyPoints int               `json:"loyalty_points"`
	TotalOrders   int               `json:"total_orders"`
	TotalSpent    *MoneyBody        `json:"total_spent,omitempty"`
	Addresses     []AddressResponse `json:"addresses"`
	Version       int               `json:"version"`
}

type AddressResponse struct {
	ID       string               `json:"id"`
	FullName string               `json:"full_name"`
	Phone    string               `json:"phone"`
	Label    string               `json:"label,omitempty"`
	Default  bool                 `json:"default"`
	Address  shared.AddressParams `json:"address"`
}

func toAddressResponse(a *customer.CustomerAddress) AddressResponse {
	return AddressResponse{
		ID:       a.ID().String(),
		FullName: a.FullName(),
		Phone:    a.Phone().String(),
		Label:    a.Label(),
		Default:  a.IsDefault(),
		Address:  a.Address().Params(),
	}
}

func toCustomerResponse(c *customer.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:            c.ID().String(),
		FirstName:     c.FirstName(),
		LastName:      c.LastName(),
		Email:         c.Email().String(),
		Status:        string(c.Status()),
		EmailVerified: c.IsEmailVerified(),
		LoyaltyPoints: c.LoyaltyPoints().Value(),
		TotalOrders:   c.TotalOrders(),
		Addresses:     []AddressResponse{},
		Version:       c.Version(),
	}
	if phone, ok := c.Phone(); ok {
		resp.Phone = phone.String()
	}
	if spent, ok := c.TotalSpent(); ok {
		body := toMoneyBody(spent)
		resp.TotalSpent = &body
	}
	for _, a := range c.Addresses() {
		resp.Addresses = append(resp.Addresses, toAddressResponse(a))
	}
	return resp
}

type RegisterCustomerInput struct {
	Body struct {
		FirstName string `json:"first_name" minLength:"1"`
		LastName  string `json:"last_name" minLength:"1"`
		Email     string `json:"email" format:"email"`
		Phone     string `json:"phone,omitempty" required:"false"`
	}
}

type CustomerOutput struct {
	Body CustomerResponse
}

type CustomerIDInput struct {
	ID string `path:"id" doc:"Customer ID"`
}

type AddAddressInput struct {
	ID   string `path:"id"`
	Body struct {
		FullName string               `json:"full_name" minLength:"1"`
		Phone    string               `json:"phone"`
		Label    string               `json:"label,omitempty" required:"false"`
		Default  bool                 `json:"default,omitempty" required:"false"`
		Address  shared.AddressParams `json:"address"`
	}
}

type AddressOutput struct {
	Body AddressResponse
}

type LoyaltyInput struct {
	ID   string `path:"id"`
	Body struct {
		Points int `json:"points" doc:"Points to add (positive) or redeem (negative)"`
	}
}

type BlockCustomerInput struct {
	ID   string `path:"id"`
	Body struct {
		Reason string `json:"reason" minLength:"1"`
	}
}

func registerCustomers(api huma.API, svc *app.CustomerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-customer",
		Method:        http.MethodPost,
		Path:          "/api/v1/customers",
		Summary:       "Register a customer",
		Tags:          []string{"Customers"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterCustomerInput) (*CustomerOutput, error) {
		c, err := svc.Register(ctx, app.RegisterCustomerCommand{
			FirstName: input.Body.FirstName,
			LastName:  input.Body.LastName,
			Email:     input.Body.Email,
			Phone:     input.Body.Phone,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-customer",
		Method:      http.MethodGet,
		Path:        "/api/v1/customers/{id}",
		Summary:     "Get a customer",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *CustomerIDInput) (*CustomerOutput, error) {
		id, err := parseID[customer.Customer]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.GetCustomer(ctx, app.GetCustomerQuery{CustomerID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-customer-address",
		Method:        http.MethodPost,
		Path:          "/api/v1/customers/{id}/addresses",
		Summary:       "Save a delivery address",
		Tags:          []string{"Customers"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *AddAddressInput) (*AddressOutput, error) {
		id, err := parseID[customer.Customer]("id", input.ID)
		if err != nil {
			return nil, err
		}
		address, err := shared.NewAddress(input.Body.Address)
		if err != nil {
			return nil, toHumaError(err)
		}
		a, err := svc.AddAddress(ctx, app.AddAddressCommand{CustomerID: id, Address: customer.NewAddressParams{
			FullName: input.Body.FullName,
			Phone:    input.Body.Phone,
			Address:  address,
			Label:    input.Body.Label,
			Default:  input.Body.Default,
		}})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AddressOutput{Body: toAddressResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "adjust-customer-loyalty",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/loyalty",
		Summary:     "Award or redeem loyalty points",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *LoyaltyInput) (*CustomerOutput, error) {
		id, err := parseID[customer.Customer]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.AdjustLoyalty(ctx, app.LoyaltyCommand{CustomerID: id, Points: input.Body.Points})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "block-customer",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/block",
		Summary:     "Block a customer",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *BlockCustomerInput) (*CustomerOutput, error) {
		id, err := parseID[customer.Customer]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.Block(ctx, app.BlockCustomerCommand{CustomerID: id, Reason: input.Body.Reason})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unblock-customer",
		Method:      http.MethodPost,
		Path:        "/api/v1/customers/{id}/unblock",
		Summary:     "Unblock a customer",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *CustomerIDInput) (*CustomerOutput, error) {
		id, err := parseID[customer.Customer]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.Unblock(ctx, app.UnblockCustomerCommand{CustomerID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CustomerOutput{Body: toCustomerResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-customer",
		Method:        http.MethodDelete,
		Path:          "/api/v1/customers/{id}",
		Summary:       "Soft-delete a customer",
		Tags:          []string{"Customers"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *CustomerIDInput) (*struct{}, error) {
		id, err := parseID[customer.Customer]("id", input.ID)
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(ctx, app.DeleteCustomerCommand{CustomerID: id}); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})
}
