package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// CustomerService handles customer accounts within a tenant.
type CustomerService struct {
	pipeline  *uow.Pipeline
	customers customer.Repository
	clock     shared.Clock
}

func NewCustomerService(pipeline *uow.Pipeline, customers customer.Repository, clock shared.Clock) *CustomerService {
	return &CustomerService{pipeline: pipeline, customers: customers, clock: shared.ClockOrSystem(clock)}
}

type RegisterCustomerCommand struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Register creates a customer. Emails are unique within a tenant.
func (s *CustomerService) Register(ctx context.Context, cmd RegisterCustomerCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd RegisterCustomerCommand) (*customer.Customer, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		c, err := customer.RegisterCustomer(s.clock, tenantID, cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone)
		if err != nil {
			return nil, err
		}

		_, err = s.customers.GetByEmail(ctx, c.Email())
		switch {
		case err == nil:
			return nil, &shared.DuplicateError{Entity: "customer", Field: "email", Value: c.Email().String()}
		case shared.KindOf(err) != shared.KindNotFound:
			return nil, fmt.Errorf("checking email: %w", err)
		}

		if err := s.customers.Add(ctx, c); err != nil {
			return nil, fmt.Errorf("adding customer: %w", err)
		}
		return c, nil
	})
}

type UpdateProfileCommand struct {
	CustomerID customer.CustomerID
	FirstName  string
	LastName   string
	Phone      string
}

func (s *CustomerService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd UpdateProfileCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error {
			return c.UpdateProfile(cmd.FirstName, cmd.LastName, cmd.Phone)
		})
	})
}

type AddAddressCommand struct {
	CustomerID customer.CustomerID
	Address    customer.NewAddressParams
}

func (s *CustomerService) AddAddress(ctx context.Context, cmd AddAddressCommand) (*customer.CustomerAddress, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AddAddressCommand) (*customer.CustomerAddress, error) {
		var added *customer.CustomerAddress
		_, err := s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error {
			a, err := c.AddAddress(cmd.Address)
			added = a
			return err
		})
		return added, err
	})
}

type RemoveAddressCommand struct {
	CustomerID customer.CustomerID
	AddressID  customer.AddressID
}

func (s *CustomerService) RemoveAddress(ctx context.Context, cmd RemoveAddressCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd RemoveAddressCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error { return c.RemoveAddress(cmd.AddressID) })
	})
}

type SetDefaultAddressCommand struct {
	CustomerID customer.CustomerID
	AddressID  customer.AddressID
}

func (s *CustomerService) SetDefaultAddress(ctx context.Context, cmd SetDefaultAddressCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd SetDefaultAddressCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error { return c.SetDefaultAddress(cmd.AddressID) })
	})
}

// LoyaltyCommand adds Points when positive and redeems them when negative.
type LoyaltyCommand struct {
	CustomerID customer.CustomerID
	Points     int
}

func (s *CustomerService) AdjustLoyalty(ctx context.Context, cmd LoyaltyCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd LoyaltyCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error {
			switch {
			case cmd.Points > 0:
				return c.AddLoyaltyPoints(cmd.Points)
			case cmd.Points < 0:
				return c.RedeemLoyaltyPoints(-cmd.Points)
			}
			return &shared.ValidationError{Field: "points", Reason: "must not be zero"}
		})
	})
}

type PointsCommand struct {
	CustomerID customer.CustomerID
	Points     int
}

func (s *CustomerService) AddLoyaltyPoints(ctx context.Context, cmd PointsCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd PointsCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error { return c.AddLoyaltyPoints(cmd.Points) })
	})
}

type RedeemPointsCommand struct {
	CustomerID customer.CustomerID
	Points     int
}

func (s *CustomerService) RedeemLoyaltyPoints(ctx context.Context, cmd RedeemPointsCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd RedeemPointsCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error { return c.RedeemLoyaltyPoints(cmd.Points) })
	})
}

type BlockCustomerCommand struct {
	CustomerID customer.CustomerID
	Reason     string
}

func (s *CustomerService) Block(ctx context.Context, cmd BlockCustomerCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd BlockCustomerCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error { return c.Block(cmd.Reason) })
	})
}

type UnblockCustomerCommand struct{ CustomerID customer.CustomerID }

func (s *CustomerService) Unblock(ctx context.Context, cmd UnblockCustomerCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd UnblockCustomerCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, (*customer.Customer).Unblock)
	})
}

type VerifyEmailCommand struct{ CustomerID customer.CustomerID }

func (s *CustomerService) VerifyEmail(ctx context.Context, cmd VerifyEmailCommand) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd VerifyEmailCommand) (*customer.Customer, error) {
		return s.mutate(ctx, cmd.CustomerID, func(c *customer.Customer) error {
			c.VerifyEmail()
			return nil
		})
	})
}

type DeleteCustomerCommand struct{ CustomerID customer.CustomerID }

// Delete soft-deletes the customer. The row stays for order history.
func (s *CustomerService) Delete(ctx context.Context, cmd DeleteCustomerCommand) error {
	_, err := uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd DeleteCustomerCommand) (struct{}, error) {
		c, err := s.customers.GetByID(ctx, cmd.CustomerID)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.customers.Remove(ctx, c)
	})
	return err
}

type GetCustomerQuery struct{ CustomerID customer.CustomerID }

func (s *CustomerService) GetCustomer(ctx context.Context, q GetCustomerQuery) (*customer.Customer, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetCustomerQuery) (*customer.Customer, error) {
		return s.customers.GetByID(ctx, q.CustomerID)
	})
}

func (s *CustomerService) mutate(ctx context.Context, id customer.CustomerID, fn func(*customer.Customer) error) (*customer.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("updating customer: %w", err)
	}
	return c, nil
}
