package customer

import "github.com/neomorfeo/nexcart/internal/domain/shared"

type CustomerRegistered struct {
	shared.EventMeta
	Email    shared.Email `json:"email"`
	FullName string       `json:"full_name"`
}

func (CustomerRegistered) EventName() string { return "customer.registered" }

type CustomerAddressAdded struct {
	shared.EventMeta
	AddressID AddressID `json:"address_id"`
}

func (CustomerAddressAdded) EventName() string { return "customer.address_added" }
