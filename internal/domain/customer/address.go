package customer

import (
	"strings"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// NewAddressParams are the inputs of Customer.AddAddress.
type NewAddressParams struct {
	FullName string
	Phone    string
	Address  shared.Address
	Label    string
	Default  bool
}

// CustomerAddress is a delivery address saved on a customer.
type CustomerAddress struct {
	shared.Entity[CustomerAddress]

	fullName  string
	phone     shared.PhoneNumber
	address   shared.Address
	label     string
	isDefault bool
}

func newCustomerAddress(p NewAddressParams) (*CustomerAddress, error) {
	name, err := shared.RequireText("full_name", p.FullName, 100)
	if err != nil {
		return nil, err
	}
	phone, err := shared.ParsePhoneNumber(p.Phone)
	if err != nil {
		return nil, err
	}
	if p.Address.IsZero() {
		return nil, &shared.ValidationError{Field: "address", Reason: "is required"}
	}
	return &CustomerAddress{
		Entity:   shared.NewEntity[CustomerAddress](),
		fullName: name,
		phone:    phone,
		address:  p.Address,
		label:    strings.TrimSpace(p.Label),
	}, nil
}

func (a *CustomerAddress) FullName() string { return a.fullName }
func (a *CustomerAddress) Phone() shared.PhoneNumber { return a.phone }
func (a *CustomerAddress) Address() shared.Address { return a.address }
func (a *CustomerAddress) Label() string { return a.label }
func (a *CustomerAddress) IsDefault() bool { return a.isDefault }

func (a *CustomerAddress) UpdateDetails(fullName, phone string, address shared.Address, label string) error {
	name, err := shared.RequireText("full_name", fullName, 100)
	if err != nil {
		return err
	}
	p, err := shared.ParsePhoneNumber(phone)
	if err != nil {
		return err
	}
	if address.IsZero() {
		return &shared.ValidationError{Field: "address", Reason: "is required"}
	}
	a.fullName, a.phone, a.address, a.label = name, p, address, strings.TrimSpace(label)
	return nil
}

// AddressSnapshot is the persisted form of a CustomerAddress.
type AddressSnapshot struct {
	ID        AddressID          `json:"id"`
	FullName  string             `json:"full_name"`
	Phone     shared.PhoneNumber `json:"phone"`
	Address   shared.Address     `json:"address"`
	Label     string             `json:"label,omitempty"`
	IsDefault bool               `json:"is_default"`
}

func (a *CustomerAddress) snapshot() AddressSnapshot {
	return AddressSnapshot{
		ID:        a.ID(),
		FullName:  a.fullName,
		Phone:     a.phone,
		Address:   a.address,
		Label:     a.label,
		IsDefault: a.isDefault,
	}
}

func restoreCustomerAddress(s AddressSnapshot) (*CustomerAddress, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &CustomerAddress{
		Entity:    entity,
		fullName:  s.FullName,
		phone:     s.Phone,
		address:   s.Address,
		label:     s.Label,
		isDefault: s.IsDefault,
	}, nil
}
