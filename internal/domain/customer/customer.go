package customer

import (
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type (
	CustomerID = shared.ID[Customer]
	AddressID  = shared.ID[CustomerAddress]
)

// Status is the account state of a customer.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

const maxPersonNameLength = 50

// Customer is a shopper registered with a tenant.
type Customer struct {
	shared.Entity[Customer]
	shared.EventBuffer
	shared.Audit
	shared.SoftDelete
	shared.Versioned

	clock           shared.Clock
	tenantID        shared.TenantID
	firstName       string
	lastName        string
	email           shared.Email
	phone           *shared.PhoneNumber
	status          Status
	blockReason     string
	loyalty         LoyaltyPoints
	addresses       []*CustomerAddress
	totalOrders     int
	totalSpent      *shared.Money
	lastOrderAt     *time.Time
	emailVerifiedAt *time.Time
}

func parseNames(first, last string) (string, string, error) {
	f, err := shared.RequireText("first_name", first, maxPersonNameLength)
	if err != nil {
		return "", "", err
	}
	l, err := shared.RequireText("last_name", last, maxPersonNameLength)
	if err != nil {
		return "", "", err
	}
	return f, l, nil
}

func parseOptionalPhone(phone string) (*shared.PhoneNumber, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, nil
	}
	p, err := shared.ParsePhoneNumber(phone)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RegisterCustomer creates an active customer with no points. phone may be
// empty.
func RegisterCustomer(clock shared.Clock, tenantID shared.TenantID, firstName, lastName, email, phone string) (*Customer, error) {
	if tenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	first, last, err := parseNames(firstName, lastName)
	if err != nil {
		return nil, err
	}
	e, err := shared.ParseEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := parseOptionalPhone(phone)
	if err != nil {
		return nil, err
	}
	c := &Customer{
		Entity:    shared.NewEntity[Customer](),
		clock:     shared.ClockOrSystem(clock),
		tenantID:  tenantID,
		firstName: first,
		lastName:  last,
		email:     e,
		phone:     p,
		status:    StatusActive,
	}
	c.AddEvent(CustomerRegistered{EventMeta: c.meta(), Email: e, FullName: c.FullName()})
	return c, nil
}

func (c *Customer) meta() shared.EventMeta {
	return shared.NewEventMeta(c.clock.UtcNow(), c.ID().String(), c.tenantID.String())
}

func (c *Customer) TenantID() shared.TenantID { return c.tenantID }
func (c *Customer) FirstName() string { return c.firstName }
func (c *Customer) LastName() string { return c.lastName }
func (c *Customer) Email() shared.Email { return c.email }
func (c *Customer) Status() Status { return c.status }
func (c *Customer) BlockReason() string { return c.blockReason }
func (c *Customer) LoyaltyPoints() LoyaltyPoints { return c.loyalty }
func (c *Customer) TotalOrders() int { return c.totalOrders }
func (c *Customer) IsActive() bool { return c.status == StatusActive }
func (c *Customer) IsEmailVerified() bool { return c.emailVerifiedAt != nil }
func (c *Customer) HasAddresses() bool { return len(c.addresses) > 0 }
func (c *Customer) Addresses() []*CustomerAddress { return slices.Clone(c.addresses) }

func (c *Customer) FullName() string { return c.firstName + " " + c.lastName }

func (c *Customer) Phone() (shared.PhoneNumber, bool) {
	if c.phone == nil {
		return "", false
	}
	return *c.phone, true
}

// TotalSpent is the sum of recorded order totals. It is unset until the first
// order.
func (c *Customer) TotalSpent() (shared.Money, bool) {
	if c.totalSpent == nil {
		return shared.Money{}, false
	}
	return *c.totalSpent, true
}

func (c *Customer) LastOrderAt() (time.Time, bool) {
	if c.lastOrderAt == nil {
		return time.Time{}, false
	}
	return *c.lastOrderAt, true
}

func (c *Customer) UpdateProfile(firstName, lastName, phone string) error {
	first, last, err := parseNames(firstName, lastName)
	if err != nil {
		return err
	}
	p, err := parseOptionalPhone(phone)
	if err != nil {
		return err
	}
	c.firstName, c.lastName, c.phone = first, last, p
	return nil
}

// AddAddress appends an address. The first address is always the default,
// and a new default replaces the previous one.
func (c *Customer) AddAddress(p NewAddressParams) (*CustomerAddress, error) {
	addr, err := newCustomerAddress(p)
	if err != nil {
		return nil, err
	}
	if p.Default || len(c.addresses) == 0 {
		c.clearDefault()
		addr.isDefault = true
	}
	c.addresses = append(c.addresses, addr)
	c.AddEvent(CustomerAddressAdded{EventMeta: c.meta(), AddressID: addr.ID()})
	return addr, nil
}

func (c *Customer) clearDefault() {
	for _, a := range c.addresses {
		a.isDefault = false
	}
}

func (c *Customer) Address(id AddressID) (*CustomerAddress, error) {
	for _, a := range c.addresses {
		if a.ID() == id {
			return a, nil
		}
	}
	return nil, &shared.NotFoundError{Entity: "address", ID: id.String()}
}

// RemoveAddress deletes an address. If it was the default, the first
// remaining address takes over.
func (c *Customer) RemoveAddress(id AddressID) error {
	idx := slices.IndexFunc(c.addresses, func(a *CustomerAddress) bool { return a.ID() == id })
	if idx < 0 {
		return &shared.NotFoundError{Entity: "address", ID: id.String()}
	}
	removed := c.addresses[idx]
	c.addresses = slices.Delete(c.addresses, idx, idx+1)
	if removed.isDefault && len(c.addresses) > 0 {
		c.addresses[0].isDefault = true
	}
	return nil
}

func (c *Customer) SetDefaultAddress(id AddressID) error {
	addr, err := c.Address(id)
	if err != nil {
		return err
	}
	c.clearDefault()
	addr.isDefault = true
	return nil
}

func (c *Customer) DefaultAddress() (*CustomerAddress, bool) {
	for _, a := range c.addresses {
		if a.isDefault {
			return a, true
		}
	}
	return nil, false
}

// VerifyEmail marks the email as confirmed. Repeating it keeps the first
// verification time.
func (c *Customer) VerifyEmail() {
	if c.emailVerifiedAt != nil {
		return
	}
	now := c.clock.UtcNow()
	c.emailVerifiedAt = &now
}

func (c *Customer) AddLoyaltyPoints(n int) error {
	next, err := c.loyalty.Add(n)
	if err != nil {
		return err
	}
	c.loyalty = next
	return nil
}

func (c *Customer) RedeemLoyaltyPoints(n int) error {
	next, err := c.loyalty.Subtract(n)
	if err != nil {
		return err
	}
	c.loyalty = next
	return nil
}

// RecordOrder adds a placed order to the purchase history.
func (c *Customer) RecordOrder(total shared.Money) error {
	spent := total
	if c.totalSpent != nil {
		sum, err := c.totalSpent.Add(total)
		if err != nil {
			return err
		}
		spent = sum
	}
	now := c.clock.UtcNow()
	c.totalSpent = &spent
	c.totalOrders++
	c.lastOrderAt = &now
	return nil
}

func (c *Customer) Block(reason string) error {
	if c.status == StatusBlocked {
		return &shared.StateError{Entity: "customer", Action: "block", Reason: "already blocked"}
	}
	c.status = StatusBlocked
	c.blockReason = strings.TrimSpace(reason)
	return nil
}

func (c *Customer) Unblock() error {
	if c.status != StatusBlocked {
		return &shared.StateError{Entity: "customer", Action: "unblock", Reason: "not blocked"}
	}
	c.status = StatusActive
	c.blockReason = ""
	return nil
}

func (c *Customer) Deactivate() { c.status = StatusInactive }

func (c *Customer) Activate() { c.status = StatusActive }

// CustomerSnapshot is the persisted form of a Customer.
type CustomerSnapshot struct {
	ID              CustomerID            `json:"id"`
	TenantID        shared.TenantID       `json:"tenant_id"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	Email           shared.Email          `json:"email"`
	Phone           *shared.PhoneNumber   `json:"phone,omitempty"`
	Status          Status                `json:"status"`
	BlockReason     string                `json:"block_reason,omitempty"`
	LoyaltyPoints   LoyaltyPoints         `json:"loyalty_points"`
	Addresses       []AddressSnapshot     `json:"addresses"`
	TotalOrders     int                   `json:"total_orders"`
	TotalSpent      *shared.Money         `json:"total_spent,omitempty"`
	LastOrderAt     *time.Time            `json:"last_order_at,omitempty"`
	EmailVerifiedAt *time.Time            `json:"email_verified_at,omitempty"`
	Audit           shared.AuditRecord    `json:"audit"`
	Deletion        shared.DeletionRecord `json:"deletion"`
}

func (c *Customer) Snapshot() CustomerSnapshot {
	addrs := make([]AddressSnapshot, len(c.addresses))
	for i, a := range c.addresses {
		addrs[i] = a.snapshot()
	}
	return CustomerSnapshot{
		ID:              c.ID(),
		TenantID:        c.tenantID,
		FirstName:       c.firstName,
		LastName:        c.lastName,
		Email:           c.email,
		Phone:           c.phone,
		Status:          c.status,
		BlockReason:     c.blockReason,
		LoyaltyPoints:   c.loyalty,
		Addresses:       addrs,
		TotalOrders:     c.totalOrders,
		TotalSpent:      c.totalSpent,
		LastOrderAt:     c.lastOrderAt,
		EmailVerifiedAt: c.emailVerifiedAt,
		Audit:           c.Audit.Snapshot(),
		Deletion:        c.SoftDelete.Snapshot(),
	}
}

func RestoreCustomer(clock shared.Clock, s CustomerSnapshot) (*Customer, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	addrs := make([]*CustomerAddress, 0, len(s.Addresses))
	for _, as := range s.Addresses {
		a, err := restoreCustomerAddress(as)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return &Customer{
		Entity:          entity,
		Audit:           shared.RestoreAudit(s.Audit),
		SoftDelete:      shared.RestoreSoftDelete(s.Deletion),
		clock:           shared.ClockOrSystem(clock),
		tenantID:        s.TenantID,
		firstName:       s.FirstName,
		lastName:        s.LastName,
		email:           s.Email,
		phone:           s.Phone,
		status:          s.Status,
		blockReason:     s.BlockReason,
		loyalty:         s.LoyaltyPoints,
		addresses:       addrs,
		totalOrders:     s.TotalOrders,
		totalSpent:      s.TotalSpent,
		lastOrderAt:     s.LastOrderAt,
		emailVerifiedAt: s.EmailVerifiedAt,
	}, nil
}
