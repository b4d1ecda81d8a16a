package tenant

import (
	"strings"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type TenantID = shared.TenantID

// Status represents the lifecycle state of a tenant.
type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// Event represents an action that triggers a state transition.
type Event string

const (
	EventActivate Event = "activate"
	EventSuspend  Event = "suspend"
	EventCancel   Event = "cancel"
)

// Transitions defines all valid state changes in the tenant lifecycle.
var Transitions = []shared.Transition[Status, Event]{
	{Event: EventActivate, Src: StatusTrial, Dst: StatusActive},
	{Event: EventActivate, Src: StatusSuspended, Dst: StatusActive},
	{Event: EventSuspend, Src: StatusTrial, Dst: StatusSuspended},
	{Event: EventSuspend, Src: StatusActive, Dst: StatusSuspended},
	{Event: EventCancel, Src: StatusTrial, Dst: StatusCancelled},
	{Event: EventCancel, Src: StatusActive, Dst: StatusCancelled},
	{Event: EventCancel, Src: StatusSuspended, Dst: StatusCancelled},
}

var lifecycle = shared.NewLifecycle(Transitions)

// Plan is a subscription tier. Plans are ordered from Free to Enterprise.
type Plan string

const (
	PlanFree         Plan = "free"
	PlanBasic        Plan = "basic"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

var planRank = map[Plan]int{
	PlanFree:         0,
	PlanBasic:        1,
	PlanProfessional: 2,
	PlanEnterprise:   3,
}

func (p Plan) Valid() bool {
	_, ok := planRank[p]
	return ok
}

// Compare returns -1, 0 or +1 as p is below, equal to or above other.
func (p Plan) Compare(other Plan) int {
	a, b := planRank[p], planRank[other]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

const (
	maxTenantNameLength = 100
	trialPeriod         = 30 * 24 * time.Hour
)

// Tenant is an organization operating a store on the platform.
type Tenant struct {
	shared.Entity[shared.TenantRef]
	shared.EventBuffer
	shared.Audit
	shared.Versioned

	clock       shared.Clock
	name        string
	slug        shared.Slug
	vertical    Vertical
	status      Status
	settings    Settings
	ownerEmail  shared.Email
	ownerName   string
	plan        Plan
	trialEndsAt *time.Time
}

// NewTenant creates a tenant on a free trial with the preset settings of
// vertical.
func NewTenant(clock shared.Clock, name, slug, ownerEmail, ownerName string, vertical Vertical) (*Tenant, error) {
	n, err := shared.RequireText("name", name, maxTenantNameLength)
	if err != nil {
		return nil, err
	}
	sl, err := shared.ParseSlug(strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	owner, err := shared.RequireText("owner_name", ownerName, 0)
	if err != nil {
		return nil, err
	}
	email, err := shared.ParseEmail(ownerEmail)
	if err != nil {
		return nil, err
	}
	if !vertical.Valid() {
		return nil, &shared.ValidationError{Field: "vertical", Reason: "unknown vertical " + string(vertical)}
	}

	clock = shared.ClockOrSystem(clock)
	trialEnds := clock.UtcNow().Add(trialPeriod)
	t := &Tenant{
		Entity:      shared.NewEntity[shared.TenantRef](),
		clock:       clock,
		name:        n,
		slug:        sl,
		vertical:    vertical,
		status:      StatusTrial,
		settings:    DefaultSettings(vertical),
		ownerEmail:  email,
		ownerName:   owner,
		plan:        PlanFree,
		trialEndsAt: &trialEnds,
	}
	t.AddEvent(TenantCreated{EventMeta: t.meta(), Name: n, Vertical: vertical})
	return t, nil
}

func (t *Tenant) meta() shared.EventMeta {
	id := t.ID().String()
	return shared.NewEventMeta(t.clock.UtcNow(), id, id)
}

func (t *Tenant) Name() string { return t.name }
func (t *Tenant) Slug() shared.Slug { return t.slug }
func (t *Tenant) Vertical() Vertical { return t.vertical }
func (t *Tenant) Status() Status { return t.status }
func (t *Tenant) Settings() Settings { return t.settings }
func (t *Tenant) OwnerEmail() shared.Email { return t.ownerEmail }
func (t *Tenant) OwnerName() string { return t.ownerName }
func (t *Tenant) Plan() Plan { return t.plan }

func (t *Tenant) TrialEndsAt() (time.Time, bool) {
	if t.trialEndsAt == nil {
		return time.Time{}, false
	}
	return *t.trialEndsAt, true
}

// IsTrialExpired reports whether a trial tenant is past its trial end.
func (t *Tenant) IsTrialExpired() bool {
	return t.status == StatusTrial && t.trialEndsAt != nil && t.trialEndsAt.Before(t.clock.UtcNow())
}

func (t *Tenant) fire(event Event) error {
	next, err := lifecycle.Apply(t.status, event)
	if err != nil {
		return err
	}
	t.status = next
	return nil
}

func (t *Tenant) Activate() error {
	if err := t.fire(EventActivate); err != nil {
		return err
	}
	t.AddEvent(TenantActivated{EventMeta: t.meta()})
	return nil
}

func (t *Tenant) Suspend(reason string) error {
	r, err := shared.RequireText("reason", reason, 500)
	if err != nil {
		return err
	}
	if err := t.fire(EventSuspend); err != nil {
		return err
	}
	t.AddEvent(TenantSuspended{EventMeta: t.meta(), Reason: r})
	return nil
}

func (t *Tenant) Cancel() error {
	if err := t.fire(EventCancel); err != nil {
		return err
	}
	t.AddEvent(TenantCancelled{EventMeta: t.meta()})
	return nil
}

func (t *Tenant) Rename(name string) error {
	n, err := shared.RequireText("name", name, maxTenantNameLength)
	if err != nil {
		return err
	}
	t.name = n
	return nil
}

func (t *Tenant) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.StoreName = strings.TrimSpace(s.StoreName)
	s.DefaultCurrency = strings.ToUpper(s.DefaultCurrency)
	t.settings = s
	t.AddEvent(TenantSettingsUpdated{EventMeta: t.meta()})
	return nil
}

// UpgradePlan moves to a higher plan and ends the trial period.
func (t *Tenant) UpgradePlan(p Plan) error {
	if !p.Valid() {
		return &shared.ValidationError{Field: "plan", Reason: "unknown plan " + string(p)}
	}
	if p.Compare(t.plan) <= 0 {
		return &shared.StateError{Entity: "tenant", Action: "upgrade plan", Reason: "new plan must be above " + string(t.plan)}
	}
	old := t.plan
	t.plan = p
	t.trialEndsAt = nil
	t.AddEvent(TenantPlanChanged{EventMeta: t.meta(), OldPlan: old, NewPlan: p})
	return nil
}

func (t *Tenant) DowngradePlan(p Plan) error {
	if !p.Valid() {
		return &shared.ValidationError{Field: "plan", Reason: "unknown plan " + string(p)}
	}
	if p.Compare(t.plan) >= 0 {
		return &shared.StateError{Entity: "tenant", Action: "downgrade plan", Reason: "new plan must be below " + string(t.plan)}
	}
	old := t.plan
	t.plan = p
	t.AddEvent(TenantPlanChanged{EventMeta: t.meta(), OldPlan: old, NewPlan: p})
	return nil
}

// Snapshot is the persisted form of a Tenant.
type Snapshot struct {
	ID          TenantID           `json:"id"`
	Name        string             `json:"name"`
	Slug        shared.Slug        `json:"slug"`
	Vertical    Vertical           `json:"vertical"`
	Status      Status             `json:"status"`
	Settings    Settings           `json:"settings"`
	OwnerEmail  shared.Email       `json:"owner_email"`
	OwnerName   string             `json:"owner_name"`
	Plan        Plan               `json:"plan"`
	TrialEndsAt *time.Time         `json:"trial_ends_at,omitempty"`
	Audit       shared.AuditRecord `json:"audit"`
}

func (t *Tenant) Snapshot() Snapshot {
	return Snapshot{
		ID:          t.ID(),
		Name:        t.name,
		Slug:        t.slug,
		Vertical:    t.vertical,
		Status:      t.status,
		Settings:    t.settings,
		OwnerEmail:  t.ownerEmail,
		OwnerName:   t.ownerName,
		Plan:        t.plan,
		TrialEndsAt: t.trialEndsAt,
		Audit:       t.Audit.Snapshot(),
	}
}

func Restore(clock shared.Clock, s Snapshot) (*Tenant, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &Tenant{
		Entity:      entity,
		Audit:       shared.RestoreAudit(s.Audit),
		clock:       shared.ClockOrSystem(clock),
		name:        s.Name,
		slug:        s.Slug,
		vertical:    s.Vertical,
		status:      s.Status,
		settings:    s.Settings,
		ownerEmail:  s.OwnerEmail,
		ownerName:   s.OwnerName,
		plan:        s.Plan,
		trialEndsAt: s.TrialEndsAt,
	}, nil
}
