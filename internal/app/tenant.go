package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// TenantService orchestrates tenant lifecycle operations.
type TenantService struct {
	pipeline *uow.Pipeline
	tenants  tenant.Repository
	clock    shared.Clock
}

func NewTenantService(pipeline *uow.Pipeline, tenants tenant.Repository, clock shared.Clock) *TenantService {
	return &TenantService{pipeline: pipeline, tenants: tenants, clock: shared.ClockOrSystem(clock)}
}

type CreateTenantCommand struct {
	Name       string
	Slug       string
	OwnerEmail string
	OwnerName  string
	Vertical   tenant.Vertical
}

// Create registers a new tenant on a free trial.
func (s *TenantService) Create(ctx context.Context, cmd CreateTenantCommand) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CreateTenantCommand) (*tenant.Tenant, error) {
		t, err := tenant.NewTenant(s.clock, cmd.Name, cmd.Slug, cmd.OwnerEmail, cmd.OwnerName, cmd.Vertical)
		if err != nil {
			return nil, err
		}

		// Check slug uniqueness before creating.
		_, err = s.tenants.GetBySlug(ctx, t.Slug())
		switch {
		case err == nil:
			return nil, &shared.DuplicateError{Entity: "tenant", Field: "slug", Value: t.Slug().String()}
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("checking slug: %w", err)
		}

		if err := s.tenants.Add(ctx, t); err != nil {
			return nil, fmt.Errorf("adding tenant: %w", err)
		}
		return t, nil
	})
}

type ActivateTenantCommand struct{ ID tenant.TenantID }

func (s *TenantService) Activate(ctx context.Context, cmd ActivateTenantCommand) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ActivateTenantCommand) (*tenant.Tenant, error) {
		return s.mutate(ctx, cmd.ID, (*tenant.Tenant).Activate)
	})
}

type SuspendTenantCommand struct {
	ID     tenant.TenantID
	Reason string
}

func (s *TenantService) Suspend(ctx context.Context, cmd SuspendTenantCommand) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd SuspendTenantCommand) (*tenant.Tenant, error) {
		return s.mutate(ctx, cmd.ID, func(t *tenant.Tenant) error { return t.Suspend(cmd.Reason) })
	})
}

type CancelTenantCommand struct{ ID tenant.TenantID }

func (s *TenantService) Cancel(ctx context.Context, cmd CancelTenantCommand) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CancelTenantCommand) (*tenant.Tenant, error) {
		return s.mutate(ctx, cmd.ID, (*tenant.Tenant).Cancel)
	})
}

// Transition applies a lifecycle event to a tenant, changing its state.
func (s *TenantService) Transition(ctx context.Context, id tenant.TenantID, event tenant.Event, reason string) (*tenant.Tenant, error) {
	switch event {
	case tenant.EventActivate:
		return s.Activate(ctx, ActivateTenantCommand{ID: id})
	case tenant.EventSuspend:
		return s.Suspend(ctx, SuspendTenantCommand{ID: id, Reason: reason})
	case tenant.EventCancel:
		return s.Cancel(ctx, CancelTenantCommand{ID: id})
	default:
		return nil, &shared.ValidationError{Field: "event", Reason: fmt.Sprintf("unknown event %q", event)}
	}
}

type ChangePlanCommand struct {
	ID   tenant.TenantID
	Plan tenant.Plan
}

// ChangePlan upgrades or downgrades depending on where Plan sits relative to
// the current plan.
func (s *TenantService) ChangePlan(ctx context.Context, cmd ChangePlanCommand) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ChangePlanCommand) (*tenant.Tenant, error) {
		return s.mutate(ctx, cmd.ID, func(t *tenant.Tenant) error {
			if cmd.Plan.Compare(t.Plan()) < 0 {
				return t.DowngradePlan(cmd.Plan)
			}
			return t.UpgradePlan(cmd.Plan)
		})
	})
}

type UpdateSettingsCommand struct {
	ID       tenant.TenantID
	Settings tenant.Settings
}

func (s *TenantService) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd UpdateSettingsCommand) (*tenant.Tenant, error) {
		return s.mutate(ctx, cmd.ID, func(t *tenant.Tenant) error { return t.UpdateSettings(cmd.Settings) })
	})
}

type GetTenantQuery struct{ ID tenant.TenantID }

func (s *TenantService) Get(ctx context.Context, q GetTenantQuery) (*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetTenantQuery) (*tenant.Tenant, error) {
		return s.tenants.GetByID(ctx, q.ID)
	})
}

type ListTenantsQuery struct {
	Status *tenant.Status
	Limit  int
	Offset int
}

func (s *TenantService) List(ctx context.Context, q ListTenantsQuery) ([]*tenant.Tenant, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q ListTenantsQuery) ([]*tenant.Tenant, error) {
		query := shared.Query{}.Sorted("created_at", false).Page(q.Limit, q.Offset)
		if q.Status != nil {
			query.Where = append(query.Where, shared.Eq("status", string(*q.Status)))
		}
		return s.tenants.Find(ctx, query)
	})
}

func (s *TenantService) mutate(ctx context.Context, id tenant.TenantID, fn func(*tenant.Tenant) error) (*tenant.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating tenant: %w", err)
	}
	return t, nil
}
