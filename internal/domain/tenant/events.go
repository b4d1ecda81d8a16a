package tenant

import "github.com/neomorfeo/nexcart/internal/domain/shared"

type TenantCreated struct {
	shared.EventMeta
	Name     string   `json:"name"`
	Vertical Vertical `json:"vertical"`
}

func (TenantCreated) EventName() string { return "tenant.created" }

type TenantActivated struct {
	shared.EventMeta
}

func (TenantActivated) EventName() string { return "tenant.activated" }

type TenantSuspended struct {
	shared.EventMeta
	Reason string `json:"reason"`
}

func (TenantSuspended) EventName() string { return "tenant.suspended" }

type TenantCancelled struct {
	shared.EventMeta
}

func (TenantCancelled) EventName() string { return "tenant.cancelled" }

type TenantSettingsUpdated struct {
	shared.EventMeta
}

func (TenantSettingsUpdated) EventName() string { return "tenant.settings_updated" }

type TenantPlanChanged struct {
	shared.EventMeta
	OldPlan Plan `json:"old_plan"`
	NewPlan Plan `json:"new_plan"`
}

func (TenantPlanChanged) EventName() string { return "tenant.plan_changed" }
