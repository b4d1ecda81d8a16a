package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID          string       `json:"id" doc:"Unique identifier"`
	Name        string       `json:"name" doc:"Display name"`
	Slug        string       `json:"slug" doc:"URL-friendly identifier"`
	Vertical    string       `json:"vertical" doc:"Business vertical"`
	Status      string       `json:"status" doc:"Lifecycle state"`
	Plan        string       `json:"plan" doc:"Subscription plan"`
	OwnerEmail  string       `json:"owner_email"`
	OwnerName   string       `json:"owner_name"`
	TrialEndsAt string       `json:"trial_ends_at,omitempty" doc:"End of the trial period (ISO 8601)"`
	Settings    SettingsBody `json:"settings"`
	Version     int          `json:"version" doc:"Optimistic concurrency version"`
	CreatedAt   string       `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string       `json:"updated_at,omitempty" doc:"Last update timestamp (ISO 8601)"`
}

// SettingsBody is the storefront configuration on the wire.
type SettingsBody struct {
	StoreName                string          `json:"store_name" minLength:"1" maxLength:"200"`
	StoreDescription         string          `json:"store_description,omitempty" required:"false"`
	DefaultCurrency          string          `json:"default_currency" minLength:"3" maxLength:"3"`
	DefaultLanguage          string          `json:"default_language" minLength:"2" maxLength:"10"`
	TimeZone                 string          `json:"time_zone"`
	AllowGuestCheckout       bool            `json:"allow_guest_checkout"`
	RequireEmailVerification bool            `json:"require_email_verification"`
	MinimumOrderAmount       string          `json:"minimum_order_amount" pattern:"^[0-9]+(\\.[0-9]+)?$"`
	Features                 tenant.Features `json:"features"`
}

func toSettingsBody(s tenant.Settings) SettingsBody {
	return SettingsBody{
		StoreName:                s.StoreName,
		StoreDescription:         s.StoreDescription,
		DefaultCurrency:          s.DefaultCurrency,
		DefaultLanguage:          s.DefaultLanguage,
		TimeZone:                 s.TimeZone,
		AllowGuestCheckout:       s.AllowGuestCheckout,
		RequireEmailVerification: s.RequireEmailVerification,
		MinimumOrderAmount:       s.MinimumOrderAmount.StringFixed(2),
		Features:                 s.Features,
	}
}

func (b SettingsBody) settings() (tenant.Settings, error) {
	minimum, err := decimal.NewFromString(b.MinimumOrderAmount)
	if err != nil {
		return tenant.Settings{}, huma.Error422UnprocessableEntity("minimum_order_amount: not a decimal")
	}
	return tenant.Settings{
		Features:                 b.Features,
		AllowGuestCheckout:       b.AllowGuestCheckout,
		RequireEmailVerification: b.RequireEmailVerification,
		MinimumOrderAmount:       minimum,
		StoreName:                b.StoreName,
		StoreDescription:         b.StoreDescription,
		DefaultCurrency:          b.DefaultCurrency,
		DefaultLanguage:          b.DefaultLanguage,
		TimeZone:                 b.TimeZone,
	}, nil
}

func toTenantResponse(t *tenant.Tenant) TenantResponse {
	resp := TenantResponse{
		ID:         t.ID().String(),
		Name:       t.Name(),
		Slug:       t.Slug().String(),
		Vertical:   string(t.Vertical()),
		Status:     string(t.Status()),
		Plan:       string(t.Plan()),
		OwnerEmail: t.OwnerEmail().String(),
		OwnerName:  t.OwnerName(),
		Settings:   toSettingsBody(t.Settings()),
		Version:    t.Version(),
		CreatedAt:  t.CreatedAt().Format(timeLayout),
	}
	if at, ok := t.TrialEndsAt(); ok {
		resp.TrialEndsAt = at.Format(timeLayout)
	}
	if at, ok := t.UpdatedAt(); ok {
		resp.UpdatedAt = at.Format(timeLayout)
	}
	return resp
}

type CreateTenantInput struct {
	Body struct {
		Name       string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Slug       string `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"URL-friendly identifier (lowercase, hyphens)"`
		OwnerEmail string `json:"owner_email" format:"email"`
		OwnerName  string `json:"owner_name" minLength:"1"`
		Vertical   string `json:"vertical,omitempty" default:"retail" enum:"retail,food_and_beverage,services,pharmacy,b2b_wholesale,digital_products,marketplace" doc:"Business vertical"`
	}
}

type TenantOutput struct {
	Body TenantResponse
}

type TenantIDInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type ListTenantsInput struct {
	Status string `query:"status" required:"false" enum:"trial,active,suspended,cancelled" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"200" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

type TransitionTenantInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		Event  string `json:"event" enum:"activate,suspend,cancel" doc:"Lifecycle event to trigger"`
		Reason string `json:"reason,omitempty" required:"false" doc:"Required when suspending"`
	}
}

type ChangePlanInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		Plan string `json:"plan" enum:"free,basic,professional,enterprise"`
	}
}

type UpdateSettingsInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body SettingsBody
}

func registerTenants(api huma.API, svc *app.TenantService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/api/v1/tenants",
		Summary:       "Create a new tenant",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*TenantOutput, error) {
		t, err := svc.Create(ctx, app.CreateTenantCommand{
			Name:       input.Body.Name,
			Slug:       input.Body.Slug,
			OwnerEmail: input.Body.OwnerEmail,
			OwnerName:  input.Body.OwnerName,
			Vertical:   tenant.Vertical(input.Body.Vertical),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantIDInput) (*TenantOutput, error) {
		id, err := parseID[shared.TenantRef]("id", input.ID)
		if err != nil {
			return nil, err
		}
		t, err := svc.Get(ctx, app.GetTenantQuery{ID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		q := app.ListTenantsQuery{Limit: input.Limit, Offset: input.Offset}
		if input.Status != "" {
			s := tenant.Status(input.Status)
			q.Status = &s
		}
		tenants, err := svc.List(ctx, q)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/events",
		Summary:     "Trigger a lifecycle event",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TransitionTenantInput) (*TenantOutput, error) {
		id, err := parseID[shared.TenantRef]("id", input.ID)
		if err != nil {
			return nil, err
		}
		t, err := svc.Transition(ctx, id, tenant.Event(input.Body.Event), input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-tenant-plan",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{id}/plan",
		Summary:     "Upgrade or downgrade the subscription plan",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ChangePlanInput) (*TenantOutput, error) {
		id, err := parseID[shared.TenantRef]("id", input.ID)
		if err != nil {
			return nil, err
		}
		t, err := svc.ChangePlan(ctx, app.ChangePlanCommand{ID: id, Plan: tenant.Plan(input.Body.Plan)})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant-settings",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{id}/settings",
		Summary:     "Replace the storefront settings",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateSettingsInput) (*TenantOutput, error) {
		id, err := parseID[shared.TenantRef]("id", input.ID)
		if err != nil {
			return nil, err
		}
		settings, err := input.Body.settings()
		if err != nil {
			return nil, err
		}
		t, err := svc.UpdateSettings(ctx, app.UpdateSettingsCommand{ID: id, Settings: settings})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(t)}, nil
	})
}
