package catalog

import (
	"net/url"
	"strings"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

const maxTaxonomyNameLength = 100

// Category groups products in a tree.
type Category struct {
	shared.Entity[CategoryRef]
	shared.Audit
	shared.SoftDelete
	shared.Versioned

	tenantID     shared.TenantID
	name         string
	slug         shared.Slug
	description  string
	parentID     *CategoryID
	displayOrder int
	imageURL     string
	icon         string
	active       bool
}

func NewCategory(tenantID shared.TenantID, name, slug, description string) (*Category, error) {
	if tenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	n, s, err := parseNameAndSlug(name, slug)
	if err != nil {
		return nil, err
	}
	return &Category{
		Entity:      shared.NewEntity[CategoryRef](),
		tenantID:    tenantID,
		name:        n,
		slug:        s,
		description: strings.TrimSpace(description),
		active:      true,
	}, nil
}

func parseNameAndSlug(name, slug string) (string, shared.Slug, error) {
	n, err := shared.RequireText("name", name, maxTaxonomyNameLength)
	if err != nil {
		return "", "", err
	}
	s, err := shared.ParseSlug(slug)
	if err != nil {
		return "", "", err
	}
	return n, s, nil
}

func (c *Category) TenantID() shared.TenantID { return c.tenantID }
func (c *Category) Name() string { return c.name }
func (c *Category) Slug() shared.Slug { return c.slug }
func (c *Category) Description() string { return c.description }
func (c *Category) DisplayOrder() int { return c.displayOrder }
func (c *Category) ImageURL() string { return c.imageURL }
func (c *Category) Icon() string { return c.icon }
func (c *Category) IsActive() bool { return c.active }

func (c *Category) ParentID() (CategoryID, bool) {
	if c.parentID == nil {
		return CategoryID{}, false
	}
	return *c.parentID, true
}

func (c *Category) UpdateDetails(name, slug, description string) error {
	n, s, err := parseNameAndSlug(name, slug)
	if err != nil {
		return err
	}
	c.name, c.slug, c.description = n, s, strings.TrimSpace(description)
	return nil
}

// SetParent nests the category under another. A category cannot be its own
// parent.
func (c *Category) SetParent(parent CategoryID) error {
	if parent.IsZero() {
		return &shared.ValidationError{Field: "parent_id", Reason: "is required"}
	}
	if parent == c.ID() {
		return &shared.ValidationError{Field: "parent_id", Reason: "category cannot be its own parent"}
	}
	c.parentID = &parent
	return nil
}

func (c *Category) ClearParent() { c.parentID = nil }

func (c *Category) SetDisplayOrder(order int) error {
	if order < 0 {
		return &shared.ValidationError{Field: "display_order", Reason: "must not be negative"}
	}
	c.displayOrder = order
	return nil
}

func (c *Category) SetImage(url string) { c.imageURL = strings.TrimSpace(url) }
func (c *Category) SetIcon(icon string) { c.icon = strings.TrimSpace(icon) }
func (c *Category) Activate() { c.active = true }
func (c *Category) Deactivate() { c.active = false }

// CategorySnapshot is the persisted form of a Category.
type CategorySnapshot struct {
	ID           CategoryID            `json:"id"`
	TenantID     shared.TenantID       `json:"tenant_id"`
	Name         string                `json:"name"`
	Slug         shared.Slug           `json:"slug"`
	Description  string                `json:"description,omitempty"`
	ParentID     *CategoryID           `json:"parent_id,omitempty"`
	DisplayOrder int                   `json:"display_order"`
	ImageURL     string                `json:"image_url,omitempty"`
	Icon         string                `json:"icon,omitempty"`
	Active       bool                  `json:"active"`
	Audit        shared.AuditRecord    `json:"audit"`
	Deletion     shared.DeletionRecord `json:"deletion"`
}

func (c *Category) Snapshot() CategorySnapshot {
	return CategorySnapshot{
		ID:           c.ID(),
		TenantID:     c.tenantID,
		Name:         c.name,
		Slug:         c.slug,
		Description:  c.description,
		ParentID:     c.parentID,
		DisplayOrder: c.displayOrder,
		ImageURL:     c.imageURL,
		Icon:         c.icon,
		Active:       c.active,
		Audit:        c.Audit.Snapshot(),
		Deletion:     c.SoftDelete.Snapshot(),
	}
}

func RestoreCategory(s CategorySnapshot) (*Category, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &Category{
		Entity:       entity,
		Audit:        shared.RestoreAudit(s.Audit),
		SoftDelete:   shared.RestoreSoftDelete(s.Deletion),
		tenantID:     s.TenantID,
		name:         s.Name,
		slug:         s.Slug,
		description:  s.Description,
		parentID:     s.ParentID,
		displayOrder: s.DisplayOrder,
		imageURL:     s.ImageURL,
		icon:         s.Icon,
		active:       s.Active,
	}, nil
}

// Brand is the manufacturer or label of a product.
type Brand struct {
	shared.Entity[Brand]
	shared.Audit
	shared.SoftDelete
	shared.Versioned

	tenantID    shared.TenantID
	name        string
	slug        shared.Slug
	description string
	logoURL     string
	website     string
	active      bool
}

func NewBrand(tenantID shared.TenantID, name, slug, description string) (*Brand, error) {
	if tenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	n, s, err := parseNameAndSlug(name, slug)
	if err != nil {
		return nil, err
	}
	return &Brand{
		Entity:      shared.NewEntity[Brand](),
		tenantID:    tenantID,
		name:        n,
		slug:        s,
		description: strings.TrimSpace(description),
		active:      true,
	}, nil
}

func (b *Brand) TenantID() shared.TenantID { return b.tenantID }
func (b *Brand) Name() string { return b.name }
func (b *Brand) Slug() shared.Slug { return b.slug }
func (b *Brand) Description() string { return b.description }
func (b *Brand) LogoURL() string { return b.logoURL }
func (b *Brand) Website() string { return b.website }
func (b *Brand) IsActive() bool { return b.active }

func (b *Brand) UpdateDetails(name, slug, description string) error {
	n, s, err := parseNameAndSlug(name, slug)
	if err != nil {
		return err
	}
	b.name, b.slug, b.description = n, s, strings.TrimSpace(description)
	return nil
}

func (b *Brand) SetLogo(url string) { b.logoURL = strings.TrimSpace(url) }

// SetWebsite accepts an absolute http or https URL. An empty string clears it.
func (b *Brand) SetWebsite(website string) error {
	website = strings.TrimSpace(website)
	if website == "" {
		b.website = ""
		return nil
	}
	u, err := url.Parse(website)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &shared.ValidationError{Field: "website", Reason: "must be an absolute http(s) URL"}
	}
	b.website = website
	return nil
}

func (b *Brand) Activate() { b.active = true }
func (b *Brand) Deactivate() { b.active = false }

// BrandSnapshot is the persisted form of a Brand.
type BrandSnapshot struct {
	ID          BrandID               `json:"id"`
	TenantID    shared.TenantID       `json:"tenant_id"`
	Name        string                `json:"name"`
	Slug        shared.Slug           `json:"slug"`
	Description string                `json:"description,omitempty"`
	LogoURL     string                `json:"logo_url,omitempty"`
	Website     string                `json:"website,omitempty"`
	Active      bool                  `json:"active"`
	Audit       shared.AuditRecord    `json:"audit"`
	Deletion    shared.DeletionRecord `json:"deletion"`
}

func (b *Brand) Snapshot() BrandSnapshot {
	return BrandSnapshot{
		ID:          b.ID(),
		TenantID:    b.tenantID,
		Name:        b.name,
		Slug:        b.slug,
		Description: b.description,
		LogoURL:     b.logoURL,
		Website:     b.website,
		Active:      b.active,
		Audit:       b.Audit.Snapshot(),
		Deletion:    b.SoftDelete.Snapshot(),
	}
}

func RestoreBrand(s BrandSnapshot) (*Brand, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &Brand{
		Entity:      entity,
		Audit:       shared.RestoreAudit(s.Audit),
		SoftDelete:  shared.RestoreSoftDelete(s.Deletion),
		tenantID:    s.TenantID,
		name:        s.Name,
		slug:        s.Slug,
		description: s.Description,
		logoURL:     s.LogoURL,
		website:     s.Website,
		active:      s.Active,
	}, nil
}
