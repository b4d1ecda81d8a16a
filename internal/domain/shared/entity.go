package shared

import (
	"slices"
	"time"
)

// Entity is the identity core embedded by every entity and aggregate root.
type Entity[T any] struct {
	id ID[T]
}

// NewEntity returns an entity core with a freshly generated identifier.
func NewEntity[T any]() Entity[T] {
	return Entity[T]{id: NewID[T]()}
}

// EntityOf returns an entity core for an existing identifier.
func EntityOf[T any](id ID[T]) (Entity[T], error) {
	if id.IsZero() {
		return Entity[T]{}, invalid("id", "must not be empty")
	}
	return Entity[T]{id: id}, nil
}

func (e Entity[T]) ID() ID[T] { return e.id }

// SameAs reports identity equality. Entities of different types never compare
// because the type parameter must match.
func (e Entity[T]) SameAs(other Entity[T]) bool {
	return !e.id.IsZero() && e.id == other.id
}

// EventBuffer holds the domain events raised by an aggregate until the unit of
// work drains them. It is not safe for concurrent use; an aggregate instance
// belongs to a single unit of work.
type EventBuffer struct {
	pending []DomainEvent
}

// AddEvent appends e to the pending sequence.
func (b *EventBuffer) AddEvent(e DomainEvent) {
	b.pending = append(b.pending, e)
}

// DrainEvents returns the pending events in order and clears the buffer.
func (b *EventBuffer) DrainEvents() []DomainEvent {
	out := b.pending
	b.pending = nil
	return out
}

// PendingEvents returns a copy of the pending events without clearing them.
func (b *EventBuffer) PendingEvents() []DomainEvent {
	return slices.Clone(b.pending)
}

// EventSource is implemented by aggregates that buffer domain events.
type EventSource interface {
	DrainEvents() []DomainEvent
	PendingEvents() []DomainEvent
}

// Audit records who created and last modified an entity.
type Audit struct {
	createdAt time.Time
	createdBy string
	updatedAt *time.Time
	updatedBy string
}

// AuditRecord is the persisted form of Audit.
type AuditRecord struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

func RestoreAudit(r AuditRecord) Audit {
	return Audit{createdAt: r.CreatedAt, createdBy: r.CreatedBy, updatedAt: r.UpdatedAt, updatedBy: r.UpdatedBy}
}

func (a *Audit) MarkCreated(at time.Time, by string) {
	a.createdAt = at.UTC()
	a.createdBy = by
}

func (a *Audit) MarkUpdated(at time.Time, by string) {
	t := at.UTC()
	a.updatedAt = &t
	a.updatedBy = by
}

func (a Audit) CreatedAt() time.Time { return a.createdAt }
func (a Audit) CreatedBy() string { return a.createdBy }
func (a Audit) UpdatedBy() string { return a.updatedBy }

// UpdatedAt returns the last modification time, if any.
func (a Audit) UpdatedAt() (time.Time, bool) {
	if a.updatedAt == nil {
		return time.Time{}, false
	}
	return *a.updatedAt, true
}

func (a Audit) Snapshot() AuditRecord {
	return AuditRecord{CreatedAt: a.createdAt, CreatedBy: a.createdBy, UpdatedAt: a.updatedAt, UpdatedBy: a.updatedBy}
}

// Auditable is implemented by entities whose creation and modification are
// stamped by the unit of work.
type Auditable interface {
	MarkCreated(at time.Time, by string)
	MarkUpdated(at time.Time, by string)
}

// SoftDelete flags an entity as logically removed.
type SoftDelete struct {
	deleted   bool
	deletedAt *time.Time
	deletedBy string
}

// DeletionRecord is the persisted form of SoftDelete.
type DeletionRecord struct {
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy string     `json:"deleted_by,omitempty"`
}

func RestoreSoftDelete(r DeletionRecord) SoftDelete {
	return SoftDelete{deleted: r.IsDeleted, deletedAt: r.DeletedAt, deletedBy: r.DeletedBy}
}

func (s *SoftDelete) MarkDeleted(at time.Time, by string) {
	t := at.UTC()
	s.deleted = true
	s.deletedAt = &t
	s.deletedBy = by
}

func (s SoftDelete) IsDeleted() bool { return s.deleted }
func (s SoftDelete) DeletedBy() string { return s.deletedBy }

func (s SoftDelete) DeletedAt() (time.Time, bool) {
	if s.deletedAt == nil {
		return time.Time{}, false
	}
	return *s.deletedAt, true
}

func (s SoftDelete) Snapshot() DeletionRecord {
	return DeletionRecord{IsDeleted: s.deleted, DeletedAt: s.deletedAt, DeletedBy: s.deletedBy}
}

// SoftDeletable is implemented by entities that are never physically removed.
type SoftDeletable interface {
	MarkDeleted(at time.Time, by string)
	IsDeleted() bool
}

// Versioned carries the optimistic concurrency revision of a persisted entity.
type Versioned struct {
	version int
}

func (v Versioned) Version() int { return v.version }

func (v *Versioned) SetVersion(n int) { v.version = n }

// VersionTracked is implemented by entities persisted with a revision check.
type VersionTracked interface {
	Version() int
	SetVersion(n int)
}
