// Package store defines the persistence boundary of the lifecycle core.
// Implementations must honor the guard semantics documented on each
// method: a guarded method mutates only if its condition still holds at
// write time and returns ErrGuardFailed otherwise. This is what lets the
// service layer run an optimistic read-check-write loop against racing
// clients.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

var (
	// ErrNotFound means the entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGuardFailed means a conditional update found its guard stale.
	ErrGuardFailed = errors.New("guard failed")
	// ErrDuplicate means a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate")
)

// IssueFilter narrows an issue listing. Zero values mean "no filter".
type IssueFilter struct {
	Category models.IssueCategory
	Status   models.IssueStatus
	Priority models.IssuePriority
	Reporter string
	Search   string
	Sort     string // "newest" (default) or "oldest"
	Page     int
	Limit    int
}

// IssuePatch carries the owner-editable fields. Nil means unchanged.
type IssuePatch struct {
	Title       *string
	Description *string
	Category    *models.IssueCategory
	Location    *string
	ImageURL    *string
}

type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	List(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error)
	ListByReporter(ctx context.Context, reporter string) ([]models.Issue, error)
	ListByAssignee(ctx context.Context, assignee string) ([]models.Issue, error)

	// UpdatePendingFields applies the patch only while status is pending.
	UpdatePendingFields(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*models.Issue, error)

	// Delete removes the issue; with onlyPending it is guarded on
	// status == pending.
	Delete(ctx context.Context, id primitive.ObjectID, onlyPending bool) error

	// AddVote adds voter to the voter set and bumps the count in one
	// write, guarded on the voter being absent and not the reporter.
	AddVote(ctx context.Context, id primitive.ObjectID, voter string) (*models.Issue, error)

	// Transition moves status from -> to, guarded on the current status
	// still being from. A non-empty assignee is set in the same write,
	// and the timeline entry is appended.
	Transition(ctx context.Context, id primitive.ObjectID, from, to models.IssueStatus, assignee string, entry models.TimelineEntry) (*models.Issue, error)

	// SetPriorityHigh raises priority to high. Idempotent; priority
	// never moves the other way.
	SetPriorityHigh(ctx context.Context, id primitive.ObjectID, entry models.TimelineEntry) (*models.Issue, error)

	CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error)
	CountByPriority(ctx context.Context) (map[models.IssuePriority]int64, error)
	CountByCategory(ctx context.Context) (map[models.IssueCategory]int64, error)
	Latest(ctx context.Context, n int) ([]models.Issue, error)
}

type UserStore interface {
	// Insert fails with ErrDuplicate when the email is taken.
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error)
	// SetPremium marks the account premium. Idempotent.
	SetPremium(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// PaymentFilter narrows a payment listing. Zero values mean "no filter".
type PaymentFilter struct {
	Purpose models.PaymentPurpose
	Status  models.PaymentStatus
	Payer   string
}

type PaymentStore interface {
	// Insert fails with ErrDuplicate when the session id is taken.
	Insert(ctx context.Context, payment *models.Payment) error
	FindBySession(ctx context.Context, sessionID string) (*models.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]models.Payment, error)

	// Finalize moves the payment from pending to a terminal status,
	// guarded on it still being pending. At-least-once gateway callbacks
	// therefore settle a session exactly once.
	Finalize(ctx context.Context, sessionID string, to models.PaymentStatus) (*models.Payment, error)

	ConfirmedTotal(ctx context.Context) (int64, error)
	Latest(ctx context.Context, n int) ([]models.Payment, error)
}
