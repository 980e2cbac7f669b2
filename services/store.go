package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civic-issue-tracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error taxonomy. Controllers map these onto HTTP codes; the services
// guarantee that no mutation or fan-out happens once one is returned.
var (
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// BucketCount is one row of a group-by-count aggregation.
type BucketCount struct {
	Key   string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

// IssueFilter narrows and pages an issue listing.
type IssueFilter struct {
	Status     string
	Category   string
	Search     string
	ReportedBy *primitive.ObjectID
	AssignedTo *primitive.ObjectID
	SortBy     string // "createdAt" or "updatedAt"
	SortAsc    bool
	Page       int64
	Limit      int64
}

// IssueUpdate is a partial patch applied atomically by the store.
// Nil fields are left untouched.
type IssueUpdate struct {
	Status               *models.IssueStatus
	AssignedTo           *primitive.ObjectID
	ResolutionNotes      *string
	ResolutionProof      *string
	ActualResolutionTime *time.Time
}

// IssueStore is the persistence contract for issue documents. Vote and
// comment writes are single atomic array updates, never whole-document
// replaces, so concurrent engagement on one issue cannot lose entries.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Find(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, patch IssueUpdate) (*models.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)

	UpsertVote(ctx context.Context, id primitive.ObjectID, vote models.Vote) (*models.Issue, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Issue, error)

	CountByStatus(ctx context.Context, status models.IssueStatus) (int64, error)
	CountReported(ctx context.Context, reporter primitive.ObjectID, statuses ...models.IssueStatus) (int64, error)
	GroupCountByReporter(ctx context.Context, reporter primitive.ObjectID) ([]BucketCount, error)
	CountAll(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	GroupCount(ctx context.Context, field string) ([]BucketCount, error)
	TopVoted(ctx context.Context, limit int64) ([]models.Issue, error)
	RecentlyUpdated(ctx context.Context, limit int64) ([]models.Issue, error)
	Nearby(ctx context.Context, limit int64) ([]models.Issue, error)
}

// UserFilter narrows and pages a user listing.
type UserFilter struct {
	Role     string
	IsActive *bool
	Page     int64
	Limit    int64
}

// UserUpdate is a partial patch for a user document.
type UserUpdate struct {
	Name     *string
	Phone    *string
	Address  *models.Address
	Role     *models.UserRole
	IsActive *bool
}

// UserStore is the persistence contract for user documents.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Find(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, patch UserUpdate) (*models.User, error)
	CountAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// Broadcaster is the realtime fan-out contract. Calls are synchronous and
// never awaited for delivery; a disconnected client simply misses the event.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
	BroadcastToRoom(room, event string, payload interface{})
}

// Notifier is the outbound email side channel. Implementations are
// fire-and-forget; a failed send must never fail the calling operation.
type Notifier interface {
	StatusChanged(to models.User, issueTitle string, oldStatus, newStatus models.IssueStatus)
	NewComment(to models.User, issueTitle, commenterName string)
}

// Realtime event taxonomy.
const (
	EventIssueCreated       = "issue-created"
	EventIssueUpdated       = "issue-updated"
	EventIssueAssigned      = "issue-assigned"
	EventIssueStatusUpdated = "issue-status-updated"
	EventIssueVerified      = "issue-verified"
	EventIssueDeleted       = "issue-deleted"
	EventIssueVoted         = "issue-voted"
	EventIssueComment       = "issue-comment"
	EventIssuesUpdated      = "issues-updated"
)
