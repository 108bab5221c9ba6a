package repository

import (
	"context"
	"time"

	"cityfix-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueQuery is the normalized filter set for the list query. String filters
// are AND-combined; empty means "no filter". StartDate is an inclusive lower
// bound and EndDate an exclusive upper bound, both already normalized to day
// boundaries by the service layer.
type IssueQuery struct {
	Area        string
	IssueNumber string
	Title       string
	Phone       string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

// StatusCounts is the derived per-status tally, recomputed on every query
// over the filter set minus the status filter itself.
type StatusCounts struct {
	All      int64 `json:"all"`
	Pending  int64 `json:"pending"`
	Resolved int64 `json:"resolved"`
	Rejected int64 `json:"rejected"`
}

// QueryResult carries one page of issues plus the aggregates the list view
// renders alongside it.
type QueryResult struct {
	Items        []models.Issue
	Total        int64
	StatusCounts StatusCounts
}

// IssueStore is the storage collaborator for the issue aggregate. An issue
// and its follow-ups are read and written as one atomic unit; Put applies an
// optimistic-concurrency check on the aggregate version and fails with
// Conflict when the stored version moved underneath the caller.
type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Put(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Query(ctx context.Context, q IssueQuery) (*QueryResult, error)

	// NextIssueNumber returns a fresh sequential issue number. Generation is
	// serialized across concurrent callers; numbers are never reused.
	NextIssueNumber(ctx context.Context) (string, error)

	// FindByFollowUp locates the aggregate owning the given follow-up id.
	FindByFollowUp(ctx context.Context, followUpID primitive.ObjectID) (*models.Issue, error)
}
