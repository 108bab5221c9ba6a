package services

import (
	"context"
	"time"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"
	"cityfix-be/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueService orchestrates the issue lifecycle: policy check, load the
// aggregate, apply the workflow rules, persist atomically. It is the only
// component that mutates the aggregate.
type IssueService struct {
	store repository.IssueStore
	now   func() time.Time
}

func NewIssueService(store repository.IssueStore) *IssueService {
	return &IssueService{store: store, now: time.Now}
}

type CreateIssueInput struct {
	Title       *string
	Description *string
	Area        string
	Location    *string
	Creator     *string
	Phone       *string
	Images      []string
}

type UpdateIssueInput struct {
	Title       *string
	Description *string
	Area        *string
	Location    *string
	Creator     *string
	Phone       *string
	Images      []string
	Deadline    *time.Time
}

func (s *IssueService) Create(ctx context.Context, actor Actor, input CreateIssueInput) (*models.Issue, error) {
	if err := requirePermission(actor, ActionCreateIssue); err != nil {
		return nil, err
	}
	if len(input.Images) == 0 {
		return nil, apperr.Validation("at least one image is required")
	}
	if len(input.Images) > models.MaxImages {
		return nil, apperr.Validation("at most %d images are allowed", models.MaxImages)
	}
	if !models.ValidArea(input.Area) {
		return nil, apperr.Validation("invalid area %q", input.Area)
	}

	number, err := s.store.NextIssueNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		IssueNumber: number,
		Title:       input.Title,
		Description: input.Description,
		Area:        input.Area,
		Location:    input.Location,
		Creator:     input.Creator,
		Phone:       input.Phone,
		Images:      input.Images,
		Status:      models.IssuePending,
		FollowUps:   []models.FollowUp{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Insert(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) Get(ctx context.Context, actor Actor, id string) (*models.Issue, error) {
	if err := requirePermission(actor, ActionViewIssue); err != nil {
		return nil, err
	}
	issueID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, issueID)
}

func (s *IssueService) Query(ctx context.Context, actor Actor, params QueryParams) (*repository.QueryResult, error) {
	if err := requirePermission(actor, ActionViewIssue); err != nil {
		return nil, err
	}
	q, err := normalizeQuery(params)
	if err != nil {
		return nil, err
	}

	result, err := s.store.Query(ctx, q)
	if apperr.Is(err, apperr.KindStoreUnavailable) {
		// One bounded retry; the query is read-only.
		result, err = s.store.Query(ctx, q)
	}
	return result, err
}

func (s *IssueService) Update(ctx context.Context, actor Actor, id string, input UpdateIssueInput) (*models.Issue, error) {
	if err := requirePermission(actor, ActionEditIssue); err != nil {
		return nil, err
	}
	issueID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if input.Area != nil && !models.ValidArea(*input.Area) {
		return nil, apperr.Validation("invalid area %q", *input.Area)
	}
	if input.Images != nil {
		if len(input.Images) == 0 {
			return nil, apperr.Validation("at least one image is required")
		}
		if len(input.Images) > models.MaxImages {
			return nil, apperr.Validation("at most %d images are allowed", models.MaxImages)
		}
	}

	issue, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		issue.Title = input.Title
	}
	if input.Description != nil {
		issue.Description = input.Description
	}
	if input.Area != nil {
		issue.Area = *input.Area
	}
	if input.Location != nil {
		issue.Location = input.Location
	}
	if input.Creator != nil {
		issue.Creator = input.Creator
	}
	if input.Phone != nil {
		issue.Phone = input.Phone
	}
	if input.Images != nil {
		issue.Images = input.Images
	}
	if input.Deadline != nil {
		issue.Deadline = input.Deadline
	}
	issue.Touch(s.now())

	return s.store.Put(ctx, issue)
}

func (s *IssueService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requirePermission(actor, ActionDeleteIssue); err != nil {
		return err
	}
	issueID, err := parseID(id)
	if err != nil {
		return err
	}
	// Follow-ups are embedded in the aggregate document, so this one delete
	// is the whole cascade.
	return s.store.Delete(ctx, issueID)
}

func (s *IssueService) Resolve(ctx context.Context, actor Actor, id string) (*models.Issue, error) {
	if err := requirePermission(actor, ActionResolveIssue); err != nil {
		return nil, err
	}
	issueID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	issue, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := resolveIssue(issue, s.now()); err != nil {
		return nil, err
	}
	return s.store.Put(ctx, issue)
}

func (s *IssueService) Reject(ctx context.Context, actor Actor, id string, reason *string) (*models.Issue, error) {
	if err := requirePermission(actor, ActionRejectIssue); err != nil {
		return nil, err
	}
	issueID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	issue, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := rejectIssue(issue, reason, actor, s.now()); err != nil {
		return nil, err
	}
	return s.store.Put(ctx, issue)
}

// SetDeadline overwrites the issue deadline. Any valid instant is accepted;
// the deadline is inert metadata with no status effect.
func (s *IssueService) SetDeadline(ctx context.Context, actor Actor, id string, deadline time.Time) (*models.Issue, error) {
	if err := requirePermission(actor, ActionSetDeadline); err != nil {
		return nil, err
	}
	issueID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	issue, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}
	issue.Deadline = &deadline
	issue.Touch(s.now())
	return s.store.Put(ctx, issue)
}

// load reads the aggregate with a single bounded retry on store failure.
// Mutations are never retried here; a write Conflict goes back to the caller.
func (s *IssueService) load(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := s.store.Get(ctx, id)
	if apperr.Is(err, apperr.KindStoreUnavailable) {
		issue, err = s.store.Get(ctx, id)
	}
	return issue, err
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid id %q", id)
	}
	return objID, nil
}
