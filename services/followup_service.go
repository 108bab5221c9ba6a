package services

import (
	"context"
	"time"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"
	"cityfix-be/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowUpService applies follow-up mutations to the owning aggregate through
// the workflow engine.
type FollowUpService struct {
	store repository.IssueStore
	now   func() time.Time
}

func NewFollowUpService(store repository.IssueStore) *FollowUpService {
	return &FollowUpService{store: store, now: time.Now}
}

type CreateFollowUpInput struct {
	HandlerName       string
	HandleDescription *string
	HandleImages      []string
}

type UpdateFollowUpInput struct {
	HandleDescription *string
	HandleImages      []string
}

func (s *FollowUpService) Create(ctx context.Context, actor Actor, issueID string, input CreateFollowUpInput) (*models.FollowUp, error) {
	if err := requirePermission(actor, ActionCreateFollowUp); err != nil {
		return nil, err
	}
	if len(input.HandleImages) == 0 {
		return nil, apperr.Validation("at least one image is required")
	}
	if len(input.HandleImages) > models.MaxImages {
		return nil, apperr.Validation("at most %d images are allowed", models.MaxImages)
	}

	handlerName := input.HandlerName
	if handlerName == "" {
		handlerName = actor.Name
	}
	if handlerName == "" {
		return nil, apperr.Validation("handler name is required")
	}

	id, err := parseID(issueID)
	if err != nil {
		return nil, err
	}
	issue, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fu := models.FollowUp{
		ID:                primitive.NewObjectID(),
		IssueID:           issue.ID,
		HandlerName:       handlerName,
		HandleDescription: input.HandleDescription,
		HandleImages:      input.HandleImages,
		HandleTime:        now,
		Status:            models.FollowUpNormal,
	}
	if !actor.ID.IsZero() {
		actorID := actor.ID
		fu.HandlerID = &actorID
	}

	appendFollowUp(issue, fu, now)

	if _, err := s.store.Put(ctx, issue); err != nil {
		return nil, err
	}
	return &fu, nil
}

func (s *FollowUpService) Update(ctx context.Context, actor Actor, followUpID string, input UpdateFollowUpInput) (*models.FollowUp, error) {
	if err := requirePermission(actor, ActionEditFollowUp); err != nil {
		return nil, err
	}
	if input.HandleImages != nil && len(input.HandleImages) > models.MaxImages {
		return nil, apperr.Validation("at most %d images are allowed", models.MaxImages)
	}

	id, err := parseID(followUpID)
	if err != nil {
		return nil, err
	}
	issue, err := s.store.FindByFollowUp(ctx, id)
	if err != nil {
		return nil, err
	}

	fu := issue.FindFollowUp(id)
	if fu == nil {
		return nil, apperr.NotFound("follow-up not found")
	}

	// Resolvers may only touch their own records; admins may touch any.
	if actor.Role == models.RoleResolver {
		if fu.HandlerID == nil || *fu.HandlerID != actor.ID {
			return nil, apperr.Forbidden("resolvers can only edit their own follow-ups")
		}
	}

	// handleTime stays as set at creation; only content is replaced.
	if input.HandleDescription != nil {
		fu.HandleDescription = input.HandleDescription
	}
	if input.HandleImages != nil {
		fu.HandleImages = input.HandleImages
	}
	issue.Touch(s.now())

	if _, err := s.store.Put(ctx, issue); err != nil {
		return nil, err
	}
	result := *fu
	return &result, nil
}

func (s *FollowUpService) Delete(ctx context.Context, actor Actor, followUpID string) error {
	if err := requirePermission(actor, ActionDeleteFollowUp); err != nil {
		return err
	}

	id, err := parseID(followUpID)
	if err != nil {
		return err
	}
	issue, err := s.store.FindByFollowUp(ctx, id)
	if err != nil {
		return err
	}

	if err := removeFollowUp(issue, id, s.now()); err != nil {
		return err
	}

	_, err = s.store.Put(ctx, issue)
	return err
}

func (s *FollowUpService) load(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := s.store.Get(ctx, id)
	if apperr.Is(err, apperr.KindStoreUnavailable) {
		issue, err = s.store.Get(ctx, id)
	}
	return issue, err
}
