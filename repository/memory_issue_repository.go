package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryIssueStore is an in-process IssueStore with the same semantics as the
// mongo implementation: per-aggregate optimistic concurrency, serialized
// issue numbers, and the two-aggregate list query. It backs the tests and
// STORE=memory local runs.
type MemoryIssueStore struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]*models.Issue
	seq    int64
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func cloneIssue(issue *models.Issue) *models.Issue {
	clone := *issue
	clone.Images = append([]string(nil), issue.Images...)
	clone.FollowUps = make([]models.FollowUp, len(issue.FollowUps))
	for i, fu := range issue.FollowUps {
		clone.FollowUps[i] = fu
		clone.FollowUps[i].HandleImages = append([]string(nil), fu.HandleImages...)
	}
	return &clone
}

func (s *MemoryIssueStore) Insert(ctx context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

func (s *MemoryIssueStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, apperr.NotFound("issue not found")
	}
	return cloneIssue(issue), nil
}

func (s *MemoryIssueStore) Put(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.issues[issue.ID]
	if !ok {
		return nil, apperr.NotFound("issue not found")
	}
	if stored.Version != issue.Version {
		return nil, apperr.Conflict("issue was modified concurrently")
	}
	issue.Version++
	s.issues[issue.ID] = cloneIssue(issue)
	return cloneIssue(issue), nil
}

func (s *MemoryIssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[id]; !ok {
		return apperr.NotFound("issue not found")
	}
	delete(s.issues, id)
	return nil
}

func (s *MemoryIssueStore) FindByFollowUp(ctx context.Context, followUpID primitive.ObjectID) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, issue := range s.issues {
		for _, fu := range issue.FollowUps {
			if fu.ID == followUpID {
				return cloneIssue(issue), nil
			}
		}
	}
	return nil, apperr.NotFound("follow-up not found")
}

func (s *MemoryIssueStore) NextIssueNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%06d", s.seq), nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matches(issue *models.Issue, q IssueQuery, withStatus bool) bool {
	if q.Area != "" && issue.Area != q.Area {
		return false
	}
	if q.IssueNumber != "" && !containsFold(issue.IssueNumber, q.IssueNumber) {
		return false
	}
	if q.Title != "" && (issue.Title == nil || !containsFold(*issue.Title, q.Title)) {
		return false
	}
	if q.Phone != "" && (issue.Phone == nil || !containsFold(*issue.Phone, q.Phone)) {
		return false
	}
	if q.StartDate != nil && issue.CreatedAt.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && !issue.CreatedAt.Before(*q.EndDate) {
		return false
	}
	if withStatus && q.Status != "" && q.Status != "all" && string(issue.Status) != q.Status {
		return false
	}
	return true
}

func (s *MemoryIssueStore) Query(ctx context.Context, q IssueQuery) (*QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts StatusCounts
	var filtered []*models.Issue
	for _, issue := range s.issues {
		if !matches(issue, q, false) {
			continue
		}
		switch issue.Status {
		case models.IssuePending:
			counts.Pending++
		case models.IssueResolved:
			counts.Resolved++
		case models.IssueRejected:
			counts.Rejected++
		}
		if matches(issue, q, true) {
			filtered = append(filtered, issue)
		}
	}
	counts.All = counts.Pending + counts.Resolved + counts.Rejected

	// Newest first, id as deterministic tie-break for stable pagination.
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID.Hex() > filtered[j].ID.Hex()
	})

	total := int64(len(filtered))
	start := (q.Page - 1) * q.PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + q.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]models.Issue, 0, end-start)
	for _, issue := range filtered[start:end] {
		items = append(items, *cloneIssue(issue))
	}

	return &QueryResult{Items: items, Total: total, StatusCounts: counts}, nil
}
