package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedIssue(t *testing.T, store *MemoryIssueStore, number, area string, status models.IssueStatus, createdAt time.Time, mutate func(*models.Issue)) *models.Issue {
	t.Helper()
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		IssueNumber: number,
		Area:        area,
		Images:      []string{"/uploads/seed.jpg"},
		Status:      status,
		FollowUps:   []models.FollowUp{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if mutate != nil {
		mutate(issue)
	}
	require.NoError(t, store.Insert(context.Background(), issue))
	return issue
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	title := "Broken Street Lamp"
	phone := "13800138000"
	seedIssue(t, store, "000001", "阜安街道", models.IssuePending, day(2025, 3, 1), func(i *models.Issue) {
		i.Title = &title
		i.Phone = &phone
	})
	seedIssue(t, store, "000002", "九龙街道", models.IssueResolved, day(2025, 3, 2), nil)
	seedIssue(t, store, "000003", "阜安街道", models.IssueRejected, day(2025, 3, 3), nil)

	t.Run("area exact match", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Area: "阜安街道", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("issue number is a case-insensitive substring", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{IssueNumber: "0002", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Total)
		assert.Equal(t, "000002", result.Items[0].IssueNumber)
	})

	t.Run("title substring ignores case", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Title: "street lamp", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Total)
		assert.Equal(t, "000001", result.Items[0].IssueNumber)
	})

	t.Run("phone substring", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Phone: "0138", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
	})

	t.Run("filters AND-combine", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Area: "阜安街道", Status: "rejected", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Total)
		assert.Equal(t, "000003", result.Items[0].IssueNumber)
	})

	t.Run("no match returns empty with zero counts", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Area: "李哥庄镇", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, int64(0), result.Total)
		assert.Equal(t, StatusCounts{}, result.StatusCounts)
	})
}

func TestQueryDateRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	seedIssue(t, store, "000001", "阜安街道", models.IssuePending, day(2025, 3, 1), nil)
	seedIssue(t, store, "000002", "阜安街道", models.IssuePending, day(2025, 3, 5), nil)
	seedIssue(t, store, "000003", "阜安街道", models.IssuePending, day(2025, 3, 10), nil)

	// Bounds as the service normalizes them: start of first day inclusive,
	// start of the day after the last day exclusive.
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	endExclusive := time.Date(2025, 3, 6, 0, 0, 0, 0, time.Local)

	result, err := store.Query(ctx, IssueQuery{StartDate: &start, EndDate: &endExclusive, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	// Both bounds on the same day still include that day.
	sameDayEnd := time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)
	result, err = store.Query(ctx, IssueQuery{StartDate: &start, EndDate: &sameDayEnd, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}

func TestQueryOrderingAndPagination(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	for i := 1; i <= 15; i++ {
		seedIssue(t, store, fmt.Sprintf("%06d", i), "阜安街道", models.IssuePending,
			day(2025, 3, 1).Add(time.Duration(i)*time.Hour), nil)
	}

	t.Run("newest first", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, result.Items, 10)
		assert.Equal(t, "000015", result.Items[0].IssueNumber)
		assert.Equal(t, "000006", result.Items[9].IssueNumber)
	})

	t.Run("page two has the remainder", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Page: 2, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, result.Items, 5)
		assert.Equal(t, int64(15), result.Total)
		assert.Equal(t, "000005", result.Items[0].IssueNumber)
		assert.Equal(t, "000001", result.Items[4].IssueNumber)
		assert.Equal(t, int64(15), result.StatusCounts.All, "counts ignore pagination")
	})

	t.Run("page beyond the end is empty but keeps aggregates", func(t *testing.T) {
		result, err := store.Query(ctx, IssueQuery{Page: 5, PageSize: 10})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, int64(15), result.Total)
		assert.Equal(t, int64(15), result.StatusCounts.All)
	})

	t.Run("equal timestamps page stably", func(t *testing.T) {
		tied := NewMemoryIssueStore()
		at := day(2025, 4, 1)
		for i := 1; i <= 4; i++ {
			seedIssue(t, tied, fmt.Sprintf("%06d", i), "阜安街道", models.IssuePending, at, nil)
		}

		seen := map[string]bool{}
		for page := 1; page <= 2; page++ {
			result, err := tied.Query(ctx, IssueQuery{Page: page, PageSize: 2})
			require.NoError(t, err)
			require.Len(t, result.Items, 2)
			for _, item := range result.Items {
				assert.False(t, seen[item.IssueNumber], "issue %s paged twice", item.IssueNumber)
				seen[item.IssueNumber] = true
			}
		}
		assert.Len(t, seen, 4)
	})
}

func TestStatusCountsExcludeStatusFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	seedIssue(t, store, "000001", "阜安街道", models.IssuePending, day(2025, 3, 1), nil)
	seedIssue(t, store, "000002", "阜安街道", models.IssuePending, day(2025, 3, 2), nil)
	seedIssue(t, store, "000003", "阜安街道", models.IssueResolved, day(2025, 3, 3), nil)
	seedIssue(t, store, "000004", "阜安街道", models.IssueRejected, day(2025, 3, 4), nil)
	seedIssue(t, store, "000005", "九龙街道", models.IssueResolved, day(2025, 3, 5), nil)

	expected := StatusCounts{All: 4, Pending: 2, Resolved: 1, Rejected: 1}

	for _, status := range []string{"", "all", "pending", "resolved", "rejected"} {
		result, err := store.Query(ctx, IssueQuery{Area: "阜安街道", Status: status, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, expected, result.StatusCounts, "status tab %q must not change the counts", status)
		assert.Equal(t, expected.All, expected.Pending+expected.Resolved+expected.Rejected)
	}

	result, err := store.Query(ctx, IssueQuery{Area: "阜安街道", Status: "pending", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total, "total reflects the status filter")
}

func TestPutOptimisticConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	issue := seedIssue(t, store, "000001", "阜安街道", models.IssuePending, day(2025, 3, 1), nil)

	first, err := store.Get(ctx, issue.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, issue.ID)
	require.NoError(t, err)

	first.Status = models.IssueResolved
	_, err = store.Put(ctx, first)
	require.NoError(t, err)

	second.Status = models.IssueRejected
	_, err = store.Put(ctx, second)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Re-read and re-apply succeeds, as callers are expected to do.
	fresh, err := store.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IssueResolved, fresh.Status)
	fresh.Status = models.IssueRejected
	_, err = store.Put(ctx, fresh)
	assert.NoError(t, err)

	t.Run("put of a missing issue is not found", func(t *testing.T) {
		ghost := seedIssue(t, store, "000099", "阜安街道", models.IssuePending, day(2025, 3, 1), nil)
		loaded, err := store.Get(ctx, ghost.ID)
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, ghost.ID))

		_, err = store.Put(ctx, loaded)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestNextIssueNumberIsSequential(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	seen := map[string]bool{}
	for i := 1; i <= 3; i++ {
		number, err := store.NextIssueNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%06d", i), number)
		assert.False(t, seen[number])
		seen[number] = true
	}
}

func TestFindByFollowUp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	fuID := primitive.NewObjectID()
	issue := seedIssue(t, store, "000001", "阜安街道", models.IssuePending, day(2025, 3, 1), func(i *models.Issue) {
		i.FollowUps = []models.FollowUp{{
			ID:           fuID,
			IssueID:      i.ID,
			HandlerName:  "张伟",
			HandleImages: []string{"/uploads/fix.jpg"},
			HandleTime:   day(2025, 3, 1),
			Status:       models.FollowUpNormal,
		}}
	})

	found, err := store.FindByFollowUp(ctx, fuID)
	require.NoError(t, err)
	assert.Equal(t, issue.ID, found.ID)

	_, err = store.FindByFollowUp(ctx, primitive.NewObjectID())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()

	issue := seedIssue(t, store, "000001", "阜安街道", models.IssuePending, day(2025, 3, 1), nil)

	loaded, err := store.Get(ctx, issue.ID)
	require.NoError(t, err)
	loaded.Status = models.IssueResolved
	loaded.Images[0] = "/uploads/tampered.jpg"

	// Mutating a loaded copy must not leak into the store.
	fresh, err := store.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IssuePending, fresh.Status)
	assert.Equal(t, "/uploads/seed.jpg", fresh.Images[0])
}
