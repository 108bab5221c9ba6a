package services

import (
	"testing"
	"time"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPendingIssue() *models.Issue {
	now := time.Now()
	return &models.Issue{
		ID:          primitive.NewObjectID(),
		IssueNumber: "000001",
		Area:        "阜安街道",
		Images:      []string{"/uploads/a.jpg"},
		Status:      models.IssuePending,
		FollowUps:   []models.FollowUp{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func followUpWithStatus(issueID primitive.ObjectID, status models.FollowUpStatus, handleTime time.Time) models.FollowUp {
	return models.FollowUp{
		ID:           primitive.NewObjectID(),
		IssueID:      issueID,
		HandlerName:  "张伟",
		HandleImages: []string{"/uploads/fu.jpg"},
		HandleTime:   handleTime,
		Status:       status,
	}
}

func TestDeriveStatus(t *testing.T) {
	base := time.Now()

	t.Run("no follow-ups is pending", func(t *testing.T) {
		issue := newPendingIssue()
		assert.Equal(t, models.IssuePending, DeriveStatus(issue))
	})

	t.Run("normal follow-ups stay pending", func(t *testing.T) {
		issue := newPendingIssue()
		issue.FollowUps = []models.FollowUp{
			followUpWithStatus(issue.ID, models.FollowUpNormal, base),
			followUpWithStatus(issue.ID, models.FollowUpNormal, base.Add(time.Hour)),
		}
		assert.Equal(t, models.IssuePending, DeriveStatus(issue))
	})

	t.Run("any resolved follow-up resolves the issue", func(t *testing.T) {
		issue := newPendingIssue()
		issue.FollowUps = []models.FollowUp{
			followUpWithStatus(issue.ID, models.FollowUpNormal, base),
			followUpWithStatus(issue.ID, models.FollowUpResolved, base.Add(time.Hour)),
		}
		assert.Equal(t, models.IssueResolved, DeriveStatus(issue))
	})

	t.Run("any rejected follow-up rejects the issue", func(t *testing.T) {
		issue := newPendingIssue()
		issue.FollowUps = []models.FollowUp{
			followUpWithStatus(issue.ID, models.FollowUpRejected, base),
		}
		assert.Equal(t, models.IssueRejected, DeriveStatus(issue))
	})

	t.Run("resolved wins over rejected regardless of creation order", func(t *testing.T) {
		issue := newPendingIssue()
		issue.FollowUps = []models.FollowUp{
			followUpWithStatus(issue.ID, models.FollowUpResolved, base),
			followUpWithStatus(issue.ID, models.FollowUpRejected, base.Add(time.Hour)),
		}
		assert.Equal(t, models.IssueResolved, DeriveStatus(issue))

		issue.FollowUps[0], issue.FollowUps[1] = issue.FollowUps[1], issue.FollowUps[0]
		assert.Equal(t, models.IssueResolved, DeriveStatus(issue))
	})

	t.Run("depends only on the final follow-up set", func(t *testing.T) {
		now := base
		issue := newPendingIssue()
		rejected := followUpWithStatus(issue.ID, models.FollowUpRejected, now)
		normal := followUpWithStatus(issue.ID, models.FollowUpNormal, now.Add(time.Minute))

		appendFollowUp(issue, rejected, now)
		appendFollowUp(issue, normal, now.Add(time.Minute))
		require.NoError(t, removeFollowUp(issue, rejected.ID, now.Add(2*time.Minute)))

		// Same final set built in a different order.
		other := newPendingIssue()
		appendFollowUp(other, normal, now)

		assert.Equal(t, DeriveStatus(other), DeriveStatus(issue))
		assert.Equal(t, models.IssuePending, issue.Status)
	})
}

func TestResolveIssueTransition(t *testing.T) {
	now := time.Now()

	t.Run("pending resolves", func(t *testing.T) {
		issue := newPendingIssue()
		before := issue.UpdatedAt

		require.NoError(t, resolveIssue(issue, now.Add(time.Minute)))
		assert.Equal(t, models.IssueResolved, issue.Status)
		assert.True(t, issue.UpdatedAt.After(before) || issue.UpdatedAt.Equal(before))
	})

	t.Run("resolved and rejected fail", func(t *testing.T) {
		for _, status := range []models.IssueStatus{models.IssueResolved, models.IssueRejected} {
			issue := newPendingIssue()
			issue.Status = status

			err := resolveIssue(issue, now)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
			assert.Equal(t, status, issue.Status)
		}
	})
}

func TestRejectIssueTransition(t *testing.T) {
	now := time.Now()
	admin := Actor{ID: primitive.NewObjectID(), Name: "王强", Role: models.RoleAdmin}

	t.Run("pending rejects and records the reason", func(t *testing.T) {
		issue := newPendingIssue()
		reason := "照片无法确认问题位置"

		require.NoError(t, rejectIssue(issue, &reason, admin, now))
		assert.Equal(t, models.IssueRejected, issue.Status)

		require.Len(t, issue.FollowUps, 1)
		fu := issue.FollowUps[0]
		assert.Equal(t, models.FollowUpRejected, fu.Status)
		require.NotNil(t, fu.RejectionReason)
		assert.Equal(t, reason, *fu.RejectionReason)
		require.NotNil(t, fu.RejectedBy)
		assert.Equal(t, admin.Name, *fu.RejectedBy)
		require.NotNil(t, fu.RejectedAt)
		assert.Equal(t, issue.ID, fu.IssueID)
	})

	t.Run("reject without reason", func(t *testing.T) {
		issue := newPendingIssue()

		require.NoError(t, rejectIssue(issue, nil, admin, now))
		require.Len(t, issue.FollowUps, 1)
		assert.Nil(t, issue.FollowUps[0].RejectionReason)
	})

	t.Run("non-pending fails", func(t *testing.T) {
		issue := newPendingIssue()
		issue.Status = models.IssueResolved

		err := rejectIssue(issue, nil, admin, now)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
		assert.Empty(t, issue.FollowUps)
	})
}

func TestRemoveFollowUpRecomputesStatus(t *testing.T) {
	now := time.Now()

	t.Run("deleting the only resolved follow-up falls back to rejected then pending", func(t *testing.T) {
		issue := newPendingIssue()
		resolved := followUpWithStatus(issue.ID, models.FollowUpResolved, now)
		rejected := followUpWithStatus(issue.ID, models.FollowUpRejected, now.Add(time.Minute))
		appendFollowUp(issue, resolved, now)
		appendFollowUp(issue, rejected, now.Add(time.Minute))
		issue.Status = DeriveStatus(issue)
		require.Equal(t, models.IssueResolved, issue.Status)

		require.NoError(t, removeFollowUp(issue, resolved.ID, now.Add(2*time.Minute)))
		assert.Equal(t, models.IssueRejected, issue.Status)

		require.NoError(t, removeFollowUp(issue, rejected.ID, now.Add(3*time.Minute)))
		assert.Equal(t, models.IssuePending, issue.Status)
		assert.Empty(t, issue.FollowUps)
	})

	t.Run("deleting a follow-up from a directly resolved issue recomputes", func(t *testing.T) {
		issue := newPendingIssue()
		normal := followUpWithStatus(issue.ID, models.FollowUpNormal, now)
		appendFollowUp(issue, normal, now)
		require.NoError(t, resolveIssue(issue, now.Add(time.Minute)))
		require.Equal(t, models.IssueResolved, issue.Status)

		require.NoError(t, removeFollowUp(issue, normal.ID, now.Add(2*time.Minute)))
		assert.Equal(t, models.IssuePending, issue.Status)
	})

	t.Run("missing follow-up is not found", func(t *testing.T) {
		issue := newPendingIssue()
		err := removeFollowUp(issue, primitive.NewObjectID(), now)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestAppendFollowUpLeavesStatusUntouched(t *testing.T) {
	now := time.Now()
	issue := newPendingIssue()

	appendFollowUp(issue, followUpWithStatus(issue.ID, models.FollowUpNormal, now), now)
	assert.Equal(t, models.IssuePending, issue.Status)

	require.NoError(t, resolveIssue(issue, now.Add(time.Minute)))
	appendFollowUp(issue, followUpWithStatus(issue.ID, models.FollowUpNormal, now.Add(2*time.Minute)), now.Add(2*time.Minute))
	assert.Equal(t, models.IssueResolved, issue.Status)
}
