package services

import (
	"log"
	"time"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The workflow engine: pure transition rules on the issue aggregate. Every
// mutation of the follow-up set re-derives the issue status through
// DeriveStatus so the issue can never disagree with what its follow-ups say
// happened.

// DeriveStatus computes the issue status implied by the current follow-up
// set: resolved if any follow-up is resolved, else rejected if any is
// rejected, else pending. Resolved takes priority when both terminal kinds
// exist.
func DeriveStatus(issue *models.Issue) models.IssueStatus {
	hasResolved := false
	hasRejected := false
	for _, fu := range issue.FollowUps {
		switch fu.Status {
		case models.FollowUpResolved:
			hasResolved = true
		case models.FollowUpRejected:
			hasRejected = true
		}
	}
	if hasResolved && hasRejected {
		log.Printf("issue %s has both resolved and rejected follow-ups, applying resolved priority", issue.IssueNumber)
	}
	if hasResolved {
		return models.IssueResolved
	}
	if hasRejected {
		return models.IssueRejected
	}
	return models.IssuePending
}

// resolveIssue marks a pending issue resolved. This is the one direct status
// write with no follow-up attached.
func resolveIssue(issue *models.Issue, now time.Time) error {
	if issue.Status != models.IssuePending {
		return apperr.InvalidTransition("issue is %s, only pending issues can be resolved", issue.Status)
	}
	issue.Status = models.IssueResolved
	issue.Touch(now)
	return nil
}

// rejectIssue marks a pending issue rejected and attaches a follow-up record
// carrying the reason, so the rejection survives later status recomputation.
func rejectIssue(issue *models.Issue, reason *string, actor Actor, now time.Time) error {
	if issue.Status != models.IssuePending {
		return apperr.InvalidTransition("issue is %s, only pending issues can be rejected", issue.Status)
	}

	fu := models.FollowUp{
		ID:              primitive.NewObjectID(),
		IssueID:         issue.ID,
		HandlerName:     actor.Name,
		HandleImages:    []string{},
		HandleTime:      now,
		Status:          models.FollowUpRejected,
		RejectionReason: reason,
		RejectedAt:      &now,
	}
	if actor.Name != "" {
		name := actor.Name
		fu.RejectedBy = &name
	}
	if !actor.ID.IsZero() {
		id := actor.ID
		fu.HandlerID = &id
	}

	issue.FollowUps = append(issue.FollowUps, fu)
	issue.Status = models.IssueRejected
	issue.Touch(now)
	return nil
}

// appendFollowUp attaches a remediation record. The issue status is left
// untouched; only an admin decision moves it.
func appendFollowUp(issue *models.Issue, fu models.FollowUp, now time.Time) {
	issue.FollowUps = append(issue.FollowUps, fu)
	issue.Touch(now)
}

// removeFollowUp deletes a follow-up and recomputes the issue status from
// whatever remains.
func removeFollowUp(issue *models.Issue, followUpID primitive.ObjectID, now time.Time) error {
	idx := -1
	for i := range issue.FollowUps {
		if issue.FollowUps[i].ID == followUpID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.NotFound("follow-up not found")
	}

	issue.FollowUps = append(issue.FollowUps[:idx], issue.FollowUps[idx+1:]...)
	issue.Status = DeriveStatus(issue)
	issue.Touch(now)
	return nil
}
