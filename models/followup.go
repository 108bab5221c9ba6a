package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowUpStatus enum
type FollowUpStatus string

const (
	FollowUpNormal   FollowUpStatus = "normal"
	FollowUpRejected FollowUpStatus = "rejected"
	FollowUpResolved FollowUpStatus = "resolved"
)

// FollowUp is one remediation record (or the record of a rejection decision)
// attached to an issue. It lives inside its parent issue document and cannot
// outlive it.
type FollowUp struct {
	ID                primitive.ObjectID  `bson:"id" json:"id"`
	IssueID           primitive.ObjectID  `bson:"issueId" json:"issueId"`
	HandlerID         *primitive.ObjectID `bson:"handlerId,omitempty" json:"handlerId"`
	HandlerName       string              `bson:"handlerName" json:"handlerName"`
	HandleDescription *string             `bson:"handleDescription,omitempty" json:"handleDescription"`
	HandleImages      []string            `bson:"handleImages" json:"handleImages"`
	HandleTime        time.Time           `bson:"handleTime" json:"handleTime"`
	Status            FollowUpStatus      `bson:"status" json:"status"`
	RejectionReason   *string             `bson:"rejectionReason,omitempty" json:"rejectionReason"`
	RejectedBy        *string             `bson:"rejectedBy,omitempty" json:"rejectedBy"`
	RejectedAt        *time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt"`
}
