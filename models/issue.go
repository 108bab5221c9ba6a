package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	IssuePending  IssueStatus = "pending"
	IssueResolved IssueStatus = "resolved"
	IssueRejected IssueStatus = "rejected"
)

// Areas is the fixed set of administrative zones an issue can be reported in.
var Areas = []string{
	"上合管委",
	"临空管委",
	"大沽河管委",
	"阜安街道",
	"中云街道",
	"胶北街道",
	"三里河街道",
	"胶东街道",
	"九龙街道",
	"胶莱街道",
	"胶西街道",
	"李哥庄镇",
}

// ValidArea reports whether area is one of the enumerated zones.
func ValidArea(area string) bool {
	for _, a := range Areas {
		if a == area {
			return true
		}
	}
	return false
}

// ValidIssueStatus reports whether s is a known issue status.
func ValidIssueStatus(s string) bool {
	switch IssueStatus(s) {
	case IssuePending, IssueResolved, IssueRejected:
		return true
	}
	return false
}

// MaxImages bounds the image sequence on issues and follow-ups.
const MaxImages = 9

// Issue represents a reported site problem. Follow-ups are embedded so the
// whole aggregate is read and written as a single document.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueNumber string             `bson:"issueNumber" json:"issueNumber"`
	Title       *string            `bson:"title,omitempty" json:"title"`
	Description *string            `bson:"description,omitempty" json:"description"`
	Area        string             `bson:"area" json:"area"`
	Location    *string            `bson:"location,omitempty" json:"location"`
	Creator     *string            `bson:"creator,omitempty" json:"creator"`
	Phone       *string            `bson:"phone,omitempty" json:"phone"`
	Images      []string           `bson:"images" json:"images"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline"`
	Status      IssueStatus        `bson:"status" json:"status"`
	FollowUps   []FollowUp         `bson:"followUps" json:"followUps"`
	Version     int64              `bson:"version" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Touch bumps UpdatedAt without ever moving it backwards.
func (i *Issue) Touch(now time.Time) {
	if now.After(i.UpdatedAt) {
		i.UpdatedAt = now
	}
}

// FindFollowUp returns the follow-up with the given id, or nil.
func (i *Issue) FindFollowUp(id primitive.ObjectID) *FollowUp {
	for idx := range i.FollowUps {
		if i.FollowUps[idx].ID == id {
			return &i.FollowUps[idx]
		}
	}
	return nil
}
