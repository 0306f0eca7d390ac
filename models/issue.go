package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Road        IssueCategory = "Road"
	Electricity IssueCategory = "Electricity"
	Water       IssueCategory = "Water"
	Garbage     IssueCategory = "Garbage"
	Sanitation  IssueCategory = "Sanitation"
	Other       IssueCategory = "Other"
)

// ValidCategory checks a category string from a client request.
func ValidCategory(c IssueCategory) bool {
	switch c {
	case Road, Electricity, Water, Garbage, Sanitation, Other:
		return true
	}
	return false
}

// TimelineEntry is one append-only progress note on an issue.
type TimelineEntry struct {
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Issue represents a civic issue reported by a citizen. Identities are
// stable email keys; the voter set and vote count live on the document so
// vote writes can be a single guarded update.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Location    string             `bson:"location" json:"location"`
	ImageURL    *string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Status      IssueStatus        `bson:"status" json:"status"`
	Priority    IssuePriority      `bson:"priority" json:"priority"`
	ReportedBy  string             `bson:"reportedBy" json:"reportedBy"`
	AssignedTo  string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Voters      []string           `bson:"voters" json:"voters"`
	VoteCount   int                `bson:"voteCount" json:"voteCount"`
	Timeline    []TimelineEntry    `bson:"timeline" json:"timeline"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasVoted reports whether the identity is already in the voter set.
func (i *Issue) HasVoted(identity string) bool {
	for _, v := range i.Voters {
		if v == identity {
			return true
		}
	}
	return false
}
