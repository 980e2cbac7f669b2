package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole     IssueCategory = "pothole"
	Streetlight IssueCategory = "streetlight"
	Garbage     IssueCategory = "garbage"
	Water       IssueCategory = "water"
	Sewage      IssueCategory = "sewage"
	Traffic     IssueCategory = "traffic"
	Parks       IssueCategory = "parks"
	Other       IssueCategory = "other"
)

// IssueSeverity enum
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending             IssueStatus = "pending"
	UnderReview         IssueStatus = "under-review"
	InProgress          IssueStatus = "in-progress"
	PendingVerification IssueStatus = "pending-verification"
	Resolved            IssueStatus = "resolved"
	Rejected            IssueStatus = "rejected"
)

// VoteType enum
type VoteType string

const (
	Upvote   VoteType = "up"
	Downvote VoteType = "down"
)

// ValidCategory reports whether s is one of the eight accepted categories.
func ValidCategory(s string) bool {
	switch IssueCategory(s) {
	case Pothole, Streetlight, Garbage, Water, Sewage, Traffic, Parks, Other:
		return true
	}
	return false
}

// ValidSeverity reports whether s is one of the four accepted severities.
func ValidSeverity(s string) bool {
	switch IssueSeverity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the six lifecycle statuses.
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Pending, UnderReview, InProgress, PendingVerification, Resolved, Rejected:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave status s.
func (s IssueStatus) Terminal() bool {
	return s == Resolved || s == Rejected
}

// Location is a GeoJSON point with a human-readable address.
// Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address" json:"address"`
}

// Vote is a single user's vote on an issue. At most one vote per
// (issue, user) pair exists at any time.
type Vote struct {
	User    primitive.ObjectID `bson:"user" json:"user"`
	Type    VoteType           `bson:"type" json:"type"`
	VotedAt time.Time          `bson:"votedAt" json:"votedAt"`
}

// Comment is one entry in an issue's append-only comment log. IsEdited is
// kept for the clients but no server path mutates it.
type Comment struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	IsEdited  bool               `bson:"isEdited" json:"isEdited"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Image is an uploaded photo attached to an issue.
type Image struct {
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId,omitempty" json:"publicId,omitempty"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title                string              `bson:"title" json:"title"`
	Description          string              `bson:"description" json:"description"`
	Category             IssueCategory       `bson:"category" json:"category"`
	Location             Location            `bson:"location" json:"location"`
	Severity             IssueSeverity       `bson:"severity" json:"severity"`
	Status               IssueStatus         `bson:"status" json:"status"`
	ReportedBy           primitive.ObjectID  `bson:"reportedBy" json:"reportedBy"`
	AssignedTo           *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Images               []Image             `bson:"images,omitempty" json:"images,omitempty"`
	Votes                []Vote              `bson:"votes" json:"votes"`
	Comments             []Comment           `bson:"comments" json:"comments"`
	ResolutionNotes      string              `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	ResolutionProof      string              `bson:"resolutionProof,omitempty" json:"resolutionProof,omitempty"`
	ActualResolutionTime *time.Time          `bson:"actualResolutionTime,omitempty" json:"actualResolutionTime,omitempty"`
	IsVisible            bool                `bson:"isVisible" json:"isVisible"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// VoteFor returns u's current vote on the issue, if any.
func (i *Issue) VoteFor(u primitive.ObjectID) *Vote {
	for idx := range i.Votes {
		if i.Votes[idx].User == u {
			return &i.Votes[idx]
		}
	}
	return nil
}
