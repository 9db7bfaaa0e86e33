package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryBug     Category = "bug"
	CategoryFeature Category = "feature"
	CategoryUX      Category = "ux"
	CategoryProcess Category = "process"
	CategoryOther   Category = "other"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{CategoryBug, CategoryFeature, CategoryUX, CategoryProcess, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusOpen     Status = "open"
	StatusInReview Status = "in_review"
	StatusResolved Status = "resolved"
)

var Statuses = []Status{StatusOpen, StatusInReview, StatusResolved}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`

	Title    string   `bson:"title"`
	Body     string   `bson:"body"`
	Category Category `bson:"category"`
	Status   Status   `bson:"status"`

	// Anonymous items never carry CreatedBy.
	IsAnonymous bool                `bson:"is_anonymous"`
	CreatedBy   *primitive.ObjectID `bson:"created_by,omitempty"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty"`
}

// CreatedByUser reports whether id is the recorded creator.
func (f *Feedback) CreatedByUser(id primitive.ObjectID) bool {
	return f.CreatedBy != nil && !id.IsZero() && *f.CreatedBy == id
}

// FeedbackView is the wire shape of a feedback item. CreatedBy and AssignedTo are
// explicit nulls when absent or redacted.
type FeedbackView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    Category  `json:"category"`
	Status      Status    `json:"status"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedBy   *string   `json:"createdBy"`
	AssignedTo  *string   `json:"assignedTo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View renders f; the creator is dropped when redact is set and the item is anonymous.
func (f *Feedback) View(redact bool) FeedbackView {
	v := FeedbackView{
		ID:          f.ID.Hex(),
		Title:       f.Title,
		Body:        f.Body,
		Category:    f.Category,
		Status:      f.Status,
		IsAnonymous: f.IsAnonymous,
		AssignedTo:  hexOrNil(f.AssignedTo),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if !(f.IsAnonymous && redact) {
		v.CreatedBy = hexOrNil(f.CreatedBy)
	}
	return v
}

func hexOrNil(id *primitive.ObjectID) *string {
	if id == nil || id.IsZero() {
		return nil
	}
	s := id.Hex()
	return &s
}
