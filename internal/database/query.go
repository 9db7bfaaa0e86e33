package database

import (
	"math"
	"regexp"
	"strings"

	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultSort = "-createdAt"

// sortFields maps the public sort keys onto stored field names.
var sortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
	"category":  "category",
	"title":     "title",
}

// FeedbackQuery is a fully resolved listing request. Visibility has already been
// applied by the caller through CreatedBy.
type FeedbackQuery struct {
	Page      int64
	Limit     int64
	Status    models.Status
	Category  models.Category
	Search    string
	Sort      string
	CreatedBy *primitive.ObjectID
}

// Skip is the number of documents before the page, saturating at math.MaxInt64.
func (q FeedbackQuery) Skip() int64 {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt64/q.Limit {
		return math.MaxInt64
	}
	return (q.Page - 1) * q.Limit
}

// NormalizeSort returns s when it names a known field (optionally "-" prefixed),
// otherwise DefaultSort.
func NormalizeSort(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := sortFields[strings.TrimPrefix(s, "-")]; ok && s != "" {
		return s
	}
	return DefaultSort
}

// SortKey splits a normalized sort into the public field name and direction.
func SortKey(s string) (field string, desc bool) {
	s = NormalizeSort(s)
	return strings.TrimPrefix(s, "-"), strings.HasPrefix(s, "-")
}

// FeedbackFilter builds the Mongo filter for q.
func FeedbackFilter(q FeedbackQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.CreatedBy != nil {
		filter["created_by"] = *q.CreatedBy
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"body": pattern},
		}
	}
	return filter
}

// FeedbackSort builds the sort document for q; _id breaks ties so pages are stable.
func FeedbackSort(q FeedbackQuery) bson.D {
	field, desc := SortKey(q.Sort)
	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{
		{Key: sortFields[field], Value: dir},
		{Key: "_id", Value: dir},
	}
}
