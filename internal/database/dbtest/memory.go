// Package dbtest provides in-memory implementations of the Mongo-backed stores for
// tests. Filtering, sorting and paging follow the same FeedbackQuery semantics.
package dbtest

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds users, feedback and comments. It satisfies the user, feedback and
// comment store interfaces at once.
type Store struct {
	mu       sync.Mutex
	users    []models.User
	feedback []models.Feedback
	comments []models.Comment

	// Err, when set, is returned by every call.
	Err error
}

func New() *Store { return &Store{} }

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

// UserCount is a test helper.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) CreateFeedback(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.feedback = append(s.feedback, *f)
	return nil
}

func (s *Store) FindFeedback(_ context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, f := range s.feedback {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) ListFeedback(_ context.Context, q database.FeedbackQuery) ([]models.Feedback, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}

	var search *regexp.Regexp
	if term := strings.TrimSpace(q.Search); term != "" {
		search = regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	}

	matched := []models.Feedback{}
	for _, f := range s.feedback {
		if q.Status != "" && f.Status != q.Status {
			continue
		}
		if q.Category != "" && f.Category != q.Category {
			continue
		}
		if q.CreatedBy != nil && !f.CreatedByUser(*q.CreatedBy) {
			continue
		}
		if search != nil && !search.MatchString(f.Title) && !search.MatchString(f.Body) {
			continue
		}
		matched = append(matched, f)
	}

	field, desc := database.SortKey(q.Sort)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := sortValue(matched[i], field), sortValue(matched[j], field)
		if a == b {
			a, b = matched[i].ID.Hex(), matched[j].ID.Hex()
		}
		if desc {
			return a > b
		}
		return a < b
	})

	total := int64(len(matched))
	start := q.Skip()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// sortableTime is fixed width so timestamps compare as strings.
const sortableTime = "2006-01-02T15:04:05.000000000"

func sortValue(f models.Feedback, field string) string {
	switch field {
	case "updatedAt":
		return f.UpdatedAt.UTC().Format(sortableTime)
	case "status":
		return string(f.Status)
	case "category":
		return string(f.Category)
	case "title":
		return f.Title
	default:
		return f.CreatedAt.UTC().Format(sortableTime)
	}
}

func (s *Store) UpdateFeedbackStatus(_ context.Context, id primitive.ObjectID, status models.Status, now time.Time) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.feedback {
		if s.feedback[i].ID == id {
			s.feedback[i].Status = status
			s.feedback[i].UpdatedAt = now
			f := s.feedback[i]
			return &f, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.comments = append(s.comments, *c)
	return nil
}

func (s *Store) ListComments(_ context.Context, feedbackID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.FeedbackID == feedbackID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
