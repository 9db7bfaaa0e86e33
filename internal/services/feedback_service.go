package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/internal/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50

	// MaxPage keeps (page-1)*limit within int64 for every allowed limit.
	MaxPage = math.MaxInt64 / MaxPageLimit
)

type CreateFeedbackInput struct {
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Body        string          `json:"body" validate:"required,min=5,max=5000"`
	Category    models.Category `json:"category"`
	IsAnonymous bool            `json:"isAnonymous"`
}

// ListFeedbackInput carries the raw query parameters of a listing request.
type ListFeedbackInput struct {
	Page     int
	Limit    int
	Status   string
	Category string
	Q        string
	Sort     string
}

type FeedbackPage struct {
	Page    int64                 `json:"page"`
	Limit   int64                 `json:"limit"`
	Total   int64                 `json:"total"`
	Results []models.FeedbackView `json:"results"`
}

type FeedbackService struct {
	store        FeedbackStore
	now          func() time.Time
	storeTimeout time.Duration
}

func NewFeedbackService(store FeedbackStore, storeTimeout time.Duration) *FeedbackService {
	return &FeedbackService{store: store, now: time.Now, storeTimeout: storeTimeout}
}

func (s *FeedbackService) Create(ctx context.Context, id *Identity, in CreateFeedbackInput) (*models.FeedbackView, error) {
	caps := CapabilitiesFor(id)

	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if in.Category == "" {
		in.Category = models.CategoryOther
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, ValidationError(fmt.Sprintf("category must be one of: %s", joinEnum(models.Categories)))
	}
	if !in.IsAnonymous && !caps.Authenticated {
		return nil, UnauthorizedError("Sign in to submit named feedback, or submit anonymously")
	}

	now := s.now().UTC()
	f := &models.Feedback{
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       in.Title,
		Body:        in.Body,
		Category:    in.Category,
		Status:      models.StatusOpen,
		IsAnonymous: in.IsAnonymous,
	}
	if !in.IsAnonymous {
		uid := caps.UserID
		f.CreatedBy = &uid
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return nil, InternalError("create feedback", err)
	}

	v := f.View(!caps.CanViewAll)
	return &v, nil
}

// List applies visibility from the caller's capabilities: admins see everything,
// signed-in users see what they created, and anonymous callers get an empty page.
func (s *FeedbackService) List(ctx context.Context, id *Identity, in ListFeedbackInput) (*FeedbackPage, error) {
	caps := CapabilitiesFor(id)
	q := resolveListQuery(in)

	page := &FeedbackPage{Page: q.Page, Limit: q.Limit, Results: []models.FeedbackView{}}
	if !caps.Authenticated {
		return page, nil
	}
	if !caps.CanViewAll {
		uid := caps.UserID
		q.CreatedBy = &uid
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	items, total, err := s.store.ListFeedback(ctx, q)
	if err != nil {
		return nil, InternalError("list feedback", err)
	}

	page.Total = total
	for i := range items {
		page.Results = append(page.Results, items[i].View(!caps.CanViewAll))
	}
	return page, nil
}

func (s *FeedbackService) UpdateStatus(ctx context.Context, id *Identity, feedbackID, status string) (*models.FeedbackView, error) {
	caps := CapabilitiesFor(id)
	if !caps.Authenticated {
		return nil, UnauthorizedError("Unauthorized")
	}
	if !caps.CanMutateStatus {
		return nil, ForbiddenError("Forbidden: admin only")
	}

	oid, err := parseFeedbackID(feedbackID)
	if err != nil {
		return nil, err
	}
	st := models.Status(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, ValidationError(fmt.Sprintf("status must be one of: %s", joinEnum(models.Statuses)))
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	f, err := s.store.UpdateFeedbackStatus(ctx, oid, st, s.now().UTC())
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("Feedback not found")
	}
	if err != nil {
		return nil, InternalError("update feedback status", err)
	}

	v := f.View(!caps.CanViewAll)
	return &v, nil
}

// resolveListQuery clamps paging and drops filters outside the enums.
func resolveListQuery(in ListFeedbackInput) database.FeedbackQuery {
	page := int64(in.Page)
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit := in.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	q := database.FeedbackQuery{
		Page:   page,
		Limit:  int64(limit),
		Search: strings.TrimSpace(in.Q),
		Sort:   database.NormalizeSort(in.Sort),
	}
	if st := models.Status(in.Status); st.Valid() {
		q.Status = st
	}
	if c := models.Category(in.Category); c.Valid() {
		q.Category = c
	}
	return q
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
