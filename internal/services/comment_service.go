package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AddCommentInput struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Thread is a feedback item's comments, oldest first, with the derived state.
type Thread struct {
	FeedbackID string           `json:"feedbackId"`
	State      string           `json:"state"`
	Results    []models.Comment `json:"results"`
	Total      int              `json:"total"`
}

type CommentService struct {
	feedback     FeedbackStore
	comments     CommentStore
	users        UserStore
	now          func() time.Time
	storeTimeout time.Duration
}

func NewCommentService(feedback FeedbackStore, comments CommentStore, users UserStore, storeTimeout time.Duration) *CommentService {
	return &CommentService{
		feedback:     feedback,
		comments:     comments,
		users:        users,
		now:          time.Now,
		storeTimeout: storeTimeout,
	}
}

func (s *CommentService) List(ctx context.Context, id *Identity, feedbackID string) (*Thread, error) {
	caps := CapabilitiesFor(id)
	if !caps.Authenticated {
		return nil, UnauthorizedError("Unauthorized")
	}
	oid, err := parseFeedbackID(feedbackID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	f, err := s.findFeedback(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !caps.CanViewAll && !f.CreatedByUser(caps.UserID) {
		return nil, ForbiddenError("Forbidden")
	}

	comments, err := s.comments.ListComments(ctx, oid)
	if err != nil {
		return nil, InternalError("list comments", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return &Thread{
		FeedbackID: oid.Hex(),
		State:      ThreadStateOf(comments).String(),
		Results:    comments,
		Total:      len(comments),
	}, nil
}

// Add appends a comment. Admins may always post; the item's creator may post only
// after an admin has replied and never twice in a row.
func (s *CommentService) Add(ctx context.Context, id *Identity, feedbackID string, in AddCommentInput) (*models.Comment, error) {
	caps := CapabilitiesFor(id)
	if !caps.Authenticated {
		return nil, UnauthorizedError("Unauthorized")
	}
	oid, err := parseFeedbackID(feedbackID)
	if err != nil {
		return nil, err
	}
	in.Body = strings.TrimSpace(in.Body)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	f, err := s.findFeedback(ctx, oid)
	if err != nil {
		return nil, err
	}

	if !caps.CanCommentUnconditionally {
		if !f.CreatedByUser(caps.UserID) {
			return nil, ForbiddenError("Forbidden")
		}
		existing, err := s.comments.ListComments(ctx, oid)
		if err != nil {
			return nil, InternalError("list comments", err)
		}
		if err := checkReplyGate(existing, caps.UserID); err != nil {
			return nil, err
		}
	}

	author, err := s.authorOf(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &models.Comment{
		FeedbackID: oid,
		Body:       in.Body,
		Author:     author,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, InternalError("create comment", err)
	}
	return c, nil
}

func (s *CommentService) findFeedback(ctx context.Context, oid primitive.ObjectID) (*models.Feedback, error) {
	f, err := s.feedback.FindFeedback(ctx, oid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("Feedback not found")
	}
	if err != nil {
		return nil, InternalError("find feedback", err)
	}
	return f, nil
}

// authorOf snapshots the author from the stored account so the comment keeps the
// name and role in effect when it was written. A token whose role no longer
// matches the account is rejected, since the reply gate already trusted it.
func (s *CommentService) authorOf(ctx context.Context, id *Identity) (models.CommentAuthor, error) {
	author := models.CommentAuthor{ID: id.UserID, Name: id.Name, Role: id.Role}
	u, err := s.users.FindUserByID(ctx, id.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return author, UnauthorizedError("Unauthorized")
	}
	if err != nil {
		return author, InternalError("find user by id", err)
	}
	if u.Role != id.Role {
		return author, UnauthorizedError("Unauthorized")
	}
	author.Name = u.Name
	return author, nil
}
