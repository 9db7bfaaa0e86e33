package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces are satisfied by the Mongo stores in internal/database and by the
// in-memory stores in internal/database/dbtest.

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	FindFeedback(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error)
	ListFeedback(ctx context.Context, q database.FeedbackQuery) ([]models.Feedback, int64, error)
	UpdateFeedbackStatus(ctx context.Context, id primitive.ObjectID, status models.Status, now time.Time) (*models.Feedback, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, feedbackID primitive.ObjectID) ([]models.Comment, error)
}

func parseFeedbackID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ValidationError("Invalid feedback id")
	}
	return id, nil
}
