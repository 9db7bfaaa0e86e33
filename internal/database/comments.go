package database

import (
	"context"

	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentStore struct {
	col *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{col: db.Collection(CommentsCollection)}
}

func (s *CommentStore) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, c)
	return err
}

// ListComments returns the thread oldest-first.
func (s *CommentStore) ListComments(ctx context.Context, feedbackID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cur, err := s.col.Find(ctx, bson.M{"feedback_id": feedbackID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
