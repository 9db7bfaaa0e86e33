package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentAuthor is a snapshot of the author taken when the comment is written.
type CommentAuthor struct {
	ID   primitive.ObjectID `bson:"id" json:"id"`
	Name string             `bson:"name" json:"name"`
	Role Role               `bson:"role" json:"role"`
}

type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID primitive.ObjectID `bson:"feedback_id" json:"feedbackId"`
	Body       string             `bson:"body" json:"body"`
	Author     CommentAuthor      `bson:"author" json:"author"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}
