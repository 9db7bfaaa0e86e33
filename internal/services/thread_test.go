package services

import (
	"testing"

	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func commentBy(id primitive.ObjectID, role models.Role) models.Comment {
	return models.Comment{Author: models.CommentAuthor{ID: id, Role: role}}
}

func TestThreadStateOf(t *testing.T) {
	user, admin := primitive.NewObjectID(), primitive.NewObjectID()

	assert.Equal(t, ThreadNoAdminReply, ThreadStateOf(nil))
	assert.Equal(t, ThreadNoAdminReply, ThreadStateOf([]models.Comment{commentBy(user, models.RoleUser)}))

	thread := []models.Comment{commentBy(admin, models.RoleAdmin)}
	assert.Equal(t, ThreadAwaitingUser, ThreadStateOf(thread))

	thread = append(thread, commentBy(user, models.RoleUser))
	assert.Equal(t, ThreadAwaitingAdmin, ThreadStateOf(thread))

	thread = append(thread, commentBy(admin, models.RoleAdmin))
	assert.Equal(t, ThreadAwaitingUser, ThreadStateOf(thread))
}

func TestCheckReplyGate(t *testing.T) {
	user, admin := primitive.NewObjectID(), primitive.NewObjectID()

	assert.Equal(t, KindPolicyViolation, KindOf(checkReplyGate(nil, user)))
	assert.NoError(t, checkReplyGate([]models.Comment{commentBy(admin, models.RoleAdmin)}, user))
	assert.Equal(t, KindPolicyViolation, KindOf(checkReplyGate([]models.Comment{
		commentBy(admin, models.RoleAdmin),
		commentBy(user, models.RoleUser),
	}, user)))
}
