package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reply(body string) AddCommentInput { return AddCommentInput{Body: body} }

func TestThreadGateSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ada", "ada@example.com")
	admin := f.register(t, "Boss", testAdminEmail)

	item, err := f.feedback.Create(ctx, owner, CreateFeedbackInput{Title: "Login flaky", Body: "Sometimes fails"})
	require.NoError(t, err)

	// creator cannot open the conversation
	_, err = f.comments.Add(ctx, owner, item.ID, reply("hello?"))
	require.Error(t, err)
	assert.Equal(t, KindPolicyViolation, KindOf(err))
	assert.Contains(t, err.(*Error).Message, "reply after an admin responds")

	_, err = f.comments.Add(ctx, admin, item.ID, reply("Can you share steps?"))
	require.NoError(t, err)
	// admins may post back to back
	_, err = f.comments.Add(ctx, admin, item.ID, reply("Also your browser please"))
	require.NoError(t, err)

	c, err := f.comments.Add(ctx, owner, item.ID, reply("Chrome, steps attached"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, c.Author.Role)
	assert.Equal(t, "Ada", c.Author.Name)

	_, err = f.comments.Add(ctx, owner, item.ID, reply("any news?"))
	require.Error(t, err)
	assert.Equal(t, KindPolicyViolation, KindOf(err))
	assert.Contains(t, err.(*Error).Message, "wait for an admin reply")

	c, err = f.comments.Add(ctx, admin, item.ID, reply("Fixed in next release"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, c.Author.Role)

	_, err = f.comments.Add(ctx, owner, item.ID, reply("Thanks!"))
	require.NoError(t, err)

	thread, err := f.comments.List(ctx, owner, item.ID)
	require.NoError(t, err)
	require.Len(t, thread.Results, 5)
	assert.Equal(t, 5, thread.Total)
	assert.Equal(t, "Can you share steps?", thread.Results[0].Body)
	assert.Equal(t, "Thanks!", thread.Results[4].Body)
	assert.Equal(t, ThreadAwaitingAdmin.String(), thread.State)
}

func TestCommentAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ada", "ada@example.com")
	other := f.register(t, "Bob", "bob@example.com")
	admin := f.register(t, "Boss", testAdminEmail)

	item, err := f.feedback.Create(ctx, owner, CreateFeedbackInput{Title: "Private", Body: "only for admins"})
	require.NoError(t, err)

	_, err = f.comments.List(ctx, other, item.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = f.comments.Add(ctx, other, item.ID, reply("sneaky"))
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = f.comments.List(ctx, nil, item.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	thread, err := f.comments.List(ctx, admin, item.ID)
	require.NoError(t, err)
	assert.Empty(t, thread.Results)
	assert.NotNil(t, thread.Results)
	assert.Equal(t, 0, thread.Total)
	assert.Equal(t, "no_admin_reply", thread.State)

	_, err = f.comments.List(ctx, admin, "xyz")
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = f.comments.List(ctx, admin, primitive.NewObjectID().Hex())
	assert.Equal(t, KindNotFound, KindOf(err))
	_, err = f.comments.Add(ctx, admin, primitive.NewObjectID().Hex(), reply("hello"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAnonymousThreadIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ada", "ada@example.com")
	admin := f.register(t, "Boss", testAdminEmail)

	item, err := f.feedback.Create(ctx, owner, CreateFeedbackInput{Title: "Anonymous", Body: "no name attached", IsAnonymous: true})
	require.NoError(t, err)

	_, err = f.comments.Add(ctx, admin, item.ID, reply("Thanks for the report"))
	require.NoError(t, err)

	_, err = f.comments.List(ctx, owner, item.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCommentBodyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Boss", testAdminEmail)
	item, err := f.feedback.Create(ctx, admin, CreateFeedbackInput{Title: "Valid", Body: "valid body"})
	require.NoError(t, err)

	_, err = f.comments.Add(ctx, admin, item.ID, reply("   "))
	assert.Equal(t, KindValidation, KindOf(err))

	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.comments.Add(ctx, admin, item.ID, reply(string(long)))
	assert.Equal(t, KindValidation, KindOf(err))

	c, err := f.comments.Add(ctx, admin, item.ID, reply("  trimmed  "))
	require.NoError(t, err)
	assert.Equal(t, "trimmed", c.Body)
	assert.Equal(t, item.ID, c.FeedbackID.Hex())
}

func TestCommentRejectsStaleRoleToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ada", "ada@example.com")
	admin := f.register(t, "Boss", testAdminEmail)

	item, err := f.feedback.Create(ctx, owner, CreateFeedbackInput{Title: "Named", Body: "has an owner"})
	require.NoError(t, err)

	stale := &Identity{UserID: owner.UserID, Role: models.RoleAdmin, Email: owner.Email, Name: owner.Name}
	_, err = f.comments.Add(ctx, stale, item.ID, reply("posing as staff"))
	assert.Equal(t, KindUnauthorized, KindOf(err))

	thread, err := f.comments.List(ctx, admin, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, thread.Total)
	assert.Equal(t, "no_admin_reply", thread.State)
}
