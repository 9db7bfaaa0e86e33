package services

import (
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ThreadState is where a comment thread stands, derived from its comments in order.
type ThreadState int

const (
	// ThreadNoAdminReply: no admin has commented yet.
	ThreadNoAdminReply ThreadState = iota
	// ThreadAwaitingAdmin: the creator spoke last, an admin is expected next.
	ThreadAwaitingAdmin
	// ThreadAwaitingUser: an admin spoke last, the creator may reply.
	ThreadAwaitingUser
)

func (s ThreadState) String() string {
	switch s {
	case ThreadAwaitingAdmin:
		return "awaiting_admin"
	case ThreadAwaitingUser:
		return "awaiting_user"
	default:
		return "no_admin_reply"
	}
}

// Next returns the state after a comment by an author with the given role.
func (s ThreadState) Next(role models.Role) ThreadState {
	if role == models.RoleAdmin {
		return ThreadAwaitingUser
	}
	if s == ThreadNoAdminReply {
		return ThreadNoAdminReply
	}
	return ThreadAwaitingAdmin
}

func ThreadStateOf(comments []models.Comment) ThreadState {
	state := ThreadNoAdminReply
	for _, c := range comments {
		state = state.Next(c.Author.Role)
	}
	return state
}

// checkReplyGate enforces the posting order for a non-admin caller on a thread they
// own: an admin must have replied, and the caller may not post twice in a row.
func checkReplyGate(comments []models.Comment, caller primitive.ObjectID) error {
	if ThreadStateOf(comments) == ThreadNoAdminReply {
		return PolicyViolation("You can reply after an admin responds")
	}
	if last := comments[len(comments)-1]; last.Author.ID == caller {
		return PolicyViolation("Please wait for an admin reply before posting again")
	}
	return nil
}
