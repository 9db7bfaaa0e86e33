package services

import "go.mongodb.org/mongo-driver/bson/primitive"

// Capabilities is the per-request permission set. Services decide visibility and
// mutation rights from it rather than from role strings.
type Capabilities struct {
	Authenticated             bool
	UserID                    primitive.ObjectID
	CanViewAll                bool
	CanMutateStatus           bool
	CanCommentUnconditionally bool
}

func CapabilitiesFor(id *Identity) Capabilities {
	if id == nil {
		return Capabilities{}
	}
	c := Capabilities{Authenticated: true, UserID: id.UserID}
	if id.IsAdmin() {
		c.CanViewAll = true
		c.CanMutateStatus = true
		c.CanCommentUnconditionally = true
	}
	return c
}
