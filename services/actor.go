package services

import (
	"cityfix-be/models"
	"cityfix-be/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the already-verified identity behind a core operation, supplied by
// the auth layer. Anonymous reporters carry RoleUser and a zero ID.
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role models.Role
}

// Anonymous is the actor for unauthenticated public requests.
func Anonymous() Actor {
	return Actor{Role: models.RoleUser}
}

func forbiddenFor(action Action) error {
	return apperr.Forbidden("not permitted to %s", action)
}
