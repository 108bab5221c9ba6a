package authUtils

import (
	"cityfix-be/models"
	"cityfix-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CurrentActor builds the core actor from whatever the auth middleware put on
// the context. Requests with no verified identity act as anonymous reporters.
func CurrentActor(c *gin.Context) services.Actor {
	actor := services.Anonymous()

	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok {
			if id, err := primitive.ObjectIDFromHex(s); err == nil {
				actor.ID = id
			}
		}
	}
	if v, ok := c.Get("name"); ok {
		if s, ok := v.(string); ok {
			actor.Name = s
		}
	}
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok && s != "" {
			actor.Role = models.Role(s)
		}
	}

	return actor
}
