package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"cityfix-be/pkg/resp"
	"cityfix-be/repository"
	authUtils "cityfix-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthController struct {
	users repository.UserStore
}

func NewAuthController(users repository.UserStore) *AuthController {
	return &AuthController{users: users}
}

// Login authenticates a resolver/admin account and issues a bearer token
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := ac.users.FindByUsername(ctx, input.Username)
	if err != nil {
		resp.Unauthorized(c, "Invalid credentials")
		return
	}

	if !user.ComparePassword(input.Password) {
		resp.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := authUtils.GenerateToken(user)
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "message": "Something went wrong"})
		return
	}

	resp.OK(c, gin.H{
		"access_token": token,
		"user": gin.H{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"name":     user.Name,
			"role":     user.Role,
		},
	})
}

// GetProfile returns the authenticated account
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		resp.Unauthorized(c, "User not authenticated")
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		resp.BadRequest(c, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := ac.users.FindByID(ctx, objectID)
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, gin.H{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"name":     user.Name,
		"role":     user.Role,
	})
}
