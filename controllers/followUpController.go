package controllers

import (
	"cityfix-be/pkg/resp"
	"cityfix-be/services"
	authUtils "cityfix-be/utils"

	"github.com/gin-gonic/gin"
)

type FollowUpController struct {
	followUps *services.FollowUpService
}

func NewFollowUpController(followUps *services.FollowUpService) *FollowUpController {
	return &FollowUpController{followUps: followUps}
}

// CreateFollowUp attaches a remediation record to an issue
func (fc *FollowUpController) CreateFollowUp(c *gin.Context) {
	var input struct {
		HandlerName       string   `json:"handlerName"`
		HandleDescription *string  `json:"handleDescription"`
		HandleImages      []string `json:"handleImages"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	fu, err := fc.followUps.Create(ctx, authUtils.CurrentActor(c), c.Param("id"), services.CreateFollowUpInput{
		HandlerName:       input.HandlerName,
		HandleDescription: input.HandleDescription,
		HandleImages:      input.HandleImages,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.Created(c, fu)
}

// UpdateFollowUp replaces a follow-up's description/images
func (fc *FollowUpController) UpdateFollowUp(c *gin.Context) {
	var input struct {
		HandleDescription *string  `json:"handleDescription"`
		HandleImages      []string `json:"handleImages"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	fu, err := fc.followUps.Update(ctx, authUtils.CurrentActor(c), c.Param("id"), services.UpdateFollowUpInput{
		HandleDescription: input.HandleDescription,
		HandleImages:      input.HandleImages,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, fu)
}

// DeleteFollowUp removes a follow-up and recomputes the issue status
func (fc *FollowUpController) DeleteFollowUp(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := fc.followUps.Delete(ctx, authUtils.CurrentActor(c), c.Param("id")); err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, gin.H{"message": "Follow-up deleted successfully"})
}
