package controllers

import (
	"context"
	"strconv"
	"time"

	"cityfix-be/pkg/resp"
	"cityfix-be/services"
	authUtils "cityfix-be/utils"

	"github.com/gin-gonic/gin"
)

type IssueController struct {
	issues *services.IssueService
}

func NewIssueController(issues *services.IssueService) *IssueController {
	return &IssueController{issues: issues}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// CreateIssue handles public issue reporting
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var input struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Area        string   `json:"area"`
		Location    *string  `json:"location"`
		Creator     *string  `json:"creator"`
		Phone       *string  `json:"phone"`
		Images      []string `json:"images"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Create(ctx, authUtils.CurrentActor(c), services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Area:        input.Area,
		Location:    input.Location,
		Creator:     input.Creator,
		Phone:       input.Phone,
		Images:      input.Images,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.Created(c, issue)
}

// GetIssues handles the filtered, paginated list view
func (ic *IssueController) GetIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	params := services.QueryParams{
		Page:        page,
		PageSize:    pageSize,
		Status:      c.Query("status"),
		Area:        c.Query("area"),
		IssueNumber: c.Query("issueNumber"),
		Title:       c.Query("title"),
		Phone:       c.Query("phone"),
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ic.issues.Query(ctx, authUtils.CurrentActor(c), params)
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, gin.H{
		"data":         result.Items,
		"total":        result.Total,
		"page":         page,
		"pageSize":     pageSize,
		"statusCounts": result.StatusCounts,
	})
}

// GetIssue retrieves one issue aggregate with its follow-ups
func (ic *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Get(ctx, authUtils.CurrentActor(c), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, issue)
}

// UpdateIssue applies an admin metadata edit
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	var input struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Area        *string    `json:"area"`
		Location    *string    `json:"location"`
		Creator     *string    `json:"creator"`
		Phone       *string    `json:"phone"`
		Images      []string   `json:"images"`
		Deadline    *time.Time `json:"deadline"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Update(ctx, authUtils.CurrentActor(c), c.Param("id"), services.UpdateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Area:        input.Area,
		Location:    input.Location,
		Creator:     input.Creator,
		Phone:       input.Phone,
		Images:      input.Images,
		Deadline:    input.Deadline,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, issue)
}

// DeleteIssue removes an issue and all of its follow-ups
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ic.issues.Delete(ctx, authUtils.CurrentActor(c), c.Param("id")); err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, gin.H{"message": "Issue deleted successfully"})
}

// ResolveIssue marks a pending issue resolved
func (ic *IssueController) ResolveIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Resolve(ctx, authUtils.CurrentActor(c), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, issue)
}

// RejectIssue marks a pending issue rejected with an optional reason
func (ic *IssueController) RejectIssue(c *gin.Context) {
	var input struct {
		Reason *string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Reject(ctx, authUtils.CurrentActor(c), c.Param("id"), input.Reason)
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, issue)
}

// SetDeadline overwrites the issue deadline
func (ic *IssueController) SetDeadline(c *gin.Context) {
	var input struct {
		Deadline time.Time `json:"deadline" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.SetDeadline(ctx, authUtils.CurrentActor(c), c.Param("id"), input.Deadline)
	if err != nil {
		resp.Error(c, err)
		return
	}

	resp.OK(c, issue)
}
