package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/middlewares"
	"civicfix-be/models"
	"civicfix-be/services"
	"civicfix-be/store"
)

type IssueController struct {
	Issues *services.IssueService
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

func issueID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreateIssue handles the creation of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var input struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Description string  `json:"description" binding:"required,max=1000"`
		Category    string  `json:"category" binding:"required"`
		Location    string  `json:"location" binding:"required,max=200"`
		ImageURL    *string `json:"imageUrl,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.Issues.Create(ctx, services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
	}, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues handles retrieving issues with filtering and pagination
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	filter := store.IssueFilter{
		Reporter: c.Query("reporter"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", "newest"),
	}
	if category := c.Query("category"); category != "" && category != "all" {
		filter.Category = models.IssueCategory(category)
	}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, ok := models.NormalizeStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = status
	}
	if raw := c.Query("priority"); raw != "" && raw != "all" {
		priority, ok := models.NormalizePriority(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		filter.Priority = priority
	}
	filter.Page = intQuery(c, "page", 1)
	filter.Limit = intQuery(c, "limit", 10)

	issues, total, err := ic.Issues.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": total,
		"totalPages":  totalPages,
		"currentPage": filter.Page,
	})
}

// GetIssue retrieves an issue by its ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.Issues.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"issue": issue}
	if identity := middlewares.Identity(c); identity != "" {
		response["userHasVoted"] = issue.HasVoted(identity)
	}
	c.JSON(http.StatusOK, response)
}

// GetMyIssues retrieves all issues reported by the authenticated citizen
func (ic *IssueController) GetMyIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ic.Issues.ListByReporter(ctx, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// UpdateIssue lets the reporter edit a still-pending issue
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Location    *string `json:"location,omitempty"`
		ImageURL    *string `json:"imageUrl,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := store.IssuePatch{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
	}
	if input.Category != nil {
		category := models.IssueCategory(*input.Category)
		patch.Category = &category
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.Issues.Update(ctx, id, patch, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// DeleteIssue removes a pending issue; the reporter may delete their own,
// an admin may delete anyone's, but never past pending either way
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ic.Issues.Delete(ctx, id, middlewares.Identity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// UpvoteIssue adds the caller's vote to the issue ledger
func (ic *IssueController) UpvoteIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.Issues.Vote(ctx, id, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Vote cast successfully",
		"votes":        issue.VoteCount,
		"userHasVoted": true,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
