package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/middlewares"
	"civicfix-be/services"
)

type StaffController struct {
	Issues *services.IssueService
	Stats  *services.StatsService
}

// AssignedIssues returns the caller's queue, boosted issues first
func (sc *StaffController) AssignedIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := sc.Issues.ListAssigned(ctx, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// UpdateProgress advances an assigned issue one status forward
func (sc *StaffController) UpdateProgress(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := sc.Issues.Advance(ctx, id, input.Status, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// StaffStats returns rollups over the caller's assigned issues
func (sc *StaffController) StaffStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := sc.Stats.Staff(ctx, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
