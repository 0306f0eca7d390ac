package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/middlewares"
	"civicfix-be/models"
	"civicfix-be/services"
	"civicfix-be/store"
)

type AdminController struct {
	Issues   *services.IssueService
	Users    *services.UserService
	Stats    *services.StatsService
	Payments *services.PaymentService
}

// AssignStaff hands a pending issue to a staff member
func (ac *AdminController) AssignStaff(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		StaffEmail string `json:"staffEmail" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ac.Issues.AssignStaff(ctx, id, input.StaffEmail, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// RejectIssue moves a pending issue to rejected
func (ac *AdminController) RejectIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ac.Issues.Reject(ctx, id, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// ListUsers returns the user directory, optionally filtered by search text
func (ac *AdminController) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := ac.Users.List(ctx, c.Query("searchText"), middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func userID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// SetUserRole promotes or demotes an account
func (ac *AdminController) SetUserRole(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.Users.SetRole(ctx, id, models.Role(input.Role), middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetUserBlocked blocks or unblocks an account
func (ac *AdminController) SetUserBlocked(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var input struct {
		Blocked *bool `json:"blocked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.Users.SetBlocked(ctx, id, *input.Blocked, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// StaffList returns the staff roster
func (ac *AdminController) StaffList(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	staff, err := ac.Users.StaffList(ctx, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// AddStaff creates a new staff account
func (ac *AdminController) AddStaff(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.Users.AddStaff(ctx, services.AddStaffInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateStaff edits a staff member's profile
func (ac *AdminController) UpdateStaff(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name" binding:"required,max=50"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.Users.UpdateStaff(ctx, id, input.Name, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RemoveStaff demotes a staff account back to citizen
func (ac *AdminController) RemoveStaff(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.Users.RemoveStaff(ctx, id, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AdminStats returns the dashboard rollups
func (ac *AdminController) AdminStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ac.Stats.Admin(ctx, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPayments returns payments, filterable by purpose and status
func (ac *AdminController) ListPayments(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	filter := store.PaymentFilter{
		Purpose: models.PaymentPurpose(c.Query("purpose")),
		Status:  models.PaymentStatus(c.Query("status")),
		Payer:   c.Query("payer"),
	}

	payments, err := ac.Payments.List(ctx, filter, middlewares.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
