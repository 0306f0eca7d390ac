package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/services"
)

type UserController struct {
	Users *services.UserService
}

// GetUserRole returns the stored role for an identity. Clients use this
// to pick a dashboard; the backend never trusts it back.
func (uc *UserController) GetUserRole(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	role, err := uc.Users.RoleOf(ctx, c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// GetUserByEmail returns the public profile fields for an identity
func (uc *UserController) GetUserByEmail(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.Users.Get(ctx, c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"isPremium": user.IsPremium,
	})
}
