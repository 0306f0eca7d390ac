package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// StaffRoutes sets up the staff dashboard routes
func StaffRoutes(r *gin.Engine, sc *controllers.StaffController) {
	staff := r.Group("/api/staff", middlewares.AuthMiddleware())
	{
		staff.GET("/assigned-issues", sc.AssignedIssues)
		staff.PATCH("/update-progress/:id", sc.UpdateProgress)
		staff.GET("/stats", sc.StaffStats)
	}
}
