package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// AdminRoutes sets up the admin dashboard routes. Authorization happens
// in the service layer against the stored role, not here.
func AdminRoutes(r *gin.Engine, ac *controllers.AdminController) {
	admin := r.Group("/api/admin", middlewares.AuthMiddleware())
	{
		admin.PATCH("/assign-staff/:id", ac.AssignStaff)
		admin.PATCH("/reject-issue/:id", ac.RejectIssue)
		admin.GET("/users", ac.ListUsers)
		admin.PATCH("/users/:id/role", ac.SetUserRole)
		admin.PATCH("/user-block/:id", ac.SetUserBlocked)
		admin.GET("/staff/list", ac.StaffList)
		admin.POST("/add-staff", ac.AddStaff)
		admin.PATCH("/update-staff/:id", ac.UpdateStaff)
		admin.DELETE("/delete-staff/:id", ac.RemoveStaff)
		admin.GET("/stats", ac.AdminStats)
		admin.GET("/payments", ac.ListPayments)
	}
}
