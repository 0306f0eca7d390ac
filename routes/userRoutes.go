package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// UserRoutes sets up identity lookup routes
func UserRoutes(r *gin.Engine, uc *controllers.UserController) {
	users := r.Group("/api/users", middlewares.AuthMiddleware())
	{
		users.GET("/:email/role", uc.GetUserRole)
		users.GET("/email/:email", uc.GetUserByEmail)
	}
}
