package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/config"
	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController) {
	issue := r.Group("/api/issue")
	{
		issue.GET("", ic.GetAllIssues)
		issue.GET("/:id", ic.GetIssue)
		issue.POST("/create",
			middlewares.AuthMiddleware(),
			middlewares.IssueRateLimiter(config.DailyIssueLimit()),
			ic.CreateIssue)
		issue.GET("/mine", middlewares.AuthMiddleware(), ic.GetMyIssues)
		issue.PUT("/:id", middlewares.AuthMiddleware(), ic.UpdateIssue)
		issue.DELETE("/:id", middlewares.AuthMiddleware(), ic.DeleteIssue)
		issue.PATCH("/upvote/:id", middlewares.AuthMiddleware(), ic.UpvoteIssue)
	}
}
