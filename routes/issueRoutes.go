package routes

import (
	"civic-issue-tracker/controllers"
	"civic-issue-tracker/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, dailyIssueLimit int) {
	issue := r.Group("/api/issues")
	{
		issue.POST("", middlewares.AuthMiddleware(), middlewares.IssueRateLimiter(dailyIssueLimit), ic.CreateIssue)
		issue.GET("", ic.GetAllIssues)
		issue.GET("/recent", ic.RecentIssues)
		issue.GET("/:id", ic.GetIssue)
		issue.PATCH("/:id/resolve", middlewares.AuthMiddleware(), ic.SubmitProof)
		issue.PATCH("/:id/verify", middlewares.AuthMiddleware(), middlewares.AdminMiddleware(), ic.VerifyIssue)
		issue.POST("/:id/comment", middlewares.AuthMiddleware(), ic.AddComment)
		issue.POST("/:id/vote", middlewares.AuthMiddleware(), ic.CastVote)
	}
}
