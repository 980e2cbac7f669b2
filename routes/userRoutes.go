package routes

import (
	"civic-issue-tracker/controllers"
	"civic-issue-tracker/middlewares"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up the user profile routes
func UserRoutes(r *gin.Engine, uc *controllers.UserController) {
	user := r.Group("/api/users", middlewares.AuthMiddleware())
	{
		user.GET("/profile", uc.GetProfile)
		user.PUT("/profile", uc.UpdateProfile)
		user.GET("/stats", uc.GetStats)
		user.GET("/issues", uc.GetMyIssues)
	}
}
