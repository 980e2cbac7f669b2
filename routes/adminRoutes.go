package routes

import (
	"civic-issue-tracker/controllers"
	"civic-issue-tracker/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin routes. Everything here requires the admin
// role.
func AdminRoutes(r *gin.Engine, ac *controllers.AdminController) {
	admin := r.Group("/api/admin", middlewares.AuthMiddleware(), middlewares.AdminMiddleware())
	{
		admin.GET("/dashboard", ac.Dashboard)
		admin.GET("/issues", ac.GetIssues)
		admin.PUT("/issues/:id/assign", ac.AssignIssue)
		admin.PUT("/issues/:id/status", ac.UpdateIssueStatus)
		admin.DELETE("/issues/:id", ac.DeleteIssue)
		admin.GET("/users", ac.GetUsers)
		admin.PUT("/users/:id/role", ac.UpdateUserRole)
		admin.PUT("/users/:id/status", ac.UpdateUserStatus)
	}
}
