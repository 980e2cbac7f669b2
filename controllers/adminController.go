package controllers

import (
	"net/http"
	"strconv"

	"civic-issue-tracker/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminController exposes the admin triage and user-management surface.
// All routes behind it run through the admin middleware.
type AdminController struct {
	Issues *services.IssueService
	Admin  *services.AdminService
}

func NewAdminController(issues *services.IssueService, admin *services.AdminService) *AdminController {
	return &AdminController{Issues: issues, Admin: admin}
}

// Dashboard returns the admin rollups, computed live from the store.
func (ac *AdminController) Dashboard(c *gin.Context) {
	d, err := ac.Admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"statistics": gin.H{
			"issues": d.Issues,
			"users":  d.Users,
		},
		"charts":           d.Charts,
		"topIssues":        d.TopIssues,
		"recentActivities": d.RecentActivities,
	})
}

// GetIssues lists issues with admin filters (status, assignee).
func (ac *AdminController) GetIssues(c *gin.Context) {
	f := parseIssueFilter(c)
	if c.Query("limit") == "" {
		f.Limit = 20
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		id, err := primitive.ObjectIDFromHex(assignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid assignedTo ID"})
			return
		}
		f.AssignedTo = &id
	}

	issues, total, err := ac.Issues.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issues":  issues,
		"pagination": gin.H{
			"currentPage": f.Page,
			"totalPages":  (total + f.Limit - 1) / f.Limit,
			"totalIssues": total,
		},
	})
}

// AssignIssue hands an issue to an admin; status moves to under-review.
func (ac *AdminController) AssignIssue(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		AdminID string `json:"adminId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid admin ID is required"})
		return
	}

	adminID, err := primitive.ObjectIDFromHex(input.AdminID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid admin ID is required"})
		return
	}

	issue, err := ac.Issues.Assign(c.Request.Context(), p, id, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Issue assigned successfully",
		"issue":   issue,
	})
}

// UpdateIssueStatus applies an admin status change via the transition
// engine.
func (ac *AdminController) UpdateIssueStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		Status          string `json:"status" binding:"required"`
		ResolutionNotes string `json:"resolutionNotes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid status is required"})
		return
	}

	issue, err := ac.Issues.SetStatus(c.Request.Context(), p, id, input.Status, input.ResolutionNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Issue status updated successfully",
		"issue":   issue,
	})
}

// DeleteIssue removes an issue permanently.
func (ac *AdminController) DeleteIssue(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	if err := ac.Issues.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Issue deleted successfully",
	})
}

// GetUsers lists users with role and active filters.
func (ac *AdminController) GetUsers(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	if limit < 1 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	f := services.UserFilter{
		Role:  c.Query("role"),
		Page:  page,
		Limit: limit,
	}
	if isActive := c.Query("isActive"); isActive != "" {
		active := isActive == "true"
		f.IsActive = &active
	}

	users, total, err := ac.Admin.ListUsers(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"pagination": gin.H{
			"currentPage": f.Page,
			"totalPages":  (total + f.Limit - 1) / f.Limit,
			"totalUsers":  total,
		},
	})
}

// UpdateUserRole promotes or demotes a user. Self-role-change is rejected.
func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Role must be either \"citizen\" or \"admin\""})
		return
	}

	user, err := ac.Admin.SetUserRole(c.Request.Context(), p, userID, input.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User role updated successfully",
		"user":    user,
	})
}

// UpdateUserStatus activates or deactivates a user account.
// Self-deactivation is rejected.
func (ac *AdminController) UpdateUserStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "isActive must be a boolean"})
		return
	}

	user, err := ac.Admin.SetUserActive(c.Request.Context(), p, userID, *input.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "User deactivated successfully"
	if *input.IsActive {
		message = "User activated successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"user":    user,
	})
}
