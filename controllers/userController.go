package controllers

import (
	"net/http"

	"civic-issue-tracker/models"
	"civic-issue-tracker/services"

	"github.com/gin-gonic/gin"
)

// UserController exposes the citizen's own profile and stats.
type UserController struct {
	Service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{Service: service}
}

// GetProfile returns the authenticated user's profile.
func (uc *UserController) GetProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := uc.Service.Profile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile updates name, phone and address.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var input struct {
		Name    *string         `json:"name"`
		Phone   *string         `json:"phone"`
		Address *models.Address `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := uc.Service.UpdateProfile(c.Request.Context(), p, services.ProfileUpdate{
		Name:    input.Name,
		Phone:   input.Phone,
		Address: input.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// GetStats returns the caller's issue rollup.
func (uc *UserController) GetStats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	stats, err := uc.Service.Stats(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// GetMyIssues pages through the caller's own reports.
func (uc *UserController) GetMyIssues(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	f := parseIssueFilter(c)
	issues, total, err := uc.Service.MyIssues(c.Request.Context(), p, f)
	if err != nil {
		respondError(c, err)
		return
	}

	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issues":  issues,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  (total + limit - 1) / limit,
			"totalIssues": total,
			"hasNext":     page*limit < total,
			"hasPrev":     page > 1,
		},
	})
}
