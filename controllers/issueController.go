package controllers

import (
	"net/http"
	"strconv"

	"civic-issue-tracker/middlewares"
	"civic-issue-tracker/models"
	"civic-issue-tracker/services"
	"civic-issue-tracker/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueController exposes the citizen-facing issue surface.
type IssueController struct {
	Service *services.IssueService
	Files   utils.FileStore
}

func NewIssueController(service *services.IssueService, files utils.FileStore) *IssueController {
	return &IssueController{Service: service, Files: files}
}

func issueID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid issue ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func principal(c *gin.Context) (models.Principal, bool) {
	p, exists := middlewares.GetPrincipal(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return models.Principal{}, false
	}
	return p, true
}

func parseIssueFilter(c *gin.Context) services.IssueFilter {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	f := services.IssueFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}
	switch c.DefaultQuery("sortBy", "createdAt") {
	case "updatedAt":
		f.SortBy = "updatedAt"
	default:
		f.SortBy = "createdAt"
	}
	f.SortAsc = c.Query("sortOrder") == "asc" || c.Query("sort") == "oldest"
	return f
}

// CreateIssue handles the creation of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var input struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Category    string `json:"category" binding:"required"`
		Severity    string `json:"severity"`
		Location    struct {
			Coordinates []float64 `json:"coordinates" binding:"required,len=2"`
			Address     string    `json:"address"`
		} `json:"location" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid location format or missing fields"})
		return
	}

	issue, err := ic.Service.Create(c.Request.Context(), p, services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Severity:    input.Severity,
		Longitude:   input.Location.Coordinates[0],
		Latitude:    input.Location.Coordinates[1],
		Address:     input.Location.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Issue reported successfully.",
		"issue":   issue,
	})
}

// GetAllIssues lists issues with filtering, sorting and pagination.
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	f := parseIssueFilter(c)

	issues, total, err := ic.Service.List(c.Request.Context(), f)
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
		"success":     true,
		"issues":      issues,
		"totalIssues": total,
		"totalPages":  (total + limit - 1) / limit,
		"currentPage": page,
	})
}

// GetIssue retrieves a single issue by its ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	issue, err := ic.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issue": issue})
}

// RecentIssues returns the most recent geotagged issues for the map view.
func (ic *IssueController) RecentIssues(c *gin.Context) {
	issues, err := ic.Service.Nearby(c.Request.Context(), 19)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issues": issues})
}

// SubmitProof lets the reporting citizen upload a resolution proof image,
// moving the issue into pending-verification.
func (ic *IssueController) SubmitProof(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Proof image is required."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	proofRef, err := ic.Files.Save(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	issue, err := ic.Service.SubmitProof(c.Request.Context(), p, id, proofRef, c.PostForm("notes"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Proof submitted (pending admin verification).",
		"issue":   issue,
	})
}

// VerifyIssue lets an admin confirm a citizen-submitted resolution.
func (ic *IssueController) VerifyIssue(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	issue, err := ic.Service.Verify(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Issue verified & marked resolved.",
		"issue":   issue,
	})
}

// AddComment appends a comment to the issue's log.
func (ic *IssueController) AddComment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Comment cannot be empty."})
		return
	}

	issue, err := ic.Service.AddComment(c.Request.Context(), p, id, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment added", "issue": issue})
}

// CastVote sets or replaces the caller's vote on the issue.
func (ic *IssueController) CastVote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := issueID(c)
	if !ok {
		return
	}

	var input struct {
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid vote type."})
		return
	}

	issue, err := ic.Service.CastVote(c.Request.Context(), p, id, input.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Vote updated", "issue": issue})
}
