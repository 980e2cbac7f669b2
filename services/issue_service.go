package services

import (
	"context"
	"log"
	"strings"
	"time"

	"civic-issue-tracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueService owns the issue lifecycle: creation, the status transition
// engine, the vote/comment ledger, and the publish-after-commit fan-out.
// Every mutation broadcasts only after the store write has succeeded, and a
// rejected operation broadcasts nothing.
type IssueService struct {
	Issues IssueStore
	Users  UserStore
	RT     Broadcaster
	Mail   Notifier
}

// CreateIssueInput is the citizen-facing creation payload.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Severity    string
	Longitude   float64
	Latitude    float64
	Address     string
}

func (in *CreateIssueInput) validate() error {
	if n := len(strings.TrimSpace(in.Title)); n < 5 || n > 100 {
		return validationf("title must be 5-100 characters")
	}
	if n := len(strings.TrimSpace(in.Description)); n < 10 || n > 1000 {
		return validationf("description must be 10-1000 characters")
	}
	if !models.ValidCategory(in.Category) {
		return validationf("invalid category %q", in.Category)
	}
	if in.Severity != "" && !models.ValidSeverity(in.Severity) {
		return validationf("invalid severity %q", in.Severity)
	}
	return nil
}

// Create reports a new issue. Status always starts at pending regardless of
// input, and the full document is broadcast once stored.
func (s *IssueService) Create(ctx context.Context, p models.Principal, in CreateIssueInput) (*models.Issue, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	severity := models.IssueSeverity(in.Severity)
	if severity == "" {
		severity = models.SeverityMedium
	}

	now := time.Now()
	issue := &models.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    models.IssueCategory(in.Category),
		Severity:    severity,
		Status:      models.Pending,
		ReportedBy:  p.ID,
		Location: models.Location{
			Type:        "Point",
			Coordinates: []float64{in.Longitude, in.Latitude},
			Address:     in.Address,
		},
		Votes:     []models.Vote{},
		Comments:  []models.Comment{},
		IsVisible: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.RT.Broadcast(EventIssueCreated, issue)
	return issue, nil
}

// Get fetches a single issue by id.
func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return s.Issues.FindByID(ctx, id)
}

// List pages through issues matching the filter and returns the total count.
func (s *IssueService) List(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error) {
	return s.Issues.Find(ctx, f)
}

// Nearby returns recent geotagged issues for the map view.
func (s *IssueService) Nearby(ctx context.Context, limit int64) ([]models.Issue, error) {
	return s.Issues.Nearby(ctx, limit)
}

// SetStatus applies an admin status change. Terminal issues reject any
// further change, and entering resolved stamps actualResolutionTime.
func (s *IssueService) SetStatus(ctx context.Context, p models.Principal, id primitive.ObjectID, status, resolutionNotes string) (*models.Issue, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if len(resolutionNotes) > 500 {
		return nil, validationf("resolution notes cannot exceed 500 characters")
	}

	issue, err := s.Issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := models.IssueStatus(status)
	if err := CheckAdminTransition(issue.Status, target); err != nil {
		return nil, err
	}

	patch := IssueUpdate{Status: &target}
	if resolutionNotes != "" {
		patch.ResolutionNotes = &resolutionNotes
	}
	if target == models.Resolved {
		now := time.Now()
		patch.ActualResolutionTime = &now
	}

	oldStatus := issue.Status
	updated, err := s.Issues.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.RT.BroadcastToRoom(id.Hex(), EventIssueStatusUpdated, updated)
	s.RT.Broadcast(EventIssuesUpdated, nil)
	s.notifyStatusChange(ctx, updated, oldStatus)
	return updated, nil
}

// Assign hands an issue to an admin and forces its status to under-review.
// The target user must exist and hold the admin role.
func (s *IssueService) Assign(ctx context.Context, p models.Principal, id, adminID primitive.ObjectID) (*models.Issue, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	admin, err := s.Users.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != models.RoleAdmin {
		return nil, ErrNotFound
	}

	status := models.UnderReview
	updated, err := s.Issues.Update(ctx, id, IssueUpdate{
		Status:     &status,
		AssignedTo: &adminID,
	})
	if err != nil {
		return nil, err
	}

	s.RT.BroadcastToRoom(id.Hex(), EventIssueAssigned, updated)
	s.RT.Broadcast(EventIssuesUpdated, nil)
	return updated, nil
}

// SubmitProof records a resolution proof uploaded by the reporting citizen
// and moves the issue into pending-verification.
func (s *IssueService) SubmitProof(ctx context.Context, p models.Principal, id primitive.ObjectID, proofRef, notes string) (*models.Issue, error) {
	if proofRef == "" {
		return nil, validationf("proof image is required")
	}

	issue, err := s.Issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.ReportedBy != p.ID {
		return nil, ErrForbidden
	}
	if err := CheckProofTransition(issue.Status); err != nil {
		return nil, err
	}

	status := models.PendingVerification
	updated, err := s.Issues.Update(ctx, id, IssueUpdate{
		Status:          &status,
		ResolutionProof: &proofRef,
		ResolutionNotes: &notes,
	})
	if err != nil {
		return nil, err
	}

	s.RT.Broadcast(EventIssueUpdated, updated)
	return updated, nil
}

// Verify confirms a citizen-submitted resolution. Only an issue sitting in
// pending-verification can be verified; success marks it resolved and
// stamps actualResolutionTime.
func (s *IssueService) Verify(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Issue, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	issue, err := s.Issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckVerifyTransition(issue.Status); err != nil {
		return nil, err
	}

	status := models.Resolved
	now := time.Now()
	oldStatus := issue.Status
	updated, err := s.Issues.Update(ctx, id, IssueUpdate{
		Status:               &status,
		ActualResolutionTime: &now,
	})
	if err != nil {
		return nil, err
	}

	s.RT.Broadcast(EventIssueVerified, updated)
	s.RT.Broadcast(EventIssueUpdated, updated)
	s.notifyStatusChange(ctx, updated, oldStatus)
	return updated, nil
}

// CastVote records the caller's vote, replacing any prior vote by the same
// user. The store applies it as one atomic array update, so concurrent
// votes by different users cannot overwrite each other.
func (s *IssueService) CastVote(ctx context.Context, p models.Principal, id primitive.ObjectID, voteType string) (*models.Issue, error) {
	if voteType != string(models.Upvote) && voteType != string(models.Downvote) {
		return nil, validationf("invalid vote type %q", voteType)
	}

	updated, err := s.Issues.UpsertVote(ctx, id, models.Vote{
		User:    p.ID,
		Type:    models.VoteType(voteType),
		VotedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.RT.Broadcast(EventIssueVoted, updated)
	return updated, nil
}

// AddComment appends to the issue's comment log. Comments are immutable
// once written.
func (s *IssueService) AddComment(ctx context.Context, p models.Principal, id primitive.ObjectID, text string) (*models.Issue, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationf("comment cannot be empty")
	}

	updated, err := s.Issues.AppendComment(ctx, id, models.Comment{
		User:      p.ID,
		Text:      text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.RT.Broadcast(EventIssueComment, updated)
	s.notifyComment(ctx, updated, p)
	return updated, nil
}

// Delete removes an issue permanently. Deleting an unknown id returns
// not-found and emits nothing.
func (s *IssueService) Delete(ctx context.Context, p models.Principal, id primitive.ObjectID) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.Issues.Delete(ctx, id); err != nil {
		return err
	}

	s.RT.Broadcast(EventIssueDeleted, map[string]string{"id": id.Hex()})
	s.RT.Broadcast(EventIssuesUpdated, nil)
	return nil
}

func (s *IssueService) notifyStatusChange(ctx context.Context, issue *models.Issue, oldStatus models.IssueStatus) {
	if s.Mail == nil || issue.Status == oldStatus {
		return
	}
	reporter, err := s.Users.FindByID(ctx, issue.ReportedBy)
	if err != nil {
		log.Println("status notification skipped:", err)
		return
	}
	s.Mail.StatusChanged(*reporter, issue.Title, oldStatus, issue.Status)
}

func (s *IssueService) notifyComment(ctx context.Context, issue *models.Issue, commenter models.Principal) {
	if s.Mail == nil || issue.ReportedBy == commenter.ID {
		return
	}
	reporter, err := s.Users.FindByID(ctx, issue.ReportedBy)
	if err != nil {
		log.Println("comment notification skipped:", err)
		return
	}
	name, err := s.Users.FindByID(ctx, commenter.ID)
	commenterName := "Someone"
	if err == nil {
		commenterName = name.Name
	}
	s.Mail.NewComment(*reporter, issue.Title, commenterName)
}
