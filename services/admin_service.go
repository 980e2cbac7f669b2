package services

import (
	"context"
	"time"

	"civic-issue-tracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminService is the read-side rollups plus admin user management. All
// counts are computed from current store state at query time, never cached,
// and empty stores report zeros rather than errors.
type AdminService struct {
	Issues IssueStore
	Users  UserStore
}

// IssueStats is the issue half of the dashboard.
type IssueStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	UnderReview int64 `json:"underReview"`
	InProgress  int64 `json:"inProgress"`
	Resolved    int64 `json:"resolved"`
	Rejected    int64 `json:"rejected"`
	Recent      int64 `json:"recent"`
}

// UserStats is the user half of the dashboard.
type UserStats struct {
	Total    int64 `json:"total"`
	Admins   int64 `json:"admins"`
	Citizens int64 `json:"citizens"`
	Recent   int64 `json:"recent"`
}

// DashboardCharts are the group-by breakdowns.
type DashboardCharts struct {
	ByCategory []BucketCount `json:"byCategory"`
	ByStatus   []BucketCount `json:"byStatus"`
	BySeverity []BucketCount `json:"bySeverity"`
}

// Dashboard is the full admin rollup payload.
type Dashboard struct {
	Issues           IssueStats      `json:"issues"`
	Users            UserStats       `json:"users"`
	Charts           DashboardCharts `json:"charts"`
	TopIssues        []models.Issue  `json:"topIssues"`
	RecentActivities []models.Issue  `json:"recentActivities"`
}

// Dashboard computes the admin rollups: counts by status, category and
// severity, trailing-7-day issue and user counts, the top voted issues and
// the most recently touched ones.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	oneWeekAgo := time.Now().AddDate(0, 0, -7)
	d := &Dashboard{}

	var err error
	if d.Issues.Total, err = s.Issues.CountAll(ctx); err != nil {
		return nil, err
	}
	statusCounts := []struct {
		status models.IssueStatus
		dst    *int64
	}{
		{models.Pending, &d.Issues.Pending},
		{models.UnderReview, &d.Issues.UnderReview},
		{models.InProgress, &d.Issues.InProgress},
		{models.Resolved, &d.Issues.Resolved},
		{models.Rejected, &d.Issues.Rejected},
	}
	for _, sc := range statusCounts {
		if *sc.dst, err = s.Issues.CountByStatus(ctx, sc.status); err != nil {
			return nil, err
		}
	}
	if d.Issues.Recent, err = s.Issues.CountCreatedSince(ctx, oneWeekAgo); err != nil {
		return nil, err
	}

	if d.Users.Total, err = s.Users.CountAll(ctx); err != nil {
		return nil, err
	}
	if d.Users.Admins, err = s.Users.CountByRole(ctx, models.RoleAdmin); err != nil {
		return nil, err
	}
	if d.Users.Citizens, err = s.Users.CountByRole(ctx, models.RoleCitizen); err != nil {
		return nil, err
	}
	if d.Users.Recent, err = s.Users.CountCreatedSince(ctx, oneWeekAgo); err != nil {
		return nil, err
	}

	if d.Charts.ByCategory, err = s.Issues.GroupCount(ctx, "category"); err != nil {
		return nil, err
	}
	if d.Charts.ByStatus, err = s.Issues.GroupCount(ctx, "status"); err != nil {
		return nil, err
	}
	if d.Charts.BySeverity, err = s.Issues.GroupCount(ctx, "severity"); err != nil {
		return nil, err
	}

	if d.TopIssues, err = s.Issues.TopVoted(ctx, 5); err != nil {
		return nil, err
	}
	if d.RecentActivities, err = s.Issues.RecentlyUpdated(ctx, 10); err != nil {
		return nil, err
	}

	return d, nil
}

// ListUsers pages through users for the admin user screen.
func (s *AdminService) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	return s.Users.Find(ctx, f)
}

// SetUserRole changes a user's role. Admins cannot change their own role.
func (s *AdminService) SetUserRole(ctx context.Context, p models.Principal, userID primitive.ObjectID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, validationf("role must be either %q or %q", models.RoleCitizen, models.RoleAdmin)
	}
	if userID == p.ID {
		return nil, ErrPrecondition
	}
	r := models.UserRole(role)
	return s.Users.Update(ctx, userID, UserUpdate{Role: &r})
}

// SetUserActive flips a user's active flag. Admins cannot deactivate
// themselves.
func (s *AdminService) SetUserActive(ctx context.Context, p models.Principal, userID primitive.ObjectID, isActive bool) (*models.User, error) {
	if userID == p.ID && !isActive {
		return nil, ErrPrecondition
	}
	return s.Users.Update(ctx, userID, UserUpdate{IsActive: &isActive})
}
