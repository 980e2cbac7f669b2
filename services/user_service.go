package services

import (
	"context"

	"civic-issue-tracker/models"
)

// UserService covers the citizen-facing profile and stats surface.
type UserService struct {
	Issues IssueStore
	Users  UserStore
}

// ProfileUpdate is the self-service profile patch.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *models.Address
}

func (s *UserService) Profile(ctx context.Context, p models.Principal) (*models.User, error) {
	return s.Users.FindByID(ctx, p.ID)
}

func (s *UserService) UpdateProfile(ctx context.Context, p models.Principal, in ProfileUpdate) (*models.User, error) {
	if in.Name != nil {
		if n := len(*in.Name); n < 2 || n > 50 {
			return nil, validationf("name must be between 2 and 50 characters")
		}
	}
	return s.Users.Update(ctx, p.ID, UserUpdate{
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
	})
}

// ReporterStats summarizes a citizen's own issues.
type ReporterStats struct {
	TotalIssues      int64          `json:"totalIssues"`
	PendingIssues    int64          `json:"pendingIssues"`
	InProgressIssues int64          `json:"inProgressIssues"`
	ResolvedIssues   int64          `json:"resolvedIssues"`
	IssuesByCategory []BucketCount  `json:"issuesByCategory"`
	RecentIssues     []models.Issue `json:"recentIssues"`
}

// Stats computes the caller's issue rollup: lifecycle bucket counts, a
// category breakdown and the five most recent reports.
func (s *UserService) Stats(ctx context.Context, p models.Principal) (*ReporterStats, error) {
	stats := &ReporterStats{}

	var err error
	if stats.TotalIssues, err = s.Issues.CountReported(ctx, p.ID); err != nil {
		return nil, err
	}
	if stats.PendingIssues, err = s.Issues.CountReported(ctx, p.ID, models.Pending); err != nil {
		return nil, err
	}
	if stats.InProgressIssues, err = s.Issues.CountReported(ctx, p.ID, models.UnderReview, models.InProgress); err != nil {
		return nil, err
	}
	if stats.ResolvedIssues, err = s.Issues.CountReported(ctx, p.ID, models.Resolved); err != nil {
		return nil, err
	}
	if stats.IssuesByCategory, err = s.Issues.GroupCountByReporter(ctx, p.ID); err != nil {
		return nil, err
	}

	recent, _, err := s.Issues.Find(ctx, IssueFilter{ReportedBy: &p.ID, Limit: 5})
	if err != nil {
		return nil, err
	}
	stats.RecentIssues = recent

	return stats, nil
}

// MyIssues pages through the caller's own reports.
func (s *UserService) MyIssues(ctx context.Context, p models.Principal, f IssueFilter) ([]models.Issue, int64, error) {
	f.ReportedBy = &p.ID
	return s.Issues.Find(ctx, f)
}
