package services

import (
	"context"
	"testing"
	"time"

	"civic-issue-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDashboardEmptyStore(t *testing.T) {
	svc := &AdminService{Issues: newFakeIssueStore(), Users: newFakeUserStore()}

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Zero(t, d.Issues.Total)
	assert.Zero(t, d.Issues.Pending)
	assert.Zero(t, d.Users.Total)
	assert.Empty(t, d.Charts.ByCategory)
	assert.Empty(t, d.TopIssues)
	assert.Empty(t, d.RecentActivities)
}

func TestDashboardCounts(t *testing.T) {
	issues := newFakeIssueStore()
	users := newFakeUserStore()
	svc := &AdminService{Issues: issues, Users: users}

	now := time.Now()
	old := now.AddDate(0, 0, -30)
	seed := []struct {
		status   models.IssueStatus
		category models.IssueCategory
		severity models.IssueSeverity
		created  time.Time
		votes    int
	}{
		{models.Pending, models.Pothole, models.SeverityHigh, now, 3},
		{models.Pending, models.Garbage, models.SeverityLow, old, 0},
		{models.InProgress, models.Pothole, models.SeverityMedium, now, 1},
		{models.Resolved, models.Water, models.SeverityCritical, old, 5},
	}
	for _, s := range seed {
		issue := &models.Issue{
			Status:     s.status,
			Category:   s.category,
			Severity:   s.severity,
			ReportedBy: primitive.NewObjectID(),
			CreatedAt:  s.created,
			UpdatedAt:  s.created,
		}
		for i := 0; i < s.votes; i++ {
			issue.Votes = append(issue.Votes, models.Vote{User: primitive.NewObjectID(), Type: models.Upvote})
		}
		require.NoError(t, issues.Create(context.Background(), issue))
	}

	users.add(models.User{Role: models.RoleAdmin, CreatedAt: now})
	users.add(models.User{Role: models.RoleCitizen, CreatedAt: now})
	users.add(models.User{Role: models.RoleCitizen, CreatedAt: old})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), d.Issues.Total)
	assert.Equal(t, int64(2), d.Issues.Pending)
	assert.Equal(t, int64(1), d.Issues.InProgress)
	assert.Equal(t, int64(1), d.Issues.Resolved)
	assert.Zero(t, d.Issues.Rejected)
	assert.Equal(t, int64(2), d.Issues.Recent)

	assert.Equal(t, int64(3), d.Users.Total)
	assert.Equal(t, int64(1), d.Users.Admins)
	assert.Equal(t, int64(2), d.Users.Citizens)
	assert.Equal(t, int64(2), d.Users.Recent)

	require.NotEmpty(t, d.Charts.ByCategory)
	assert.Equal(t, BucketCount{Key: "pothole", Count: 2}, d.Charts.ByCategory[0])
	require.NotEmpty(t, d.Charts.BySeverity)

	require.NotEmpty(t, d.TopIssues)
	assert.Equal(t, models.Water, d.TopIssues[0].Category, "most voted issue first")
	assert.Len(t, d.RecentActivities, 4)
}

func TestSetUserRole(t *testing.T) {
	users := newFakeUserStore()
	svc := &AdminService{Issues: newFakeIssueStore(), Users: users}
	adm := admin()
	target := users.add(models.User{Name: "Ravi", Role: models.RoleCitizen})

	user, err := svc.SetUserRole(context.Background(), adm, target, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestSetUserRoleFailureModes(t *testing.T) {
	users := newFakeUserStore()
	svc := &AdminService{Issues: newFakeIssueStore(), Users: users}
	adm := admin()
	users.add(models.User{ID: adm.ID, Name: "Self", Role: models.RoleAdmin})

	_, err := svc.SetUserRole(context.Background(), adm, adm.ID, "citizen")
	assert.ErrorIs(t, err, ErrPrecondition, "self-role-change is rejected")

	target := users.add(models.User{Role: models.RoleCitizen})
	_, err = svc.SetUserRole(context.Background(), adm, target, "superuser")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetUserRole(context.Background(), adm, primitive.NewObjectID(), "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetUserActive(t *testing.T) {
	users := newFakeUserStore()
	svc := &AdminService{Issues: newFakeIssueStore(), Users: users}
	adm := admin()
	users.add(models.User{ID: adm.ID, Role: models.RoleAdmin, IsActive: true})
	target := users.add(models.User{Role: models.RoleCitizen, IsActive: true})

	user, err := svc.SetUserActive(context.Background(), adm, target, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = svc.SetUserActive(context.Background(), adm, adm.ID, false)
	assert.ErrorIs(t, err, ErrPrecondition, "self-deactivation is rejected")

	// reactivating yourself is fine
	_, err = svc.SetUserActive(context.Background(), adm, adm.ID, true)
	assert.NoError(t, err)
}
