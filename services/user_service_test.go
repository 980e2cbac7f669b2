package services

import (
	"context"
	"strings"
	"testing"

	"civic-issue-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReporterStats(t *testing.T) {
	issues := newFakeIssueStore()
	svc := &UserService{Issues: issues, Users: newFakeUserStore()}
	me := citizen()
	other := primitive.NewObjectID()

	seed := []struct {
		reporter primitive.ObjectID
		status   models.IssueStatus
		category models.IssueCategory
	}{
		{me.ID, models.Pending, models.Pothole},
		{me.ID, models.Pending, models.Pothole},
		{me.ID, models.UnderReview, models.Garbage},
		{me.ID, models.InProgress, models.Water},
		{me.ID, models.Resolved, models.Pothole},
		{other, models.Pending, models.Pothole},
	}
	for _, s := range seed {
		require.NoError(t, issues.Create(context.Background(), &models.Issue{
			ReportedBy: s.reporter,
			Status:     s.status,
			Category:   s.category,
		}))
	}

	stats, err := svc.Stats(context.Background(), me)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalIssues, "only the caller's issues are counted")
	assert.Equal(t, int64(2), stats.PendingIssues)
	assert.Equal(t, int64(2), stats.InProgressIssues, "under-review and in-progress share a bucket")
	assert.Equal(t, int64(1), stats.ResolvedIssues)

	require.NotEmpty(t, stats.IssuesByCategory)
	assert.Equal(t, BucketCount{Key: "pothole", Count: 3}, stats.IssuesByCategory[0])
	assert.Len(t, stats.RecentIssues, 5)
}

func TestReporterStatsEmpty(t *testing.T) {
	svc := &UserService{Issues: newFakeIssueStore(), Users: newFakeUserStore()}

	stats, err := svc.Stats(context.Background(), citizen())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalIssues)
	assert.Empty(t, stats.IssuesByCategory)
	assert.Empty(t, stats.RecentIssues)
}

func TestUpdateProfile(t *testing.T) {
	users := newFakeUserStore()
	svc := &UserService{Issues: newFakeIssueStore(), Users: users}
	me := citizen()
	users.add(models.User{ID: me.ID, Name: "Old Name"})

	name := "New Name"
	phone := "9876543210"
	user, err := svc.UpdateProfile(context.Background(), me, ProfileUpdate{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "9876543210", user.Phone)
}

func TestUpdateProfileRejectsBadName(t *testing.T) {
	users := newFakeUserStore()
	svc := &UserService{Issues: newFakeIssueStore(), Users: users}
	me := citizen()
	users.add(models.User{ID: me.ID, Name: "Old Name"})

	for _, name := range []string{"x", strings.Repeat("a", 51)} {
		bad := name
		_, err := svc.UpdateProfile(context.Background(), me, ProfileUpdate{Name: &bad})
		assert.ErrorIs(t, err, ErrValidation)
	}

	user, err := svc.Profile(context.Background(), me)
	require.NoError(t, err)
	assert.Equal(t, "Old Name", user.Name, "rejected update leaves the profile untouched")
}

func TestMyIssuesScopedToCaller(t *testing.T) {
	issues := newFakeIssueStore()
	svc := &UserService{Issues: issues, Users: newFakeUserStore()}
	me := citizen()

	require.NoError(t, issues.Create(context.Background(), &models.Issue{Title: "mine", ReportedBy: me.ID}))
	require.NoError(t, issues.Create(context.Background(), &models.Issue{Title: "theirs", ReportedBy: primitive.NewObjectID()}))

	got, total, err := svc.MyIssues(context.Background(), me, IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].Title)
}
