package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"civic-issue-tracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

// fakeIssueStore is an in-memory IssueStore mirroring the semantics of the
// mongo implementation closely enough to exercise the services.
type fakeIssueStore struct {
	issues  map[primitive.ObjectID]*models.Issue
	order   []primitive.ObjectID
	failing bool
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func (f *fakeIssueStore) get(id primitive.ObjectID) (*models.Issue, error) {
	if f.failing {
		return nil, errStoreDown
	}
	issue, ok := f.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	return issue, nil
}

func (f *fakeIssueStore) Create(_ context.Context, issue *models.Issue) error {
	if f.failing {
		return errStoreDown
	}
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	cp := *issue
	f.issues[issue.ID] = &cp
	f.order = append(f.order, issue.ID)
	return nil
}

func (f *fakeIssueStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := f.get(id)
	if err != nil {
		return nil, err
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueStore) Find(_ context.Context, filter IssueFilter) ([]models.Issue, int64, error) {
	if f.failing {
		return nil, 0, errStoreDown
	}
	matched := []models.Issue{}
	for _, id := range f.order {
		issue := f.issues[id]
		if filter.Status != "" && filter.Status != "all" && string(issue.Status) != filter.Status {
			continue
		}
		if filter.Category != "" && filter.Category != "all" && string(issue.Category) != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(issue.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.ReportedBy != nil && issue.ReportedBy != *filter.ReportedBy {
			continue
		}
		if filter.AssignedTo != nil && (issue.AssignedTo == nil || *issue.AssignedTo != *filter.AssignedTo) {
			continue
		}
		matched = append(matched, *issue)
	}
	return matched, int64(len(matched)), nil
}

func (f *fakeIssueStore) Update(_ context.Context, id primitive.ObjectID, patch IssueUpdate) (*models.Issue, error) {
	issue, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		issue.Status = *patch.Status
	}
	if patch.AssignedTo != nil {
		issue.AssignedTo = patch.AssignedTo
	}
	if patch.ResolutionNotes != nil {
		issue.ResolutionNotes = *patch.ResolutionNotes
	}
	if patch.ResolutionProof != nil {
		issue.ResolutionProof = *patch.ResolutionProof
	}
	if patch.ActualResolutionTime != nil {
		issue.ActualResolutionTime = patch.ActualResolutionTime
	}
	issue.UpdatedAt = time.Now()
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueStore) Delete(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := f.get(id)
	if err != nil {
		return nil, err
	}
	delete(f.issues, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return issue, nil
}

func (f *fakeIssueStore) UpsertVote(_ context.Context, id primitive.ObjectID, vote models.Vote) (*models.Issue, error) {
	issue, err := f.get(id)
	if err != nil {
		return nil, err
	}
	kept := issue.Votes[:0]
	for _, v := range issue.Votes {
		if v.User != vote.User {
			kept = append(kept, v)
		}
	}
	issue.Votes = append(kept, vote)
	issue.UpdatedAt = time.Now()
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueStore) AppendComment(_ context.Context, id primitive.ObjectID, comment models.Comment) (*models.Issue, error) {
	issue, err := f.get(id)
	if err != nil {
		return nil, err
	}
	issue.Comments = append(issue.Comments, comment)
	issue.UpdatedAt = time.Now()
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueStore) CountAll(context.Context) (int64, error) {
	if f.failing {
		return 0, errStoreDown
	}
	return int64(len(f.issues)), nil
}

func (f *fakeIssueStore) CountByStatus(_ context.Context, status models.IssueStatus) (int64, error) {
	var n int64
	for _, issue := range f.issues {
		if issue.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeIssueStore) CountReported(_ context.Context, reporter primitive.ObjectID, statuses ...models.IssueStatus) (int64, error) {
	var n int64
	for _, issue := range f.issues {
		if issue.ReportedBy != reporter {
			continue
		}
		if len(statuses) == 0 {
			n++
			continue
		}
		for _, s := range statuses {
			if issue.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeIssueStore) GroupCountByReporter(_ context.Context, reporter primitive.ObjectID) ([]BucketCount, error) {
	counts := map[string]int64{}
	for _, issue := range f.issues {
		if issue.ReportedBy == reporter {
			counts[string(issue.Category)]++
		}
	}
	return toBuckets(counts), nil
}

func (f *fakeIssueStore) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, issue := range f.issues {
		if !issue.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeIssueStore) GroupCount(_ context.Context, field string) ([]BucketCount, error) {
	counts := map[string]int64{}
	for _, issue := range f.issues {
		switch field {
		case "category":
			counts[string(issue.Category)]++
		case "status":
			counts[string(issue.Status)]++
		case "severity":
			counts[string(issue.Severity)]++
		}
	}
	return toBuckets(counts), nil
}

func (f *fakeIssueStore) TopVoted(_ context.Context, limit int64) ([]models.Issue, error) {
	issues := []models.Issue{}
	for _, id := range f.order {
		issues = append(issues, *f.issues[id])
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return len(issues[i].Votes) > len(issues[j].Votes)
	})
	if int64(len(issues)) > limit {
		issues = issues[:limit]
	}
	return issues, nil
}

func (f *fakeIssueStore) RecentlyUpdated(_ context.Context, limit int64) ([]models.Issue, error) {
	issues := []models.Issue{}
	for _, id := range f.order {
		issues = append(issues, *f.issues[id])
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].UpdatedAt.After(issues[j].UpdatedAt)
	})
	if int64(len(issues)) > limit {
		issues = issues[:limit]
	}
	return issues, nil
}

func (f *fakeIssueStore) Nearby(_ context.Context, limit int64) ([]models.Issue, error) {
	issues := []models.Issue{}
	for _, id := range f.order {
		if len(f.issues[id].Location.Coordinates) == 2 {
			issues = append(issues, *f.issues[id])
		}
	}
	if int64(len(issues)) > limit {
		issues = issues[:limit]
	}
	return issues, nil
}

func toBuckets(counts map[string]int64) []BucketCount {
	buckets := []BucketCount{}
	for k, v := range counts {
		buckets = append(buckets, BucketCount{Key: k, Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) add(user models.User) primitive.ObjectID {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = &user
	return user.ID
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) Find(_ context.Context, filter UserFilter) ([]models.User, int64, error) {
	users := []models.User{}
	for _, user := range f.users {
		if filter.Role != "" && string(user.Role) != filter.Role {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (f *fakeUserStore) Update(_ context.Context, id primitive.ObjectID, patch UserUpdate) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	user.UpdatedAt = time.Now()
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) CountAll(context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserStore) CountByRole(_ context.Context, role models.UserRole) (int64, error) {
	var n int64
	for _, user := range f.users {
		if user.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserStore) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, user := range f.users {
		if !user.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// recordedEvent is one fan-out emission captured by the recorder.
type recordedEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

// recordingBroadcaster captures fan-out calls in emission order.
type recordingBroadcaster struct {
	events []recordedEvent
}

func (r *recordingBroadcaster) Broadcast(event string, payload interface{}) {
	r.events = append(r.events, recordedEvent{Event: event, Payload: payload})
}

func (r *recordingBroadcaster) BroadcastToRoom(room, event string, payload interface{}) {
	r.events = append(r.events, recordedEvent{Room: room, Event: event, Payload: payload})
}

func (r *recordingBroadcaster) names() []string {
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Event
	}
	return names
}
