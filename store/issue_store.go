package store

import (
	"context"
	"errors"
	"time"

	"civic-issue-tracker/models"
	"civic-issue-tracker/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueStore is the MongoDB implementation of services.IssueStore. Vote and
// comment writes are single-document pipeline/array updates, so concurrent
// engagement on one issue never loses entries to a read-modify-write cycle.
type IssueStore struct {
	col *mongo.Collection
}

func NewIssueStore(col *mongo.Collection) *IssueStore {
	return &IssueStore{col: col}
}

// EnsureIndexes creates the 2dsphere index used by location queries.
func (s *IssueStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	return err
}

func (s *IssueStore) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, issue)
	return err
}

func (s *IssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *IssueStore) Find(ctx context.Context, f services.IssueFilter) ([]models.Issue, int64, error) {
	filter := bson.M{}
	if f.Status != "" && f.Status != "all" {
		filter["status"] = f.Status
	}
	if f.Category != "" && f.Category != "all" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	if f.ReportedBy != nil {
		filter["reportedBy"] = *f.ReportedBy
	}
	if f.AssignedTo != nil {
		filter["assignedTo"] = *f.AssignedTo
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	order := -1
	if f.SortAsc {
		order = 1
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: order}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (s *IssueStore) Update(ctx context.Context, id primitive.ObjectID, patch services.IssueUpdate) (*models.Issue, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.AssignedTo != nil {
		set["assignedTo"] = *patch.AssignedTo
	}
	if patch.ResolutionNotes != nil {
		set["resolutionNotes"] = *patch.ResolutionNotes
	}
	if patch.ResolutionProof != nil {
		set["resolutionProof"] = *patch.ResolutionProof
	}
	if patch.ActualResolutionTime != nil {
		set["actualResolutionTime"] = *patch.ActualResolutionTime
	}

	return s.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (s *IssueStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpsertVote replaces any existing vote by vote.User and appends the new
// one in a single pipeline update, keeping the replace atomic against
// concurrent votes from other users.
func (s *IssueStore) UpsertVote(ctx context.Context, id primitive.ObjectID, vote models.Vote) (*models.Issue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"votes": bson.M{
				"$concatArrays": bson.A{
					bson.M{"$filter": bson.M{
						"input": bson.M{"$ifNull": bson.A{"$votes", bson.A{}}},
						"cond":  bson.M{"$ne": bson.A{"$$this.user", vote.User}},
					}},
					bson.A{bson.M{
						"user":    vote.User,
						"type":    vote.Type,
						"votedAt": vote.VotedAt,
					}},
				},
			},
			"updatedAt": time.Now(),
		}}},
	}
	return s.findOneAndUpdate(ctx, id, pipeline)
}

// AppendComment pushes onto the comment log atomically.
func (s *IssueStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Issue, error) {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return s.findOneAndUpdate(ctx, id, update)
}

func (s *IssueStore) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update interface{}) (*models.Issue, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *IssueStore) CountAll(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

func (s *IssueStore) CountByStatus(ctx context.Context, status models.IssueStatus) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"status": status})
}

func (s *IssueStore) CountReported(ctx context.Context, reporter primitive.ObjectID, statuses ...models.IssueStatus) (int64, error) {
	filter := bson.M{"reportedBy": reporter}
	if len(statuses) == 1 {
		filter["status"] = statuses[0]
	} else if len(statuses) > 1 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return s.col.CountDocuments(ctx, filter)
}

func (s *IssueStore) GroupCountByReporter(ctx context.Context, reporter primitive.ObjectID) ([]services.BucketCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"reportedBy": reporter}},
		{"$group": bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []services.BucketCount{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (s *IssueStore) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (s *IssueStore) GroupCount(ctx context.Context, field string) ([]services.BucketCount, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []services.BucketCount{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (s *IssueStore) TopVoted(ctx context.Context, limit int64) ([]models.Issue, error) {
	pipeline := []bson.M{
		{"$addFields": bson.M{
			"voteCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$votes", bson.A{}}}},
		}},
		{"$sort": bson.M{"voteCount": -1}},
		{"$limit": limit},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *IssueStore) RecentlyUpdated(ctx context.Context, limit int64) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// Nearby returns the most recent geotagged issues for the map view.
func (s *IssueStore) Nearby(ctx context.Context, limit int64) ([]models.Issue, error) {
	filter := bson.M{
		"location.coordinates": bson.M{"$size": 2},
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
