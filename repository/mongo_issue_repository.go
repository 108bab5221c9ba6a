package repository

import (
	"context"
	"fmt"
	"regexp"

	"cityfix-be/models"
	"cityfix-be/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIssueStore keeps each aggregate as a single document in the issues
// collection, so reads, writes, and cascade deletes are atomic per issue.
// Sequential issue numbers come from a counter document updated with $inc.
type MongoIssueStore struct {
	issues   *mongo.Collection
	counters *mongo.Collection
}

func NewMongoIssueStore(db *mongo.Database) *MongoIssueStore {
	return &MongoIssueStore{
		issues:   db.Collection("issues"),
		counters: db.Collection("counters"),
	}
}

// EnsureIndexes creates the unique issueNumber index and the list-query sort
// index. Call once at startup.
func (s *MongoIssueStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.issues.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "issueNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
	})
	return err
}

func (s *MongoIssueStore) Insert(ctx context.Context, issue *models.Issue) error {
	if _, err := s.issues.InsertOne(ctx, issue); err != nil {
		return apperr.StoreUnavailable(err)
	}
	return nil
}

func (s *MongoIssueStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("issue not found")
	}
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	return &issue, nil
}

// Put replaces the aggregate document guarded by the version it was loaded
// at. A concurrent writer that got there first leaves nothing matching the
// old version, which surfaces as Conflict.
func (s *MongoIssueStore) Put(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	loadedVersion := issue.Version
	issue.Version = loadedVersion + 1

	res, err := s.issues.ReplaceOne(ctx, bson.M{"_id": issue.ID, "version": loadedVersion}, issue)
	if err != nil {
		issue.Version = loadedVersion
		return nil, apperr.StoreUnavailable(err)
	}
	if res.MatchedCount == 0 {
		issue.Version = loadedVersion
		count, err := s.issues.CountDocuments(ctx, bson.M{"_id": issue.ID})
		if err != nil {
			return nil, apperr.StoreUnavailable(err)
		}
		if count == 0 {
			return nil, apperr.NotFound("issue not found")
		}
		return nil, apperr.Conflict("issue was modified concurrently")
	}
	return issue, nil
}

// Delete removes the aggregate. Embedded follow-ups go with the document, so
// the cascade needs no second write.
func (s *MongoIssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.issues.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.StoreUnavailable(err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("issue not found")
	}
	return nil
}

func (s *MongoIssueStore) FindByFollowUp(ctx context.Context, followUpID primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.issues.FindOne(ctx, bson.M{"followUps.id": followUpID}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("follow-up not found")
	}
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	return &issue, nil
}

func (s *MongoIssueStore) NextIssueNumber(ctx context.Context) (string, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "issueNumber"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", apperr.StoreUnavailable(err)
	}
	return fmt.Sprintf("%06d", counter.Seq), nil
}

// substring builds a case-insensitive substring match.
func substring(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

// buildFilter translates the query into a mongo filter. withStatus toggles
// the status clause so statusCounts can be computed over the same filter set
// minus the status tab.
func buildFilter(q IssueQuery, withStatus bool) bson.M {
	filter := bson.M{}
	if q.Area != "" {
		filter["area"] = q.Area
	}
	if q.IssueNumber != "" {
		filter["issueNumber"] = substring(q.IssueNumber)
	}
	if q.Title != "" {
		filter["title"] = substring(q.Title)
	}
	if q.Phone != "" {
		filter["phone"] = substring(q.Phone)
	}
	if q.StartDate != nil || q.EndDate != nil {
		created := bson.M{}
		if q.StartDate != nil {
			created["$gte"] = *q.StartDate
		}
		if q.EndDate != nil {
			created["$lt"] = *q.EndDate
		}
		filter["createdAt"] = created
	}
	if withStatus && q.Status != "" && q.Status != "all" {
		filter["status"] = q.Status
	}
	return filter
}

func (s *MongoIssueStore) Query(ctx context.Context, q IssueQuery) (*QueryResult, error) {
	filter := buildFilter(q, true)

	total, err := s.issues.CountDocuments(ctx, filter)
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	skip := int64(q.Page-1) * int64(q.PageSize)
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(q.PageSize))

	cursor, err := s.issues.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	counts, err := s.statusCounts(ctx, q)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Items: issues, Total: total, StatusCounts: counts}, nil
}

// statusCounts groups the status-agnostic filter set by status, so switching
// the status tab never changes the other tabs' numbers.
func (s *MongoIssueStore) statusCounts(ctx context.Context, q IssueQuery) (StatusCounts, error) {
	pipeline := []bson.M{
		{"$match": buildFilter(q, false)},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return StatusCounts{}, apperr.StoreUnavailable(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return StatusCounts{}, apperr.StoreUnavailable(err)
	}

	var counts StatusCounts
	for _, row := range rows {
		switch models.IssueStatus(row.Status) {
		case models.IssuePending:
			counts.Pending = row.Count
		case models.IssueResolved:
			counts.Resolved = row.Count
		case models.IssueRejected:
			counts.Rejected = row.Count
		}
	}
	counts.All = counts.Pending + counts.Resolved + counts.Rejected
	return counts, nil
}
