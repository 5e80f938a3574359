// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/askboard/models"
)

const pollCollection = "polls"

// MongoStore keeps each poll as one document with embedded options and votes
type MongoStore struct {
	client *mongo.Client
	polls  *mongo.Collection
}

// OpenMongoStore connects, pings and ensures indexes
func OpenMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	s := NewMongoStore(client, client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func NewMongoStore(client *mongo.Client, database *mongo.Database) *MongoStore {
	return &MongoStore{client: client, polls: database.Collection(pollCollection)}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.polls.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreatePoll(ctx context.Context, p *models.Poll) error {
	if _, err := s.polls.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (s *MongoStore) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	var p models.Poll
	err := s.polls.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find poll: %w", err)
	}
	normalize(&p)
	return &p, nil
}

func (s *MongoStore) ListPolls(ctx context.Context, q models.ListQuery) ([]models.Poll, int, error) {
	filter := bson.M{"isActive": true}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"question": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}

	total, err := s.polls.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count polls: %w", err)
	}

	sortKey := q.Sort
	if _, ok := sortColumns[sortKey]; !ok {
		sortKey = "createdAt"
	}
	dir := 1
	if q.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	polls, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return polls, int(total), nil
}

func (s *MongoStore) ListPollsByAuthor(ctx context.Context, authorID string, includeInactive bool) ([]models.Poll, error) {
	filter := bson.M{"author": authorID}
	if !includeInactive {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

// UpdatePoll sets the fields an edit can change. isActive belongs to ClosePoll.
// Options are only written when replaced, so concurrent votes on untouched
// options survive.
func (s *MongoStore) UpdatePoll(ctx context.Context, p *models.Poll, optionsReplaced bool) error {
	set := bson.M{
		"question":           p.Question,
		"description":        p.Description,
		"allowMultipleVotes": p.AllowMultipleVotes,
		"endDate":            p.EndDate,
		"tags":               p.Tags,
		"updatedAt":          p.UpdatedAt,
	}
	if optionsReplaced {
		set["options"] = p.Options
		set["totalVotes"] = 0
	}

	res, err := s.polls.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoStore) ClosePoll(ctx context.Context, id string, at time.Time) error {
	res, err := s.polls.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isActive": false, "updatedAt": at}})
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePoll(ctx context.Context, id string) error {
	res, err := s.polls.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordVote appends the votes with one conditional update. The filter
// repeats every precondition, so a racing second vote from the same user
// matches nothing.
func (s *MongoStore) RecordVote(ctx context.Context, pollID, userID string, indexes []int, at time.Time) (*models.Poll, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if err := poll.CheckVote(userID, indexes, at); err != nil {
		return nil, err
	}

	maxIdx := 0
	push := bson.M{}
	for _, idx := range indexes {
		if idx > maxIdx {
			maxIdx = idx
		}
		push["options."+strconv.Itoa(idx)+".votes"] = models.Vote{User: userID, VotedAt: at}
	}

	filter := bson.M{
		"_id":      pollID,
		"isActive": true,
		"$or": bson.A{
			bson.M{"endDate": nil},
			bson.M{"endDate": bson.M{"$gte": at}},
		},
		"options.votes.user": bson.M{"$ne": userID},
	}
	// The option list must still have exactly the length that was checked
	filter["options."+strconv.Itoa(maxIdx)] = bson.M{"$exists": true}
	filter["options."+strconv.Itoa(len(poll.Options))] = bson.M{"$exists": false}
	update := bson.M{
		"$push": push,
		"$inc":  bson.M{"totalVotes": len(indexes)},
		"$set":  bson.M{"updatedAt": at},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Poll
	err = s.polls.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.voteRejection(ctx, pollID, userID, indexes, at)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	normalize(&updated)
	return &updated, nil
}

// voteRejection re-reads the poll to explain why the conditional update missed
func (s *MongoStore) voteRejection(ctx context.Context, pollID, userID string, indexes []int, at time.Time) error {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if err := poll.CheckVote(userID, indexes, at); err != nil {
		return err
	}
	// Options were replaced between the read and the update
	return models.ErrInvalidOption
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Poll, error) {
	cur, err := s.polls.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	polls := []models.Poll{}
	if err := cur.All(ctx, &polls); err != nil {
		return nil, fmt.Errorf("failed to decode polls: %w", err)
	}
	for i := range polls {
		normalize(&polls[i])
	}
	return polls, nil
}

// normalize replaces nil slices from sparse documents and pins times to UTC
func normalize(p *models.Poll) {
	if p.Options == nil {
		p.Options = []models.Option{}
	}
	for i := range p.Options {
		if p.Options[i].Votes == nil {
			p.Options[i].Votes = []models.Vote{}
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.EndDate = utcPtr(p.EndDate)
}
