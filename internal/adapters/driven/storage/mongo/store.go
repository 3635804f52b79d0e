// Package mongo provides a MongoDB-backed transcript store reading the job
// results collection written by the transcription pipeline.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.TranscriptStore = (*Store)(nil)

// Field names of the job results documents.
const (
	fieldID        = "_id"
	fieldRequestID = "AiJobRequestId"
	fieldChannelID = "ChannelId"
	fieldOperation = "Operation"
	fieldStart     = "Start"
	fieldEnd       = "End"
	fieldText      = "Content.Text"
)

// Config holds connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string

	// Timeout bounds every call. Zero means domain.DefaultCallTimeout.
	Timeout time.Duration
}

// Store is a MongoDB implementation of driven.TranscriptStore.
type Store struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewStore connects to MongoDB and verifies the server is reachable.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("%w: mongo URI is required", domain.ErrInvalidInput)
	}
	if cfg.Database == "" {
		cfg.Database = domain.DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultMongoCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultCallTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	logger.Debug("Connected to MongoDB collection %s.%s", cfg.Database, cfg.Collection)
	return &Store{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		timeout: cfg.Timeout,
	}, nil
}

// Close disconnects from the server.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// FindByFilter runs a structural query. Job predicates and a coarse keyword
// match run on the server; segment narrowing runs over the decoded jobs.
func (s *Store) FindByFilter(ctx context.Context, filter domain.RetrievalFilter) ([]domain.JobResult, error) {
	jobs, err := s.find(ctx, BuildFilter(filter), FindOptions(filter.Sort))
	if err != nil {
		return nil, err
	}
	return domain.RetrievalFilter{Keywords: filter.Keywords}.Apply(jobs), nil
}

// FindByIDs fetches jobs by ID. Missing IDs are skipped.
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]domain.JobResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, IDsFilter(ids), nil)
}

// Save inserts or replaces a job.
func (s *Store) Save(ctx context.Context, job *domain.JobResult) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job ID is required", domain.ErrInvalidInput)
	}

	doc, err := toDocument(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.coll.ReplaceOne(ctx,
		bson.D{{Key: fieldID, Value: idValue(job.ID)}},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]domain.JobResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	cursor, err := s.coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	var jobs []domain.JobResult
	if err := cursor.All(ctx, &jobs); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("decoding job results: %w", err)
	}
	return jobs, nil
}

// BuildFilter translates the job predicates of a retrieval filter into a
// MongoDB query. Keywords become a case-insensitive match on any segment
// text; an empty filter matches every document.
func BuildFilter(f domain.RetrievalFilter) bson.D {
	q := bson.D{}

	if f.Window != nil {
		q = append(q,
			bson.E{Key: fieldEnd, Value: bson.D{{Key: "$gte", Value: f.Window.Start}}},
			bson.E{Key: fieldStart, Value: bson.D{{Key: "$lte", Value: f.Window.End}}},
		)
	}
	if len(f.ChannelIDs) > 0 {
		q = append(q, bson.E{Key: fieldChannelID, Value: bson.D{{Key: "$in", Value: f.ChannelIDs}}})
	}
	if f.OperationTag != "" {
		q = append(q, bson.E{Key: fieldOperation, Value: f.OperationTag})
	}
	if f.AIJobRequestID != "" {
		q = append(q, bson.E{Key: fieldRequestID, Value: f.AIJobRequestID})
	}

	var anyOf bson.A
	for _, k := range f.Keywords {
		if k = strings.TrimSpace(k); k == "" {
			continue
		}
		anyOf = append(anyOf, bson.D{{
			Key:   fieldText,
			Value: primitive.Regex{Pattern: regexp.QuoteMeta(k), Options: "i"},
		}})
	}
	if len(anyOf) > 0 {
		q = append(q, bson.E{Key: "$or", Value: anyOf})
	}

	return q
}

// FindOptions orders by job start, breaking ties by ID. SortUnset returns
// nil and keeps natural order.
func FindOptions(dir domain.SortDirection) *options.FindOptions {
	switch dir {
	case domain.SortAscending:
		return options.Find().SetSort(bson.D{{Key: fieldStart, Value: 1}, {Key: fieldID, Value: 1}})
	case domain.SortDescending:
		return options.Find().SetSort(bson.D{{Key: fieldStart, Value: -1}, {Key: fieldID, Value: 1}})
	default:
		return nil
	}
}

// IDsFilter matches documents by ID. Hex IDs match both ObjectID and
// string keys, as the pipeline writes ObjectIDs.
func IDsFilter(ids []string) bson.D {
	values := make(bson.A, 0, len(ids)*2)
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			values = append(values, oid)
		}
		values = append(values, id)
	}
	return bson.D{{Key: fieldID, Value: bson.D{{Key: "$in", Value: values}}}}
}

// idValue keeps hex IDs as ObjectIDs so replacements do not alter _id.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// toDocument encodes a job with its ID in stored form.
func toDocument(job *domain.JobResult) (bson.D, error) {
	raw, err := bson.Marshal(job)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for i := range doc {
		if doc[i].Key == fieldID {
			doc[i].Value = idValue(job.ID)
		}
	}
	return doc, nil
}
