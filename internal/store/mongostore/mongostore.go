// Package mongostore implements store.Store on MongoDB, using the collection
// layout of the rest of the platform.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"vaultadmin/internal/store"
)

const (
	colUsers         = "users"
	colLoginHistory  = "userloginhistories"
	colAuditLogs     = "auditlogs"
	colProducts      = "products"
	connectTimeout   = 10 * time.Second
	disconnectTimout = 5 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	lg     *zap.SugaredLogger
}

var _ store.Store = (*Store)(nil)

func Open(ctx context.Context, uri, dbName string, lg *zap.SugaredLogger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	s := &Store{client: client, db: client.Database(dbName), lg: lg}
	s.ensureIndexes(ctx)
	lg.Infow("store ready", "driver", "mongo", "database", dbName)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	unique := options.Index().SetUnique(true)
	desc := func(keys ...string) bson.D {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return append(d, bson.E{Key: "createdAt", Value: -1})
	}
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
		},
		colLoginHistory: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		},
		colAuditLogs: {
			{Keys: desc("userId")},
			{Keys: desc("userRole")},
			{Keys: desc("method")},
			{Keys: desc("endpoint")},
			{Keys: desc("responseStatus")},
		},
		colProducts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "isFeatured", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "releaseDate", Value: -1}}},
		},
	}
	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			s.lg.Warnw("index creation failed", "collection", col, "error", err)
		}
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func (s *Store) updateByID(ctx context.Context, col, id string, update bson.D) error {
	res, err := s.db.Collection(col).UpdateOne(ctx, bson.M{"_id": idMatch(id)}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func findOptions(p store.Page, sort bson.D) *options.FindOptions {
	return options.Find().SetSort(sort).SetSkip(int64(p.Offset())).SetLimit(int64(p.Size))
}
