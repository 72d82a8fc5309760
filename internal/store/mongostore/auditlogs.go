package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
)

func auditFilter(f store.AuditFilter) bson.D {
	d := bson.D{}
	if f.UserID != "" {
		d = append(d, bson.E{Key: "userId", Value: idMatch(f.UserID)})
	}
	if f.UserRole != "" {
		d = append(d, bson.E{Key: "userRole", Value: f.UserRole})
	}
	if f.Method != "" {
		d = append(d, bson.E{Key: "method", Value: f.Method})
	}
	if f.Endpoint != "" {
		d = append(d, bson.E{Key: "endpoint", Value: primitive.Regex{Pattern: regexp.QuoteMeta(f.Endpoint), Options: "i"}})
	}
	if f.ResponseStatus != nil {
		d = append(d, bson.E{Key: "responseStatus", Value: *f.ResponseStatus})
	}
	if f.From != nil || f.To != nil {
		r := bson.D{}
		if f.From != nil {
			r = append(r, bson.E{Key: "$gte", Value: *f.From})
		}
		if f.To != nil {
			r = append(r, bson.E{Key: "$lte", Value: *f.To})
		}
		d = append(d, bson.E{Key: "createdAt", Value: r})
	}
	return d
}

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	_, err := s.db.Collection(colAuditLogs).InsertOne(ctx, l)
	return translate(err)
}

func (s *Store) FindAuditLogs(ctx context.Context, f store.AuditFilter, p store.Page) ([]models.AuditLog, int64, error) {
	col := s.db.Collection(colAuditLogs)
	filter := auditFilter(f)
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}
	cur, err := col.Find(ctx, filter, findOptions(p, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, translate(err)
	}
	logs := []models.AuditLog{}
	if err := cur.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *Store) CountAuditLogs(ctx context.Context, from, to time.Time) (int64, error) {
	n, err := s.db.Collection(colAuditLogs).CountDocuments(ctx, auditFilter(store.AuditFilter{From: &from, To: &to}))
	return n, translate(err)
}

func groupPipeline(by store.AuditGroup, from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: auditFilter(store.AuditFilter{From: &from, To: &to})}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + string(by)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func (s *Store) GroupAuditLogs(ctx context.Context, by store.AuditGroup, from, to time.Time) ([]models.GroupCount, error) {
	switch by {
	case store.GroupByMethod, store.GroupByStatus, store.GroupByRole:
	default:
		return nil, fmt.Errorf("mongostore: unknown audit group %q", by)
	}
	cur, err := s.db.Collection(colAuditLogs).Aggregate(ctx, groupPipeline(by, from, to))
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	var out []models.GroupCount
	for cur.Next(ctx) {
		var key any
		if by == store.GroupByStatus {
			var row struct {
				ID    int   `bson:"_id"`
				Count int64 `bson:"count"`
			}
			if err := cur.Decode(&row); err != nil {
				return nil, err
			}
			out = append(out, models.GroupCount{ID: row.ID, Count: row.Count})
			continue
		}
		var row struct {
			ID    *string `bson:"_id"`
			Count int64   `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if row.ID != nil {
			key = *row.ID
		}
		out = append(out, models.GroupCount{ID: key, Count: row.Count})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	store.SortGroups(out)
	return out, nil
}
