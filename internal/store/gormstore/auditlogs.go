package gormstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
)

var auditGroupColumns = map[store.AuditGroup]string{
	store.GroupByMethod: "method",
	store.GroupByStatus: "response_status",
	store.GroupByRole:   "user_role",
}

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *Store) auditQuery(ctx context.Context, f store.AuditFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.UserRole != "" {
		q = q.Where("user_role = ?", f.UserRole)
	}
	if f.Method != "" {
		q = q.Where("method = ?", f.Method)
	}
	if f.Endpoint != "" {
		q = q.Where(`LOWER(endpoint) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Endpoint))+"%")
	}
	if f.ResponseStatus != nil {
		q = q.Where("response_status = ?", *f.ResponseStatus)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", utc(f.From))
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", utc(f.To))
	}
	return q
}

func (s *Store) FindAuditLogs(ctx context.Context, f store.AuditFilter, p store.Page) ([]models.AuditLog, int64, error) {
	var total int64
	if err := s.auditQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var logs []models.AuditLog
	err := s.auditQuery(ctx, f).
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Size).
		Find(&logs).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return logs, total, nil
}

func (s *Store) CountAuditLogs(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.auditQuery(ctx, store.AuditFilter{From: &from, To: &to}).Count(&n).Error
	return n, translate(err)
}

func (s *Store) GroupAuditLogs(ctx context.Context, by store.AuditGroup, from, to time.Time) ([]models.GroupCount, error) {
	col, ok := auditGroupColumns[by]
	if !ok {
		return nil, fmt.Errorf("gormstore: unknown audit group %q", by)
	}
	q := s.auditQuery(ctx, store.AuditFilter{From: &from, To: &to}).
		Select(col + " AS k, COUNT(*) AS n").Group(col)

	var out []models.GroupCount
	if by == store.GroupByStatus {
		var rows []struct {
			K int
			N int64
		}
		if err := q.Scan(&rows).Error; err != nil {
			return nil, translate(err)
		}
		for _, r := range rows {
			out = append(out, models.GroupCount{ID: r.K, Count: r.N})
		}
	} else {
		var rows []struct {
			K sql.NullString
			N int64
		}
		if err := q.Scan(&rows).Error; err != nil {
			return nil, translate(err)
		}
		for _, r := range rows {
			var key any
			if r.K.Valid {
				key = r.K.String
			}
			out = append(out, models.GroupCount{ID: key, Count: r.N})
		}
	}
	store.SortGroups(out)
	return out, nil
}
