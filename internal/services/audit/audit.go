// Package audit ingests gateway audit records and serves filtered views and
// rolling statistics over them.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"vaultadmin/internal/apperr"
	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
	"vaultadmin/internal/util"
	"vaultadmin/internal/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	StatsWindow  = 30 * 24 * time.Hour
)

type Store interface {
	store.AuditLogs
	FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type Service struct {
	store Store
	lg    *zap.SugaredLogger
	now   func() time.Time
}

func NewService(st Store, lg *zap.SugaredLogger) *Service {
	return &Service{store: st, lg: lg, now: time.Now}
}

type RecordInput struct {
	UserID         string          `json:"userId"`
	UserRole       string          `json:"userRole" validate:"omitempty,oneof=admin user"`
	Method         string          `json:"method" validate:"oneof=GET POST PUT PATCH DELETE"`
	Endpoint       string          `json:"endpoint"`
	FullURL        string          `json:"fullUrl"`
	RequestBody    json.RawMessage `json:"requestBody"`
	QueryParams    json.RawMessage `json:"queryParams"`
	ResponseStatus *int            `json:"responseStatus"`
	IPAddress      *string         `json:"ipAddress"`
	UserAgent      *string         `json:"userAgent"`
	Action         *string         `json:"action"`
	Duration       *float64        `json:"duration"`
	ErrorMessage   *string         `json:"errorMessage"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) Record(ctx context.Context, in RecordInput) (*models.AuditLog, error) {
	in.Method = strings.ToUpper(strings.TrimSpace(in.Method))
	if in.Method == "" || strings.TrimSpace(in.Endpoint) == "" || in.ResponseStatus == nil || *in.ResponseStatus == 0 {
		return nil, apperr.BadRequest("Missing required audit log fields")
	}
	if err := validation.Struct(&in); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	l := &models.AuditLog{
		UserID:         optional(in.UserID),
		UserRole:       optional(in.UserRole),
		Method:         in.Method,
		Endpoint:       in.Endpoint,
		FullURL:        in.FullURL,
		RequestBody:    models.JSONB(in.RequestBody),
		QueryParams:    models.JSONB(in.QueryParams),
		ResponseStatus: *in.ResponseStatus,
		IPAddress:      in.IPAddress,
		UserAgent:      in.UserAgent,
		Action:         in.Action,
		Duration:       in.Duration,
		ErrorMessage:   in.ErrorMessage,
	}
	if string(l.RequestBody) == "null" {
		l.RequestBody = nil
	}
	if string(l.QueryParams) == "null" {
		l.QueryParams = nil
	}
	if err := s.store.CreateAuditLog(ctx, l); err != nil {
		return nil, fmt.Errorf("create audit log: %w", err)
	}
	return l, nil
}

// QueryParams are the raw query-string values of a listing request.
type QueryParams struct {
	UserID         string
	UserRole       string
	Method         string
	Endpoint       string
	ResponseStatus string
	StartDate      string
	EndDate        string
	Page           string
	Limit          string
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
}

type QueryResult struct {
	AuditLogs  []models.AuditLog `json:"auditLogs"`
	Pagination Pagination        `json:"pagination"`
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (q QueryParams) filter() (store.AuditFilter, error) {
	f := store.AuditFilter{
		UserID:   strings.TrimSpace(q.UserID),
		UserRole: strings.TrimSpace(q.UserRole),
		Method:   strings.ToUpper(strings.TrimSpace(q.Method)),
		Endpoint: q.Endpoint,
	}
	if raw := strings.TrimSpace(q.ResponseStatus); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, apperr.BadRequest("responseStatus must be an integer")
		}
		f.ResponseStatus = &n
	}
	if raw := strings.TrimSpace(q.StartDate); raw != "" {
		t, _, err := util.ParseDate(raw)
		if err != nil {
			return f, apperr.BadRequest("startDate " + err.Error())
		}
		f.From = &t
	}
	if raw := strings.TrimSpace(q.EndDate); raw != "" {
		t, dateOnly, err := util.ParseDate(raw)
		if err != nil {
			return f, apperr.BadRequest("endDate " + err.Error())
		}
		if dateOnly {
			t = util.EndOfDay(t)
		}
		f.To = &t
	}
	return f, nil
}

func (s *Service) Query(ctx context.Context, q QueryParams) (*QueryResult, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	page := store.NewPage(positiveOr(q.Page, DefaultPage), positiveOr(q.Limit, DefaultLimit))
	logs, total, err := s.store.FindAuditLogs(ctx, f, page)
	if err != nil {
		return nil, fmt.Errorf("find audit logs: %w", err)
	}
	if err := s.attachActors(ctx, logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return &QueryResult{
		AuditLogs: logs,
		Pagination: Pagination{
			CurrentPage: page.Number,
			TotalPages:  page.TotalPages(total),
			TotalCount:  total,
			Limit:       page.Size,
		},
	}, nil
}

// attachActors expands each log's userId into the acting user's id, name and email.
func (s *Service) attachActors(ctx context.Context, logs []models.AuditLog) error {
	seen := map[string]bool{}
	var ids []string
	for _, l := range logs {
		if l.UserID != nil && !seen[*l.UserID] {
			seen[*l.UserID] = true
			ids = append(ids, *l.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	users, err := s.store.FindUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("expand audit actors: %w", err)
	}
	actors := make(map[string]*models.Actor, len(users))
	for _, u := range users {
		actors[u.ID] = &models.Actor{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	for i := range logs {
		if logs[i].UserID != nil {
			logs[i].User = actors[*logs[i].UserID]
		}
	}
	return nil
}

type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Stats struct {
	TotalLogs    int64               `json:"totalLogs"`
	LogsByMethod []models.GroupCount `json:"logsByMethod"`
	LogsByStatus []models.GroupCount `json:"logsByStatus"`
	LogsByRole   []models.GroupCount `json:"logsByRole"`
	DateRange    DateRange           `json:"dateRange"`
}

// Stats summarises the last 30 days of audit records.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	end := s.now()
	start := end.Add(-StatsWindow)
	total, err := s.store.CountAuditLogs(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count audit logs: %w", err)
	}
	out := &Stats{TotalLogs: total, DateRange: DateRange{StartDate: start, EndDate: end}}
	groups := []struct {
		by  store.AuditGroup
		dst *[]models.GroupCount
	}{
		{store.GroupByMethod, &out.LogsByMethod},
		{store.GroupByStatus, &out.LogsByStatus},
		{store.GroupByRole, &out.LogsByRole},
	}
	for _, g := range groups {
		counts, err := s.store.GroupAuditLogs(ctx, g.by, start, end)
		if err != nil {
			return nil, fmt.Errorf("group audit logs by %s: %w", g.by, err)
		}
		if counts == nil {
			counts = []models.GroupCount{}
		}
		*g.dst = counts
	}
	return out, nil
}
