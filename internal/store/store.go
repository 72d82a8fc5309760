// Package store defines the persistence contract shared by the relational
// (gormstore) and document (mongostore) backends.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"vaultadmin/internal/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Session is what a successful login writes onto the user record.
type Session struct {
	Token          string
	TokenExpiresAt time.Time
	LastLogin      time.Time
	IPAddress      models.IPAddress
	LastLoginIP    *string
}

type UserFilter struct {
	Role          string
	Status        string
	LastLoginFrom *time.Time // inclusive
	LastLoginTo   *time.Time // exclusive
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	CountUsers(ctx context.Context, f UserFilter) (int64, error)
	RecordLogin(ctx context.Context, userID string, s Session) error
	// ClearSession nulls the token, its expiry and both ip_address fields.
	ClearSession(ctx context.Context, userID string) error
	// SetPassword stores a new hash and drops any stored session token.
	SetPassword(ctx context.Context, userID, hash string) error
	LinkLoginHistory(ctx context.Context, userID, historyID string) error
}

type LoginHistories interface {
	FindLoginHistory(ctx context.Context, userID string) (*models.LoginHistory, error)
	CreateLoginHistory(ctx context.Context, h *models.LoginHistory) error
	AppendLoginEvent(ctx context.Context, historyID string, ev models.LoginEvent) error
	// ResetLoginEvents replaces the whole list with ev.
	ResetLoginEvents(ctx context.Context, historyID string, ev models.LoginEvent) error
}

// Bounds applied by NewPage. Their product stays far below the int range.
const (
	MaxPageNumber = 1_000_000
	MaxPageSize   = 1000
)

type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into [1, MaxPageNumber] and [1, MaxPageSize].
func NewPage(number, size int) Page {
	return Page{Number: clamp(number, 1, MaxPageNumber), Size: clamp(size, 1, MaxPageSize)}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total/size).
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

type AuditFilter struct {
	UserID         string
	UserRole       string
	Method         string
	Endpoint       string // case-insensitive literal substring
	ResponseStatus *int
	From           *time.Time
	To             *time.Time
}

type AuditGroup string

const (
	GroupByMethod AuditGroup = "method"
	GroupByStatus AuditGroup = "responseStatus"
	GroupByRole   AuditGroup = "userRole"
)

type AuditLogs interface {
	CreateAuditLog(ctx context.Context, l *models.AuditLog) error
	// FindAuditLogs returns one page, newest first, and the total match count.
	FindAuditLogs(ctx context.Context, f AuditFilter, p Page) ([]models.AuditLog, int64, error)
	CountAuditLogs(ctx context.Context, from, to time.Time) (int64, error)
	GroupAuditLogs(ctx context.Context, by AuditGroup, from, to time.Time) ([]models.GroupCount, error)
}

type ProductSort string

const (
	SortCreatedAt   ProductSort = "createdAt"
	SortPrice       ProductSort = "price"
	SortReleaseDate ProductSort = "releaseDate"
	SortRating      ProductSort = "rating"
	SortName        ProductSort = "name"
)

type ProductFilter struct {
	Search   string
	Genre    string
	Platform string
	MinPrice *float64
	MaxPrice *float64
	Featured bool
	OnSale   bool
	IsActive *bool
	SortBy   ProductSort
	Asc      bool
}

type Products interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindProducts(ctx context.Context, f ProductFilter, p Page) ([]models.Product, int64, error)
	SaveProduct(ctx context.Context, p *models.Product) error
}

type Store interface {
	Users
	LoginHistories
	AuditLogs
	Products
	Ping(ctx context.Context) error
	Close() error
}

// SortGroups orders buckets by count descending, then by key ascending.
// nil keys sort first among equal counts.
func SortGroups(groups []models.GroupCount) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return keyLess(groups[i].ID, groups[j].ID)
	})
}

func keyLess(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b != nil
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case int:
		bv, ok := b.(int)
		return ok && av < bv
	}
	return false
}
