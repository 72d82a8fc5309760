package dashboard

import (
	"context"
	"fmt"
	"time"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
	"vaultadmin/internal/util"
)

type Store interface {
	CountUsers(ctx context.Context, f store.UserFilter) (int64, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

type UserTotals struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Total    int64 `json:"total"`
}

type Stats struct {
	TotalUsers       UserTotals `json:"totalUsers"`
	UsersLoggedToday int64      `json:"usersLoggedToday"`
}

// Stats counts platform users (role "user") by status, and those whose last
// login falls within the current local day.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	active, err := s.store.CountUsers(ctx, store.UserFilter{Role: models.RoleUser, Status: models.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	inactive, err := s.store.CountUsers(ctx, store.UserFilter{Role: models.RoleUser, Status: models.StatusInactive})
	if err != nil {
		return nil, fmt.Errorf("count inactive users: %w", err)
	}
	start, end := util.DayBounds(s.now())
	today, err := s.store.CountUsers(ctx, store.UserFilter{Role: models.RoleUser, LastLoginFrom: &start, LastLoginTo: &end})
	if err != nil {
		return nil, fmt.Errorf("count users logged today: %w", err)
	}
	return &Stats{
		TotalUsers:       UserTotals{Active: active, Inactive: inactive, Total: active + inactive},
		UsersLoggedToday: today,
	}, nil
}
