package gormstore

import (
	"context"
	"strings"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, translate(err)
}

func (s *Store) CountUsers(ctx context.Context, f store.UserFilter) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.LastLoginFrom != nil {
		q = q.Where("last_login >= ?", utc(f.LastLoginFrom))
	}
	if f.LastLoginTo != nil {
		q = q.Where("last_login < ?", utc(f.LastLoginTo))
	}
	var n int64
	err := q.Count(&n).Error
	return n, translate(err)
}

func (s *Store) RecordLogin(ctx context.Context, userID string, sess store.Session) error {
	return s.updateByID(ctx, &models.User{}, userID, map[string]any{
		"token":            sess.Token,
		"token_expires_at": sess.TokenExpiresAt.UTC(),
		"last_login":       sess.LastLogin.UTC(),
		"ip_system_ip":     sess.IPAddress.SystemIP,
		"ip_browser_ip":    sess.IPAddress.BrowserIP,
		"last_login_ip":    sess.LastLoginIP,
	})
}

func (s *Store) ClearSession(ctx context.Context, userID string) error {
	return s.updateByID(ctx, &models.User{}, userID, map[string]any{
		"token":            nil,
		"token_expires_at": nil,
		"ip_system_ip":     nil,
		"ip_browser_ip":    nil,
	})
}

func (s *Store) SetPassword(ctx context.Context, userID, hash string) error {
	return s.updateByID(ctx, &models.User{}, userID, map[string]any{
		"password":         hash,
		"token":            nil,
		"token_expires_at": nil,
	})
}

func (s *Store) LinkLoginHistory(ctx context.Context, userID, historyID string) error {
	return s.updateByID(ctx, &models.User{}, userID, map[string]any{"login_history_id": historyID})
}
