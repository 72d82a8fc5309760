package gormstore

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaultadmin/internal/models"
)

func (s *Store) FindLoginHistory(ctx context.Context, userID string) (*models.LoginHistory, error) {
	var h models.LoginHistory
	if err := s.db.WithContext(ctx).First(&h, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (s *Store) CreateLoginHistory(ctx context.Context, h *models.LoginHistory) error {
	if h.LoginDetails == nil {
		h.LoginDetails = datatypes.JSONSlice[models.LoginEvent]{}
	}
	return translate(s.db.WithContext(ctx).Create(h).Error)
}

// AppendLoginEvent extends the stored list inside one transaction so that
// concurrent appends are not lost. It does not enforce the size bound.
func (s *Store) AppendLoginEvent(ctx context.Context, historyID string, ev models.LoginEvent) error {
	ev.LastLogin = ev.LastLogin.UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if s.isPostgres() {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var h models.LoginHistory
		if err := q.First(&h, "id = ?", historyID).Error; err != nil {
			return translate(err)
		}
		details := append(h.LoginDetails, ev)
		return translate(tx.Model(&h).Update("login_details", details).Error)
	})
}

func (s *Store) ResetLoginEvents(ctx context.Context, historyID string, ev models.LoginEvent) error {
	ev.LastLogin = ev.LastLogin.UTC()
	return s.updateByID(ctx, &models.LoginHistory{}, historyID, map[string]any{
		"login_details": datatypes.JSONSlice[models.LoginEvent]{ev},
	})
}
