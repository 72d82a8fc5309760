package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"vaultadmin/internal/models"
)

func (s *Store) FindLoginHistory(ctx context.Context, userID string) (*models.LoginHistory, error) {
	var h models.LoginHistory
	if err := s.db.Collection(colLoginHistory).FindOne(ctx, bson.M{"userId": idMatch(userID)}).Decode(&h); err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (s *Store) CreateLoginHistory(ctx context.Context, h *models.LoginHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.LoginDetails == nil {
		h.LoginDetails = []models.LoginEvent{}
	}
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	_, err := s.db.Collection(colLoginHistory).InsertOne(ctx, h)
	return translate(err)
}

func (s *Store) AppendLoginEvent(ctx context.Context, historyID string, ev models.LoginEvent) error {
	return s.updateByID(ctx, colLoginHistory, historyID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "loginDetails", Value: ev}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (s *Store) ResetLoginEvents(ctx context.Context, historyID string, ev models.LoginEvent) error {
	return s.updateByID(ctx, colLoginHistory, historyID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "loginDetails", Value: []models.LoginEvent{ev}},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}
