package mongostore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
)

func userFilter(f store.UserFilter) bson.D {
	d := bson.D{}
	if f.Role != "" {
		d = append(d, bson.E{Key: "role", Value: f.Role})
	}
	if f.Status != "" {
		d = append(d, bson.E{Key: "status", Value: f.Status})
	}
	if f.LastLoginFrom != nil || f.LastLoginTo != nil {
		r := bson.D{}
		if f.LastLoginFrom != nil {
			r = append(r, bson.E{Key: "$gte", Value: *f.LastLoginFrom})
		}
		if f.LastLoginTo != nil {
			r = append(r, bson.E{Key: "$lt", Value: *f.LastLoginTo})
		}
		d = append(d, bson.E{Key: "last_login", Value: r})
	}
	return d
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Status == "" {
		u.Status = models.StatusInactive
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.db.Collection(colUsers).InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.db.Collection(colUsers).FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": idMatch(id)})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.db.Collection(colUsers).Find(ctx, bson.M{"_id": idsMatch(ids)})
	if err != nil {
		return nil, translate(err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context, f store.UserFilter) (int64, error) {
	n, err := s.db.Collection(colUsers).CountDocuments(ctx, userFilter(f))
	return n, translate(err)
}

func (s *Store) RecordLogin(ctx context.Context, userID string, sess store.Session) error {
	return s.updateByID(ctx, colUsers, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "token", Value: sess.Token},
		{Key: "tokenExpiresAt", Value: sess.TokenExpiresAt},
		{Key: "last_login", Value: sess.LastLogin},
		{Key: "ip_address", Value: sess.IPAddress},
		{Key: "lastLoginIp", Value: sess.LastLoginIP},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (s *Store) ClearSession(ctx context.Context, userID string) error {
	return s.updateByID(ctx, colUsers, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "token", Value: nil},
		{Key: "tokenExpiresAt", Value: nil},
		{Key: "ip_address.system_ip", Value: nil},
		{Key: "ip_address.browser_ip", Value: nil},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (s *Store) SetPassword(ctx context.Context, userID, hash string) error {
	return s.updateByID(ctx, colUsers, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "token", Value: nil},
		{Key: "tokenExpiresAt", Value: nil},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (s *Store) LinkLoginHistory(ctx context.Context, userID, historyID string) error {
	return s.updateByID(ctx, colUsers, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "loginHistory", Value: historyID},
	}}})
}
