// Package account implements admin sign-in, sign-out, the login ledger and
// password rotation.
package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"vaultadmin/internal/apperr"
	"vaultadmin/internal/auth"
	"vaultadmin/internal/ipinfo"
	"vaultadmin/internal/lock"
	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
	"vaultadmin/internal/validation"
)

const MinPasswordLength = 8

// DefaultSessionTTL is the stored session expiry written at login.
const DefaultSessionTTL = time.Hour

type Store interface {
	store.Users
	store.LoginHistories
}

type Service struct {
	store      Store
	issuer     *auth.Issuer
	ip         ipinfo.Resolver
	locker     lock.Locker
	sessionTTL time.Duration
	lg         *zap.SugaredLogger
	now        func() time.Time
}

func NewService(st Store, issuer *auth.Issuer, ip ipinfo.Resolver, locker lock.Locker, sessionTTL time.Duration, lg *zap.SugaredLogger) *Service {
	if locker == nil {
		locker = lock.Noop{}
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		store:      st,
		issuer:     issuer,
		ip:         ip,
		locker:     locker,
		sessionTTL: sessionTTL,
		lg:         lg,
		now:        time.Now,
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User  *models.User
	Token string
}

func (in *LoginInput) validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return apperr.Missing("All Fields Required")
	}
	if !validation.Var(in.Email, "email") || len(strings.TrimSpace(in.Password)) < MinPasswordLength {
		return apperr.Invalid("all fields are required")
	}
	return nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	u, err := s.store.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.BadRequest("Access denied")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !u.IsAdmin() {
		return nil, apperr.BadRequest("Access denied")
	}
	if !u.Verified {
		return nil, apperr.BadRequest("User is not Verified")
	}
	if u.Status != models.StatusActive {
		return nil, apperr.BadRequest("User is InActive")
	}
	if auth.CheckPassword(u.PasswordHash, in.Password) != nil {
		return nil, apperr.Unauthorized("Password Not Correct")
	}

	now := s.now()
	expiresAt := now.Add(s.sessionTTL).Truncate(time.Second)
	token, err := s.issuer.Issue(u.ID, u.Role, expiresAt.Unix())
	if err != nil {
		return nil, err
	}

	ip := s.ip.Lookup(ctx)
	if err := s.recordLoginEvent(ctx, u, models.LoginEvent{IPAddress: ip, LastLogin: now}); err != nil {
		return nil, fmt.Errorf("login history: %w", err)
	}
	err = s.store.RecordLogin(ctx, u.ID, store.Session{
		Token:          token,
		TokenExpiresAt: expiresAt,
		LastLogin:      now,
		IPAddress:      ip,
		LastLoginIP:    ip.BrowserIP,
	})
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	updated, err := s.store.FindUserByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	s.lg.Infow("admin login", "user_id", u.ID)
	return &LoginResult{User: updated, Token: token}, nil
}

// recordLoginEvent adds ev to the user's ledger, creating it on first use and
// starting over with ev once the ledger holds MaxLoginEvents entries.
func (s *Service) recordLoginEvent(ctx context.Context, u *models.User, ev models.LoginEvent) error {
	unlock, err := s.locker.Lock(ctx, u.ID)
	if err != nil {
		return err
	}
	defer unlock()

	h, err := s.store.FindLoginHistory(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		h = &models.LoginHistory{UserID: u.ID, LoginDetails: []models.LoginEvent{ev}}
		err = s.store.CreateLoginHistory(ctx, h)
		if err == nil {
			return s.store.LinkLoginHistory(ctx, u.ID, h.ID)
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		// Another login created it first.
		h, err = s.store.FindLoginHistory(ctx, u.ID)
	}
	if err != nil {
		return err
	}
	if u.LoginHistoryID == nil || *u.LoginHistoryID != h.ID {
		if err := s.store.LinkLoginHistory(ctx, u.ID, h.ID); err != nil {
			return err
		}
	}
	if h.Full() {
		return s.store.ResetLoginEvents(ctx, h.ID, ev)
	}
	return s.store.AppendLoginEvent(ctx, h.ID, ev)
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperr.Missing("User Id required")
	}
	err := s.store.ClearSession(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return err
}

type HistoryOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type HistoryView struct {
	UserID       *HistoryOwner       `json:"userId"`
	LoginDetails []models.LoginEvent `json:"loginDetails"`
	TotalLogins  int                 `json:"totalLogins"`
}

// LoginHistory returns the ledger newest first, or nil when the user has none.
func (s *Service) LoginHistory(ctx context.Context, userID string) (*HistoryView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Unauthorized("User ID not found. Authentication required.")
	}
	h, err := s.store.FindLoginHistory(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	details := append([]models.LoginEvent{}, h.LoginDetails...)
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].LastLogin.After(details[j].LastLogin)
	})
	view := &HistoryView{LoginDetails: details, TotalLogins: len(details)}

	u, err := s.store.FindUserByID(ctx, userID)
	switch {
	case err == nil:
		view.UserID = &HistoryOwner{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return view, nil
}

type ChangePasswordInput struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword checks, in order: caller id, both fields present, fields match,
// minimum length, user exists, user is admin, differs from current, strength.
func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Unauthorized("User ID not found. Authentication required.")
	}
	if in.NewPassword == "" || in.ConfirmPassword == "" {
		return apperr.Missing("New password and confirm password are required")
	}
	if in.NewPassword != in.ConfirmPassword {
		return apperr.BadRequest("New password and confirm password do not match")
	}
	if len(in.NewPassword) < MinPasswordLength {
		return apperr.Invalid("New password and confirm password are required (minimum 8 characters)")
	}
	u, err := s.store.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return apperr.Forbidden("Access denied. Admin privileges required.")
	}
	if auth.CheckPassword(u.PasswordHash, in.NewPassword) == nil {
		return apperr.BadRequest("New password must be different from current password")
	}
	if auth.PasswordScore(in.NewPassword) < auth.MinPasswordScore {
		return apperr.Invalid("Password is too weak. Please choose a stronger password.")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.SetPassword(ctx, u.ID, hash); err != nil {
		return err
	}
	s.lg.Infow("admin password changed", "user_id", u.ID)
	return nil
}

// EnsureAdmin creates an active, verified admin with an empty ledger unless
// a user with the given email already exists. It reports whether one was created.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := s.now()
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
		Verified:     true,
		VerifiedAt:   &now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	h := &models.LoginHistory{UserID: u.ID}
	if err := s.store.CreateLoginHistory(ctx, h); err != nil {
		return true, err
	}
	return true, s.store.LinkLoginHistory(ctx, u.ID, h.ID)
}
