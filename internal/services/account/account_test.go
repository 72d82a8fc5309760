package account

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vaultadmin/internal/apperr"
	"vaultadmin/internal/auth"
	"vaultadmin/internal/lock"
	"vaultadmin/internal/models"
	"vaultadmin/internal/store/gormstore"
)

const (
	adminEmail    = "admin@gamersvault.io"
	adminPassword = "Sup3r-Secret-Admin!"
	strongPass    = "vR7#qLp!2xZm@9Tw"
)

type fixedIP struct{ system, browser string }

func (f fixedIP) Lookup(context.Context) models.IPAddress {
	s, b := f.system, f.browser
	return models.IPAddress{SystemIP: &s, BrowserIP: &b}
}

type fixture struct {
	issuer *auth.Issuer
	svc    *Service
	admin  *models.User
}

func newStore(t *testing.T) *gormstore.Store {
	t.Helper()
	st, err := gormstore.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newFixture(t *testing.T, st Store, locker lock.Locker) *fixture {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", 0)
	require.NoError(t, err)
	svc := NewService(st, issuer, fixedIP{"10.1.2.3", "198.51.100.4"}, locker, time.Hour, zap.NewNop().Sugar())

	created, err := svc.EnsureAdmin(context.Background(), "Admin", adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, created)
	admin, err := st.FindUserByEmail(context.Background(), adminEmail)
	require.NoError(t, err)
	return &fixture{issuer: issuer, svc: svc, admin: admin}
}

func createUser(t *testing.T, st Store, email, role, status string, verified bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	u := &models.User{Name: "u", Email: email, PasswordHash: hash, Role: role, Status: status, Verified: verified}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func fillLedger(t *testing.T, st Store, userID string, n int) {
	t.Helper()
	h, err := st.FindLoginHistory(context.Background(), userID)
	require.NoError(t, err)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	ip := "old"
	for i := 0; i < n; i++ {
		h.LoginDetails = append(h.LoginDetails, models.LoginEvent{
			IPAddress: models.IPAddress{SystemIP: &ip},
			LastLogin: base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, st.ResetLoginEvents(context.Background(), h.ID, h.LoginDetails[0]))
	for _, ev := range h.LoginDetails[1:] {
		require.NoError(t, st.AppendLoginEvent(context.Background(), h.ID, ev))
	}
}

func ledgerLen(t *testing.T, st Store, userID string) int {
	t.Helper()
	h, err := st.FindLoginHistory(context.Background(), userID)
	require.NoError(t, err)
	return len(h.LoginDetails)
}

func TestLogin(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, LoginInput{Email: "  ADMIN@gamersvault.io ", Password: adminPassword})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.ID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	u := res.User
	require.NotNil(t, u.Token)
	assert.Equal(t, res.Token, *u.Token)
	require.NotNil(t, u.TokenExpiresAt)
	assert.Equal(t, claims.Expiry, u.TokenExpiresAt.Unix())
	assert.Greater(t, claims.ExpiresAt.Unix(), claims.Expiry, "signature outlives the stored session")
	require.NotNil(t, u.LastLogin)
	assert.WithinDuration(t, time.Now(), *u.LastLogin, 5*time.Second)
	assert.Equal(t, "10.1.2.3", *u.IPAddress.SystemIP)
	assert.Equal(t, "198.51.100.4", *u.IPAddress.BrowserIP)
	assert.Equal(t, "198.51.100.4", *u.LastLoginIP)

	assert.Equal(t, 1, ledgerLen(t, st, f.admin.ID))
}

func TestLoginRejections(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	createUser(t, st, "player@gamersvault.io", models.RoleUser, models.StatusActive, true)
	createUser(t, st, "unverified@gamersvault.io", models.RoleAdmin, models.StatusActive, false)
	createUser(t, st, "inactive@gamersvault.io", models.RoleAdmin, models.StatusInactive, true)

	cases := []struct {
		name string
		in   LoginInput
		kind apperr.Kind
		msg  string
	}{
		{"missing email", LoginInput{Password: adminPassword}, apperr.KindMissing, "All Fields Required"},
		{"missing password", LoginInput{Email: adminEmail}, apperr.KindMissing, "All Fields Required"},
		{"bad email", LoginInput{Email: "nope", Password: adminPassword}, apperr.KindInvalid, "all fields are required"},
		{"short password", LoginInput{Email: adminEmail, Password: "short"}, apperr.KindInvalid, "all fields are required"},
		{"unknown user", LoginInput{Email: "ghost@gamersvault.io", Password: adminPassword}, apperr.KindBadRequest, "Access denied"},
		{"not admin", LoginInput{Email: "player@gamersvault.io", Password: adminPassword}, apperr.KindBadRequest, "Access denied"},
		{"unverified", LoginInput{Email: "unverified@gamersvault.io", Password: adminPassword}, apperr.KindBadRequest, "User is not Verified"},
		{"inactive", LoginInput{Email: "inactive@gamersvault.io", Password: adminPassword}, apperr.KindBadRequest, "User is InActive"},
		{"wrong password", LoginInput{Email: adminEmail, Password: "wrong-password"}, apperr.KindUnauthorized, "Password Not Correct"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tc.in)
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.msg, e.Message)
		})
	}

	admin, err := st.FindUserByID(context.Background(), f.admin.ID)
	require.NoError(t, err)
	assert.Nil(t, admin.Token)
	assert.Nil(t, admin.LastLogin)
	assert.Equal(t, 0, ledgerLen(t, st, f.admin.ID))
}

func TestLoginResetsFullLedger(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	fillLedger(t, st, f.admin.ID, models.MaxLoginEvents)
	require.Equal(t, 100, ledgerLen(t, st, f.admin.ID))

	_, err := f.svc.Login(context.Background(), LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	h, err := st.FindLoginHistory(context.Background(), f.admin.ID)
	require.NoError(t, err)
	require.Len(t, h.LoginDetails, 1)
	assert.Equal(t, "10.1.2.3", *h.LoginDetails[0].IPAddress.SystemIP)
}

func TestLoginCreatesMissingLedger(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	u := createUser(t, st, "second@gamersvault.io", models.RoleAdmin, models.StatusActive, true)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: u.Email, Password: adminPassword})
	require.NoError(t, err)

	h, err := st.FindLoginHistory(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, h.LoginDetails, 1)
	got, err := st.FindUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LoginHistoryID)
	assert.Equal(t, h.ID, *got.LoginHistoryID)
}

// rendezvousStore holds every ledger read until two have happened (or a
// timeout passes) so concurrent logins observe the same ledger length.
type rendezvousStore struct {
	Store
	mu      sync.Mutex
	arrived int
	both    chan struct{}
}

func (r *rendezvousStore) FindLoginHistory(ctx context.Context, userID string) (*models.LoginHistory, error) {
	h, err := r.Store.FindLoginHistory(ctx, userID)
	r.mu.Lock()
	r.arrived++
	if r.arrived == 2 {
		close(r.both)
	}
	r.mu.Unlock()
	select {
	case <-r.both:
	case <-time.After(time.Second):
	}
	return h, err
}

func concurrentLogins(t *testing.T, svc *Service) {
	t.Helper()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(context.Background(), LoginInput{Email: adminEmail, Password: adminPassword})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestConcurrentLoginsWithoutLockOvershoot(t *testing.T) {
	st := newStore(t)
	rs := &rendezvousStore{Store: st, both: make(chan struct{})}
	f := newFixture(t, rs, lock.Noop{})
	fillLedger(t, st, f.admin.ID, 99)

	concurrentLogins(t, f.svc)
	assert.Equal(t, 101, ledgerLen(t, st, f.admin.ID))

	_, err := f.svc.Login(context.Background(), LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	assert.Equal(t, 1, ledgerLen(t, st, f.admin.ID))
}

func TestConcurrentLoginsWithLockReset(t *testing.T) {
	st := newStore(t)
	rs := &rendezvousStore{Store: st, both: make(chan struct{})}
	f := newFixture(t, rs, lock.NewMemory())
	fillLedger(t, st, f.admin.ID, 99)

	concurrentLogins(t, f.svc)
	assert.Equal(t, 1, ledgerLen(t, st, f.admin.ID))
}

func TestLogout(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	ctx := context.Background()

	assert.True(t, apperr.Is(f.svc.Logout(ctx, " "), apperr.KindMissing))
	assert.True(t, apperr.Is(f.svc.Logout(ctx, uuid.NewString()), apperr.KindNotFound))

	require.NoError(t, f.svc.Logout(ctx, f.admin.ID), "logout without a session")
	u, err := st.FindUserByID(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Nil(t, u.Token)
	assert.Nil(t, u.TokenExpiresAt)

	_, err = f.svc.Login(ctx, LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, f.admin.ID))
	require.NoError(t, f.svc.Logout(ctx, f.admin.ID))

	u, err = st.FindUserByID(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Nil(t, u.Token)
	assert.Nil(t, u.TokenExpiresAt)
	assert.Nil(t, u.IPAddress.SystemIP)
	assert.Nil(t, u.IPAddress.BrowserIP)
	assert.NotNil(t, u.LastLogin)
}

func TestLoginHistory(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	ctx := context.Background()

	_, err := f.svc.LoginHistory(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	view, err := f.svc.LoginHistory(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, view)

	fillLedger(t, st, f.admin.ID, 3)
	view, err = f.svc.LoginHistory(ctx, f.admin.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 3, view.TotalLogins)
	require.NotNil(t, view.UserID)
	assert.Equal(t, adminEmail, view.UserID.Email)
	assert.Equal(t, models.RoleAdmin, view.UserID.Role)
	for i := 1; i < len(view.LoginDetails); i++ {
		assert.True(t, view.LoginDetails[i-1].LastLogin.After(view.LoginDetails[i].LastLogin))
	}
}

func TestChangePassword(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)
	player := createUser(t, st, "player@gamersvault.io", models.RoleUser, models.StatusActive, true)
	ctx := context.Background()

	cases := []struct {
		name   string
		userID string
		in     ChangePasswordInput
		kind   apperr.Kind
	}{
		{"no user id", "", ChangePasswordInput{strongPass, strongPass}, apperr.KindUnauthorized},
		{"missing confirm", f.admin.ID, ChangePasswordInput{NewPassword: strongPass}, apperr.KindMissing},
		{"mismatch", f.admin.ID, ChangePasswordInput{strongPass, strongPass + "x"}, apperr.KindBadRequest},
		{"too short", f.admin.ID, ChangePasswordInput{"Ab1!", "Ab1!"}, apperr.KindInvalid},
		{"unknown user", uuid.NewString(), ChangePasswordInput{strongPass, strongPass}, apperr.KindNotFound},
		{"mismatch checked before lookup", uuid.NewString(), ChangePasswordInput{strongPass, strongPass + "x"}, apperr.KindBadRequest},
		{"not admin", player.ID, ChangePasswordInput{strongPass, strongPass}, apperr.KindForbidden},
		{"same as current", f.admin.ID, ChangePasswordInput{adminPassword, adminPassword}, apperr.KindBadRequest},
		{"weak", f.admin.ID, ChangePasswordInput{"password1", "password1"}, apperr.KindInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.ChangePassword(ctx, tc.userID, tc.in)
			assert.True(t, apperr.Is(err, tc.kind), "got %v", err)
		})
	}

	_, err := f.svc.Login(ctx, LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.NoError(t, f.svc.ChangePassword(ctx, f.admin.ID, ChangePasswordInput{strongPass, strongPass}))

	u, err := st.FindUserByID(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Nil(t, u.Token, "stored session is revoked")
	assert.NoError(t, auth.CheckPassword(u.PasswordHash, strongPass))

	_, err = f.svc.Login(ctx, LoginInput{Email: adminEmail, Password: adminPassword})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = f.svc.Login(ctx, LoginInput{Email: adminEmail, Password: strongPass})
	assert.NoError(t, err)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	st := newStore(t)
	f := newFixture(t, st, nil)

	created, err := f.svc.EnsureAdmin(context.Background(), "Other", adminEmail, "whatever-password")
	require.NoError(t, err)
	assert.False(t, created)

	require.NotNil(t, f.admin.LoginHistoryID)
	assert.True(t, f.admin.Verified)
	assert.Equal(t, models.StatusActive, f.admin.Status)
	assert.Equal(t, 0, ledgerLen(t, st, f.admin.ID))
}
