package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{
		"JWT_USER_SECRETKEY": "s",
		"DATABASE_URL":       "postgres://localhost/db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "4005", cfg.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.IPLookupTimeout)
	assert.Equal(t, LockNone, cfg.LoginLock)
	assert.False(t, cfg.SeedAdmin())
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
	}{
		{"missing secret", map[string]string{"DATABASE_URL": "x"}},
		{"missing dsn", map[string]string{"JWT_USER_SECRETKEY": "s"}},
		{"mongo without url", map[string]string{"JWT_USER_SECRETKEY": "s", "STORE_DRIVER": "mongo"}},
		{"unknown driver", map[string]string{"JWT_USER_SECRETKEY": "s", "STORE_DRIVER": "oracle"}},
		{"redis lock without url", map[string]string{"JWT_USER_SECRETKEY": "s", "DATABASE_URL": "x", "LOGIN_LOCK": "redis"}},
		{"unknown lock", map[string]string{"JWT_USER_SECRETKEY": "s", "DATABASE_URL": "x", "LOGIN_LOCK": "etcd"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fromViper(newViper(tc.values))
			assert.Error(t, err)
		})
	}
}

func TestSeedAdminNormalisesEmail(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{
		"JWT_USER_SECRETKEY": "s",
		"STORE_DRIVER":       "MONGO",
		"MONGO_URL":          "mongodb://localhost:27017",
		"ADMIN_EMAIL":        " Admin@Example.COM ",
		"ADMIN_PASSWORD":     "pw",
	}))
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.True(t, cfg.SeedAdmin())
}
