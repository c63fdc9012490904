package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecrets(t *testing.T) {
	t.Setenv("SCHOLARSHIP_JWT_SECRET", "")
	t.Setenv("SCHOLARSHIP_JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCHOLARSHIP_JWT_SECRET", "access")
	t.Setenv("SCHOLARSHIP_JWT_REFRESH_SECRET", "refresh")
	t.Setenv("SCHOLARSHIP_DATABASE_DRIVER", "sqlite")
	t.Setenv("SCHOLARSHIP_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 10*time.Minute, cfg.CategoryCacheTTL)
	require.True(t, cfg.AllowReReview)
	require.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("SCHOLARSHIP_JWT_SECRET", "access")
	t.Setenv("SCHOLARSHIP_JWT_REFRESH_SECRET", "refresh")
	t.Setenv("SCHOLARSHIP_DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}
