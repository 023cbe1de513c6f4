package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebblit/rebblit-db/internal/store"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(runtime.NewDB(nil))
	require.NoError(t, err)
	return st
}

func noopSend(ctx context.Context, email, otp string, purpose OTPPurpose) error {
	return nil
}

func TestNew(t *testing.T) {
	st := testStore(t)

	t.Run("missing app name", func(t *testing.T) {
		_, err := New(Config{Storage: st})
		assert.Error(t, err)
	})

	t.Run("missing storage", func(t *testing.T) {
		_, err := New(Config{AppName: "Rebblit"})
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		a, err := New(Config{AppName: "Rebblit", Storage: st})
		require.NoError(t, err)
		assert.Equal(t, defaultSessionTTL, a.config.SessionTTL)
		assert.Equal(t, defaultMinPasswordLength, a.config.EmailAndPassword.MinPasswordLength)
		assert.Equal(t, defaultMaxPasswordLength, a.config.EmailAndPassword.MaxPasswordLength)
	})

	t.Run("duplicate plugin", func(t *testing.T) {
		_, err := New(Config{
			AppName: "Rebblit",
			Storage: st,
			Plugins: []Plugin{Username(), Username()},
		})
		assert.Error(t, err)
	})

	t.Run("plugin lookup", func(t *testing.T) {
		a, err := New(Config{
			AppName: "Rebblit",
			Storage: st,
			Plugins: []Plugin{Username(), TwoFactor()},
		})
		require.NoError(t, err)
		assert.NotNil(t, a.Plugin("username"))
		assert.NotNil(t, a.Plugin("two-factor"))
		assert.Nil(t, a.Plugin("missing"))
	})
}

func TestIsTrustedOrigin(t *testing.T) {
	a, err := New(Config{
		AppName:        "Rebblit",
		Storage:        testStore(t),
		TrustedOrigins: []string{"https://rebblit.com", "rebblit://"},
	})
	require.NoError(t, err)

	tests := []struct {
		origin  string
		trusted bool
	}{
		{"https://rebblit.com", true},
		{"rebblit://", true},
		{"https://evil.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.trusted, a.IsTrustedOrigin(tt.origin), "origin %q", tt.origin)
	}
}

func TestCheckPassword(t *testing.T) {
	a, err := New(Config{
		AppName: "Rebblit",
		Storage: testStore(t),
		EmailAndPassword: EmailPasswordConfig{
			Enabled:           true,
			MinPasswordLength: 8,
			MaxPasswordLength: 16,
		},
	})
	require.NoError(t, err)

	assert.Error(t, a.checkPassword("short"))
	assert.Error(t, a.checkPassword("this password is far too long"))
	assert.NoError(t, a.checkPassword("just right"))
}

func TestNewRebblit(t *testing.T) {
	a, err := NewRebblit(testStore(t), noopSend)
	require.NoError(t, err)

	assert.Equal(t, "Rebblit", a.AppName())
	for _, id := range []string{"two-factor", "username", "email-otp", "api-key"} {
		assert.NotNil(t, a.Plugin(id), "plugin %s", id)
	}
	assert.True(t, a.IsTrustedOrigin("https://rebblit.com"))
	assert.True(t, a.IsTrustedOrigin("https://www.rebblit.com"))
	assert.True(t, a.IsTrustedOrigin("rebblit://"))

	apiKeys, ok := a.Plugin("api-key").(*APIKeyPlugin)
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, apiKeys.RateLimitTimeWindow)
	assert.Equal(t, 10, apiKeys.RateLimitMax)
}

func TestEmailOTPInit(t *testing.T) {
	_, err := New(Config{
		AppName: "Rebblit",
		Storage: testStore(t),
		Plugins: []Plugin{EmailOTP(nil)},
	})
	assert.Error(t, err)
}
