package auth

import (
	"time"

	"github.com/rebblit/rebblit-db/internal/store"
)

// NewRebblit assembles the production provider: email and password with
// the two-factor, username, email OTP and API key plugins enabled.
func NewRebblit(st *store.Store, sendOTP SendOTPFunc) (*Auth, error) {
	apiKeys := APIKeys()
	apiKeys.RateLimitTimeWindow = 24 * time.Hour
	apiKeys.RateLimitMax = 10

	return New(Config{
		AppName: "Rebblit",
		Storage: st,
		EmailAndPassword: EmailPasswordConfig{
			Enabled: true,
		},
		TrustedOrigins: []string{
			"https://rebblit.com",
			"https://www.rebblit.com",
			"rebblit://",
		},
		Plugins: []Plugin{
			TwoFactor(),
			Username(),
			EmailOTP(sendOTP),
			apiKeys,
		},
	})
}
