package auth

import (
	"context"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// APIKeyPlugin issues programmatic keys with sliding-window rate limiting.
type APIKeyPlugin struct {
	// RateLimitEnabled turns request accounting on for new keys.
	RateLimitEnabled bool

	// RateLimitTimeWindow is the accounting window for new keys.
	RateLimitTimeWindow time.Duration

	// RateLimitMax is the request budget per window for new keys.
	RateLimitMax int

	// Prefix is prepended to generated key material.
	Prefix string

	auth *Auth
}

const (
	defaultRateLimitWindow = 24 * time.Hour
	defaultRateLimitMax    = 10
	keyMaterialBytes       = 32
	keyStartLength         = 6
)

// APIKeys constructs the plugin with the default one-day window and
// ten-request budget.
func APIKeys() *APIKeyPlugin {
	return &APIKeyPlugin{
		RateLimitEnabled:    true,
		RateLimitTimeWindow: defaultRateLimitWindow,
		RateLimitMax:        defaultRateLimitMax,
	}
}

func (p *APIKeyPlugin) ID() string { return "api-key" }

func (p *APIKeyPlugin) Init(a *Auth) error {
	p.auth = a
	if p.RateLimitTimeWindow <= 0 {
		p.RateLimitTimeWindow = defaultRateLimitWindow
	}
	if p.RateLimitMax <= 0 {
		p.RateLimitMax = defaultRateLimitMax
	}
	return nil
}

// Create issues a key for a user. The plaintext key is only available on
// the returned row.
func (p *APIKeyPlugin) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (*models.ApiKey, error) {
	material := NewKey(p.Prefix, keyMaterialBytes)
	start := material
	if len(start) > keyStartLength {
		start = start[:keyStartLength]
	}

	enabled := true
	rateLimited := p.RateLimitEnabled
	window := int(p.RateLimitTimeWindow / time.Millisecond)
	max := p.RateLimitMax
	requestCount := 0

	key := models.ApiKey{
		Key:                 material,
		Start:               &start,
		UserID:              userID,
		Enabled:             &enabled,
		RateLimitEnabled:    &rateLimited,
		RateLimitTimeWindow: &window,
		RateLimitMax:        &max,
		RequestCount:        &requestCount,
		ExpiresAt:           expiresAt,
	}
	if name != "" {
		key.Name = &name
	}
	if p.Prefix != "" {
		prefix := p.Prefix
		key.Prefix = &prefix
	}
	return p.auth.store.ApiKeys.Create(ctx, key)
}

// Verify resolves key material to its owning row, enforcing the enabled
// flag, expiry and the rate limit. A successful verification is recorded
// against the key's budget.
func (p *APIKeyPlugin) Verify(ctx context.Context, material string) (*models.ApiKey, error) {
	key, err := p.auth.store.ApiKeys.ByKey(ctx, material)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	if key.Enabled != nil && !*key.Enabled {
		return nil, &runtime.ValidationError{Field: "key", Message: "disabled"}
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(now) {
		return nil, &runtime.ValidationError{Field: "key", Message: "expired"}
	}
	if p.windowElapsed(key, now) {
		return p.auth.store.ApiKeys.StartWindow(ctx, key.ID)
	}
	if p.overBudget(key) {
		return nil, &runtime.ValidationError{Field: "key", Message: "rate limit exceeded"}
	}
	return p.auth.store.ApiKeys.RecordRequest(ctx, key.ID)
}

// windowElapsed reports whether the accounting window since the last
// request has passed, which restarts the count.
func (p *APIKeyPlugin) windowElapsed(key *models.ApiKey, now time.Time) bool {
	if key.RateLimitEnabled == nil || !*key.RateLimitEnabled {
		return false
	}
	if key.RateLimitTimeWindow == nil || key.LastRequest == nil {
		return true
	}
	window := time.Duration(*key.RateLimitTimeWindow) * time.Millisecond
	return now.Sub(*key.LastRequest) > window
}

func (p *APIKeyPlugin) overBudget(key *models.ApiKey) bool {
	if key.RateLimitEnabled == nil || !*key.RateLimitEnabled {
		return false
	}
	if key.RateLimitMax == nil || key.RequestCount == nil {
		return false
	}
	return *key.RequestCount >= *key.RateLimitMax
}
