package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// UsernamePlugin adds username-based lookup and validation on top of the
// unique username column.
type UsernamePlugin struct {
	MinLength int
	MaxLength int

	auth *Auth
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// Username constructs the plugin with defaults.
func Username() *UsernamePlugin {
	return &UsernamePlugin{MinLength: 3, MaxLength: 30}
}

func (p *UsernamePlugin) ID() string { return "username" }

func (p *UsernamePlugin) Init(a *Auth) error {
	p.auth = a
	if p.MinLength <= 0 {
		p.MinLength = 3
	}
	if p.MaxLength <= 0 {
		p.MaxLength = 30
	}
	return nil
}

// Validate checks username shape without touching the database.
func (p *UsernamePlugin) Validate(username string) error {
	if len(username) < p.MinLength {
		return &runtime.ValidationError{Field: "username", Message: "too short"}
	}
	if len(username) > p.MaxLength {
		return &runtime.ValidationError{Field: "username", Message: "too long"}
	}
	if !usernamePattern.MatchString(username) {
		return &runtime.ValidationError{Field: "username", Message: "contains invalid characters"}
	}
	return nil
}

// IsAvailable reports whether a username is free to claim. Comparison is
// case-insensitive on the normalized form.
func (p *UsernamePlugin) IsAvailable(ctx context.Context, username string) (bool, error) {
	if err := p.Validate(username); err != nil {
		return false, err
	}
	_, err := p.auth.store.Users.ByUsername(ctx, strings.ToLower(username))
	if errors.Is(err, runtime.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// SetUsername claims a username for a user, keeping the display form the
// caller provided.
func (p *UsernamePlugin) SetUsername(ctx context.Context, userID, username string) (*models.User, error) {
	if err := p.Validate(username); err != nil {
		return nil, err
	}
	normalized := strings.ToLower(username)
	return p.auth.store.Users.Update(ctx, userID, models.UpdateUser{
		Username:        &normalized,
		DisplayUsername: &username,
	})
}
