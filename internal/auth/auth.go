// Package auth configures the authentication provider on top of the store.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/internal/store"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// Config describes an authentication provider instance.
type Config struct {
	// AppName identifies the application in issued credentials.
	AppName string

	// Storage binds the provider to its persistence layer.
	Storage *store.Store

	// EmailAndPassword configures the credential provider.
	EmailAndPassword EmailPasswordConfig

	// TrustedOrigins lists the origins allowed to call the provider.
	TrustedOrigins []string

	// SessionTTL bounds the lifetime of issued sessions.
	SessionTTL time.Duration

	// Plugins extend the provider. Each plugin is initialized once during
	// New, in order.
	Plugins []Plugin
}

// EmailPasswordConfig configures the email-and-password credential provider.
type EmailPasswordConfig struct {
	Enabled                  bool
	MinPasswordLength        int
	MaxPasswordLength        int
	RequireEmailVerification bool
}

// Plugin is an optional provider capability.
type Plugin interface {
	// ID names the plugin, unique within a provider.
	ID() string

	// Init wires the plugin into the provider.
	Init(a *Auth) error
}

const (
	defaultSessionTTL        = 7 * 24 * time.Hour
	defaultMinPasswordLength = 8
	defaultMaxPasswordLength = 128

	// providerIDCredential marks accounts created through the
	// email-and-password provider.
	providerIDCredential = "credential"
)

// Auth is a configured authentication provider.
type Auth struct {
	config  Config
	store   *store.Store
	plugins map[string]Plugin
}

// New builds a provider from the given configuration and initializes its
// plugins.
func New(config Config) (*Auth, error) {
	if config.AppName == "" {
		return nil, fmt.Errorf("auth: app name is required")
	}
	if config.Storage == nil {
		return nil, fmt.Errorf("auth: storage is required")
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = defaultSessionTTL
	}
	if config.EmailAndPassword.MinPasswordLength <= 0 {
		config.EmailAndPassword.MinPasswordLength = defaultMinPasswordLength
	}
	if config.EmailAndPassword.MaxPasswordLength <= 0 {
		config.EmailAndPassword.MaxPasswordLength = defaultMaxPasswordLength
	}

	a := &Auth{
		config:  config,
		store:   config.Storage,
		plugins: make(map[string]Plugin),
	}
	for _, plugin := range config.Plugins {
		if _, exists := a.plugins[plugin.ID()]; exists {
			return nil, fmt.Errorf("auth: duplicate plugin %q", plugin.ID())
		}
		if err := plugin.Init(a); err != nil {
			return nil, fmt.Errorf("auth: init plugin %q: %w", plugin.ID(), err)
		}
		a.plugins[plugin.ID()] = plugin
	}
	return a, nil
}

// AppName returns the configured application name.
func (a *Auth) AppName() string {
	return a.config.AppName
}

// Store returns the bound persistence layer.
func (a *Auth) Store() *store.Store {
	return a.store
}

// Plugin returns a registered plugin by id, or nil.
func (a *Auth) Plugin(id string) Plugin {
	return a.plugins[id]
}

// IsTrustedOrigin reports whether an origin may call the provider. An empty
// trust list admits nothing.
func (a *Auth) IsTrustedOrigin(origin string) bool {
	for _, trusted := range a.config.TrustedOrigins {
		if trusted == origin {
			return true
		}
	}
	return false
}

// SignUp registers a user with an email-and-password credential. The
// password is stored hashed on the linked credential account. User and
// account are created in one transaction, so a failed account insert never
// leaves an orphan user behind.
func (a *Auth) SignUp(ctx context.Context, name, email, username, password string) (*models.User, error) {
	if !a.config.EmailAndPassword.Enabled {
		return nil, fmt.Errorf("auth: email and password sign-up is disabled")
	}
	if err := a.checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = a.store.WithTx(ctx, func(tx *store.Store) error {
		created, err := tx.Users.Create(ctx, models.User{
			Name:     name,
			Email:    email,
			Username: username,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Accounts.Create(ctx, models.Account{
			AccountID:  created.ID,
			ProviderID: providerIDCredential,
			UserID:     created.ID,
			Password:   &hash,
		}); err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn verifies an email-and-password credential and opens a session.
func (a *Auth) SignIn(ctx context.Context, email, password, ipAddress, userAgent string) (*models.Session, error) {
	if !a.config.EmailAndPassword.Enabled {
		return nil, fmt.Errorf("auth: email and password sign-in is disabled")
	}

	user, err := a.store.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	account, err := a.store.Accounts.ByProvider(ctx, providerIDCredential, user.ID)
	if err != nil {
		return nil, err
	}
	if account.Password == nil || !VerifyPassword(*account.Password, password) {
		return nil, &runtime.ValidationError{Field: "password", Message: "invalid credentials"}
	}
	if a.config.EmailAndPassword.RequireEmailVerification && !user.EmailVerified {
		return nil, &runtime.ValidationError{Field: "email", Message: "email not verified"}
	}

	session := models.Session{
		Token:     NewToken(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(a.config.SessionTTL),
	}
	if ipAddress != "" {
		session.IPAddress = &ipAddress
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}
	return a.store.Sessions.Create(ctx, session)
}

// SessionByToken resolves a live session. Expired sessions are treated as
// absent.
func (a *Auth) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	session, err := a.store.Sessions.ByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.ExpiresAt.Before(time.Now().UTC()) {
		return nil, runtime.ErrNotFound
	}
	return session, nil
}

// SignOut closes the session holding the given token.
func (a *Auth) SignOut(ctx context.Context, token string) error {
	return a.store.Sessions.DeleteByToken(ctx, token)
}

func (a *Auth) checkPassword(password string) error {
	if len(password) < a.config.EmailAndPassword.MinPasswordLength {
		return &runtime.ValidationError{Field: "password", Message: "too short"}
	}
	if len(password) > a.config.EmailAndPassword.MaxPasswordLength {
		return &runtime.ValidationError{Field: "password", Message: "too long"}
	}
	return nil
}
