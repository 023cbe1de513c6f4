package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// TwoFactorPlugin adds TOTP second factors with backup codes.
type TwoFactorPlugin struct {
	// Issuer appears in authenticator apps. Defaults to the app name.
	Issuer string

	// BackupCodeCount controls how many one-use recovery codes are issued.
	BackupCodeCount int

	auth *Auth
}

// TwoFactor constructs the plugin with defaults.
func TwoFactor() *TwoFactorPlugin {
	return &TwoFactorPlugin{BackupCodeCount: 10}
}

func (p *TwoFactorPlugin) ID() string { return "two-factor" }

func (p *TwoFactorPlugin) Init(a *Auth) error {
	p.auth = a
	if p.Issuer == "" {
		p.Issuer = a.AppName()
	}
	if p.BackupCodeCount <= 0 {
		p.BackupCodeCount = 10
	}
	return nil
}

// Enable provisions a secret and backup codes for a user and flips the
// two_factor_enabled flag on the profile.
func (p *TwoFactorPlugin) Enable(ctx context.Context, userID string) (*models.TwoFactor, []string, error) {
	codes := make([]string, p.BackupCodeCount)
	for i := range codes {
		codes[i] = NewOTP(8)
	}
	encoded, err := json.Marshal(codes)
	if err != nil {
		return nil, nil, fmt.Errorf("encode backup codes: %w", err)
	}

	record, err := p.auth.store.TwoFactors.Create(ctx, models.TwoFactor{
		Secret:      NewSecret(20),
		BackupCodes: string(encoded),
		UserID:      userID,
	})
	if err != nil {
		return nil, nil, err
	}

	enabled := true
	if _, err := p.auth.store.Users.Update(ctx, userID, models.UpdateUser{TwoFactorEnabled: &enabled}); err != nil {
		return nil, nil, err
	}
	return record, codes, nil
}

// Disable removes the user's second factors and clears the profile flag.
func (p *TwoFactorPlugin) Disable(ctx context.Context, userID string) error {
	if _, err := p.auth.store.TwoFactors.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	enabled := false
	_, err := p.auth.store.Users.Update(ctx, userID, models.UpdateUser{TwoFactorEnabled: &enabled})
	return err
}

// ConsumeBackupCode redeems a one-use recovery code. Each code works once.
func (p *TwoFactorPlugin) ConsumeBackupCode(ctx context.Context, userID, code string) error {
	record, err := p.auth.store.TwoFactors.ByUser(ctx, userID)
	if err != nil {
		return err
	}

	var codes []string
	if err := json.Unmarshal([]byte(record.BackupCodes), &codes); err != nil {
		return fmt.Errorf("decode backup codes: %w", err)
	}
	for i, candidate := range codes {
		if candidate != code {
			continue
		}
		remaining := append(codes[:i:i], codes[i+1:]...)
		encoded, err := json.Marshal(remaining)
		if err != nil {
			return fmt.Errorf("encode backup codes: %w", err)
		}
		_, err = p.auth.store.TwoFactors.SetSecret(ctx, userID, record.Secret, string(encoded))
		return err
	}
	return &runtime.ValidationError{Field: "code", Message: "invalid backup code"}
}
