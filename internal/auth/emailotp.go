package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// OTPPurpose distinguishes why a one-time password was issued.
type OTPPurpose string

const (
	OTPPurposeSignIn            OTPPurpose = "sign-in"
	OTPPurposeEmailVerification OTPPurpose = "email-verification"
	OTPPurposeForgetPassword    OTPPurpose = "forget-password"
)

// SendOTPFunc delivers a one-time password to the user, typically by email.
type SendOTPFunc func(ctx context.Context, email, otp string, purpose OTPPurpose) error

// EmailOTPPlugin issues and verifies emailed one-time passwords. Codes are
// stored in the verification table under a purpose-scoped identifier.
type EmailOTPPlugin struct {
	// SendVerificationOTP delivers the code. Required.
	SendVerificationOTP SendOTPFunc

	// Digits is the code length. Defaults to 6.
	Digits int

	// ExpiresIn bounds code lifetime. Defaults to 5 minutes.
	ExpiresIn time.Duration

	auth *Auth
}

// EmailOTP constructs the plugin around a delivery callback.
func EmailOTP(send SendOTPFunc) *EmailOTPPlugin {
	return &EmailOTPPlugin{SendVerificationOTP: send}
}

func (p *EmailOTPPlugin) ID() string { return "email-otp" }

func (p *EmailOTPPlugin) Init(a *Auth) error {
	if p.SendVerificationOTP == nil {
		return fmt.Errorf("email-otp: delivery callback is required")
	}
	p.auth = a
	if p.Digits <= 0 {
		p.Digits = 6
	}
	if p.ExpiresIn <= 0 {
		p.ExpiresIn = 5 * time.Minute
	}
	return nil
}

// Send issues a fresh code for the given purpose, replacing any earlier
// ones, and hands it to the delivery callback.
func (p *EmailOTPPlugin) Send(ctx context.Context, email string, purpose OTPPurpose) error {
	identifier := p.identifier(email, purpose)
	if _, err := p.auth.store.Verifications.DeleteByIdentifier(ctx, identifier); err != nil {
		return err
	}

	otp := NewOTP(p.Digits)
	_, err := p.auth.store.Verifications.Create(ctx, models.Verification{
		Identifier: identifier,
		Value:      otp,
		ExpiresAt:  time.Now().UTC().Add(p.ExpiresIn),
	})
	if err != nil {
		return err
	}
	return p.SendVerificationOTP(ctx, email, otp, purpose)
}

// Verify consumes a code. A wrong or expired code leaves nothing consumed.
func (p *EmailOTPPlugin) Verify(ctx context.Context, email string, purpose OTPPurpose, otp string) error {
	identifier := p.identifier(email, purpose)
	record, err := p.auth.store.Verifications.ByIdentifier(ctx, identifier)
	if errors.Is(err, runtime.ErrNotFound) {
		return &runtime.ValidationError{Field: "otp", Message: "code expired or never issued"}
	}
	if err != nil {
		return err
	}
	if record.Value != otp {
		return &runtime.ValidationError{Field: "otp", Message: "invalid code"}
	}

	if _, err := p.auth.store.Verifications.DeleteByIdentifier(ctx, identifier); err != nil {
		return err
	}
	if purpose == OTPPurposeEmailVerification {
		if user, err := p.auth.store.Users.ByEmail(ctx, email); err == nil {
			verified := true
			if _, err := p.auth.store.Users.Update(ctx, user.ID, models.UpdateUser{EmailVerified: &verified}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *EmailOTPPlugin) identifier(email string, purpose OTPPurpose) string {
	return string(purpose) + "-otp-" + email
}
