package models

import (
	"encoding/json"
	"time"

	"github.com/rebblit/rebblit-db/pkg/schema"
)

// Update shapes carry optional fields for partial updates. Nil fields are
// left untouched in the row. Counter columns are deliberately absent: they
// only move through the atomic Add* store operations.

// UpdateUser is a partial update of a user row.
type UpdateUser struct {
	Name              *string
	Email             *string
	EmailVerified     *bool
	Image             *string
	TwoFactorEnabled  *bool
	Username          *string
	DisplayUsername   *string
	Gender            *Gender
	ProfileType       *ProfileType
	InitRegion        *string
	PlatformName      *string
	IPCountry         *string
	IsBadgeVerified   *bool
	PushPackageUserID *string
	SavedPostIDs      *schema.StringArray
	ProfileStatus     *ProfileStatus
	ProfileBiography  *string
	Privacy           *PrivacySettings
	AddressStreet     *string
	CityName          *string
	Zip               *string
	ProfileCategory   *string
}

// Changes returns the column/value pairs this update carries.
func (u UpdateUser) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	setString(changes, "name", u.Name)
	setString(changes, "email", u.Email)
	setBool(changes, "email_verified", u.EmailVerified)
	setString(changes, "image", u.Image)
	setBool(changes, "two_factor_enabled", u.TwoFactorEnabled)
	setString(changes, "username", u.Username)
	setString(changes, "display_username", u.DisplayUsername)
	if u.Gender != nil {
		changes["gender"] = string(*u.Gender)
	}
	if u.ProfileType != nil {
		changes["profile_type"] = string(*u.ProfileType)
	}
	setString(changes, "init_region", u.InitRegion)
	setString(changes, "platform_name", u.PlatformName)
	setString(changes, "ip_country", u.IPCountry)
	setBool(changes, "is_badge_verified", u.IsBadgeVerified)
	setString(changes, "push_package_user_id", u.PushPackageUserID)
	if u.SavedPostIDs != nil {
		changes["saved_post_ids"] = *u.SavedPostIDs
	}
	setJSONB(changes, "profile_status", u.ProfileStatus)
	setString(changes, "profile_biography", u.ProfileBiography)
	setJSONB(changes, "privacy", u.Privacy)
	setString(changes, "address_street", u.AddressStreet)
	setString(changes, "city_name", u.CityName)
	setString(changes, "zip", u.Zip)
	setString(changes, "profile_category", u.ProfileCategory)
	return changes
}

// UpdateSession is a partial update of a session row.
type UpdateSession struct {
	ExpiresAt *time.Time
	Token     *string
	IPAddress *string
	UserAgent *string
}

// Changes returns the column/value pairs this update carries.
func (u UpdateSession) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	setTime(changes, "expires_at", u.ExpiresAt)
	setString(changes, "token", u.Token)
	setString(changes, "ip_address", u.IPAddress)
	setString(changes, "user_agent", u.UserAgent)
	return changes
}

// UpdateAccount is a partial update of an account row.
type UpdateAccount struct {
	AccessToken           *string
	RefreshToken          *string
	IDToken               *string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	Scope                 *string
	Password              *string
}

// Changes returns the column/value pairs this update carries.
func (u UpdateAccount) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	setString(changes, "access_token", u.AccessToken)
	setString(changes, "refresh_token", u.RefreshToken)
	setString(changes, "id_token", u.IDToken)
	setTime(changes, "access_token_expires_at", u.AccessTokenExpiresAt)
	setTime(changes, "refresh_token_expires_at", u.RefreshTokenExpiresAt)
	setString(changes, "scope", u.Scope)
	setString(changes, "password", u.Password)
	return changes
}

// UpdateApiKey is a partial update of an apikey row. Request accounting
// columns move through the store's RecordRequest operation instead.
type UpdateApiKey struct {
	Name                *string
	Enabled             *bool
	RateLimitEnabled    *bool
	RateLimitTimeWindow *int
	RateLimitMax        *int
	RefillInterval      *int
	RefillAmount        *int
	Remaining           *int
	ExpiresAt           *time.Time
	Permissions         *string
	Metadata            *string
}

// Changes returns the column/value pairs this update carries.
func (u UpdateApiKey) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	setString(changes, "name", u.Name)
	setBool(changes, "enabled", u.Enabled)
	setBool(changes, "rate_limit_enabled", u.RateLimitEnabled)
	setInt(changes, "rate_limit_time_window", u.RateLimitTimeWindow)
	setInt(changes, "rate_limit_max", u.RateLimitMax)
	setInt(changes, "refill_interval", u.RefillInterval)
	setInt(changes, "refill_amount", u.RefillAmount)
	setInt(changes, "remaining", u.Remaining)
	setTime(changes, "expires_at", u.ExpiresAt)
	setString(changes, "permissions", u.Permissions)
	setString(changes, "metadata", u.Metadata)
	return changes
}

// UpdatePost is a partial update of a post row. Engagement counters only
// move through the atomic Add* store operations.
type UpdatePost struct {
	Caption *PostCaption
}

// Changes returns the column/value pairs this update carries.
func (u UpdatePost) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	setJSONB(changes, "caption", u.Caption)
	return changes
}

// UpdatePostMedia is a partial update of a post media row.
type UpdatePostMedia struct {
	ThumbnailURL      *string
	OriginalURL       *string
	MediaAvailability *bool
	VideoInfo         *VideoInfo
}

// Changes returns the column/value pairs this update carries.
func (u UpdatePostMedia) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	setString(changes, "thumbnail_url", u.ThumbnailURL)
	setString(changes, "original_url", u.OriginalURL)
	setBool(changes, "media_availability", u.MediaAvailability)
	setJSONB(changes, "video_info", u.VideoInfo)
	return changes
}

func setString(changes map[string]interface{}, column string, v *string) {
	if v != nil {
		changes[column] = *v
	}
}

func setBool(changes map[string]interface{}, column string, v *bool) {
	if v != nil {
		changes[column] = *v
	}
}

func setInt(changes map[string]interface{}, column string, v *int) {
	if v != nil {
		changes[column] = *v
	}
}

func setTime(changes map[string]interface{}, column string, v *time.Time) {
	if v != nil {
		changes[column] = *v
	}
}

// setJSONB marshals an embedded record for a jsonb column.
func setJSONB[T any](changes map[string]interface{}, column string, v *T) {
	if v == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	changes[column] = string(data)
}
