// Package models defines the persistent entities and their schema mapping.
package models

import (
	"time"

	"github.com/rebblit/rebblit-db/pkg/schema"
)

// User is a registered account holder. Email and username are unique across
// the table. Counter columns never go below zero and are only changed with
// server-side arithmetic. A nil Privacy defers to the column default on
// insert; a non-nil value is stored as given.
type User struct {
	ID                string             `db:"id,text,primaryKey"`
	Name              string             `db:"name,text,notNull"`
	Email             string             `db:"email,text,notNull,unique"`
	EmailVerified     bool               `db:"email_verified,boolean,notNull,default(false)"`
	Image             *string            `db:"image,text"`
	CreatedAt         time.Time          `db:"created_at,timestamp,notNull,default(now())"`
	UpdatedAt         time.Time          `db:"updated_at,timestamp,notNull,default(now())"`
	TwoFactorEnabled  *bool              `db:"two_factor_enabled,boolean,default(false)"`
	Username          string             `db:"username,text,notNull,unique"`
	DisplayUsername   *string            `db:"display_username,text"`
	Gender            *Gender            `db:"gender,enum(gender)"`
	ProfileType       ProfileType        `db:"profile_type,enum(profile_type),notNull,default('user')"`
	InitRegion        *string            `db:"init_region,text"`
	PlatformName      *string            `db:"platform_name,text"`
	IPCountry         *string            `db:"ip_country,text"`
	IsBadgeVerified   bool               `db:"is_badge_verified,boolean,notNull,default(false)"`
	PushPackageUserID *string            `db:"push_package_user_id,text"`
	SavesCount        int                `db:"saves_count,integer,notNull,default(0)"`
	FollowersCount    int                `db:"followers_count,integer,notNull,default(0)"`
	FollowingCount    int                `db:"following_count,integer,notNull,default(0)"`
	PostsCount        int                `db:"posts_count,integer,notNull,default(0)"`
	SavedPostIDs      schema.StringArray `db:"saved_post_ids,text[],notNull,default('{}'::text[])"`
	ProfileStatus     ProfileStatus      `db:"profile_status,jsonb,notNull,default(jsonb_build_object('bann', false, 'suspended', false))"`
	ProfileBiography  *string            `db:"profile_biography,text"`
	Privacy           *PrivacySettings   `db:"privacy,jsonb,notNull,default(jsonb_build_object('private_account', false, 'sensitive_content', false, 'accept_comments', true, 'accept_sharing', true))"`
	AddressStreet     *string            `db:"address_street,text"`
	CityName          *string            `db:"city_name,text"`
	Zip               *string            `db:"zip,text"`
	ProfileCategory   *string            `db:"profile_category,text"`

	Sessions   []Session   `db:"-,hasMany"`
	Accounts   []Account   `db:"-,hasMany"`
	TwoFactors []TwoFactor `db:"-,hasMany"`
}

// Session is an authenticated login session. Deleting the user removes its
// sessions via ON DELETE CASCADE.
type Session struct {
	ID        string    `db:"id,text,primaryKey"`
	ExpiresAt time.Time `db:"expires_at,timestamp,notNull"`
	Token     string    `db:"token,text,notNull,unique"`
	CreatedAt time.Time `db:"created_at,timestamp,notNull,default(now())"`
	UpdatedAt time.Time `db:"updated_at,timestamp,notNull"`
	IPAddress *string   `db:"ip_address,text"`
	UserAgent *string   `db:"user_agent,text"`
	UserID    string    `db:"user_id,text,notNull,fk(user.id),onDelete(cascade),index(session_userId_idx)"`

	User *User `db:"-,belongsTo"`
}

// Account links a user to a credential or OAuth provider. The password
// column is only set for the email-and-password provider.
type Account struct {
	ID                    string     `db:"id,text,primaryKey"`
	AccountID             string     `db:"account_id,text,notNull"`
	ProviderID            string     `db:"provider_id,text,notNull"`
	UserID                string     `db:"user_id,text,notNull,fk(user.id),onDelete(cascade),index(account_userId_idx)"`
	AccessToken           *string    `db:"access_token,text"`
	RefreshToken          *string    `db:"refresh_token,text"`
	IDToken               *string    `db:"id_token,text"`
	AccessTokenExpiresAt  *time.Time `db:"access_token_expires_at,timestamp"`
	RefreshTokenExpiresAt *time.Time `db:"refresh_token_expires_at,timestamp"`
	Scope                 *string    `db:"scope,text"`
	Password              *string    `db:"password,text"`
	CreatedAt             time.Time  `db:"created_at,timestamp,notNull,default(now())"`
	UpdatedAt             time.Time  `db:"updated_at,timestamp,notNull"`

	User *User `db:"-,belongsTo"`
}

// Verification is a pending proof token (email verification, OTP, password
// reset). Identifier groups tokens by purpose and subject.
type Verification struct {
	ID         string    `db:"id,text,primaryKey"`
	Identifier string    `db:"identifier,text,notNull,index(verification_identifier_idx)"`
	Value      string    `db:"value,text,notNull"`
	ExpiresAt  time.Time `db:"expires_at,timestamp,notNull"`
	CreatedAt  time.Time `db:"created_at,timestamp,notNull,default(now())"`
	UpdatedAt  time.Time `db:"updated_at,timestamp,notNull,default(now())"`
}

// TwoFactor holds a user's TOTP secret and backup codes.
type TwoFactor struct {
	ID          string `db:"id,text,primaryKey"`
	Secret      string `db:"secret,text,notNull,index(twoFactor_secret_idx)"`
	BackupCodes string `db:"backup_codes,text,notNull"`
	UserID      string `db:"user_id,text,notNull,fk(user.id),onDelete(cascade),index(twoFactor_userId_idx)"`

	User *User `db:"-,belongsTo"`
}

// ApiKey is a programmatic access key with request-rate accounting.
type ApiKey struct {
	ID                  string     `db:"id,text,primaryKey"`
	Name                *string    `db:"name,text"`
	Start               *string    `db:"start,text"`
	Prefix              *string    `db:"prefix,text"`
	Key                 string     `db:"key,text,notNull,index(apikey_key_idx)"`
	UserID              string     `db:"user_id,text,notNull,fk(user.id),onDelete(cascade),index(apikey_userId_idx)"`
	RefillInterval      *int       `db:"refill_interval,integer"`
	RefillAmount        *int       `db:"refill_amount,integer"`
	LastRefillAt        *time.Time `db:"last_refill_at,timestamp"`
	Enabled             *bool      `db:"enabled,boolean,default(true)"`
	RateLimitEnabled    *bool      `db:"rate_limit_enabled,boolean,default(true)"`
	RateLimitTimeWindow *int       `db:"rate_limit_time_window,integer,default(86400000)"`
	RateLimitMax        *int       `db:"rate_limit_max,integer,default(10)"`
	RequestCount        *int       `db:"request_count,integer,default(0)"`
	Remaining           *int       `db:"remaining,integer"`
	LastRequest         *time.Time `db:"last_request,timestamp"`
	ExpiresAt           *time.Time `db:"expires_at,timestamp"`
	CreatedAt           time.Time  `db:"created_at,timestamp,notNull"`
	UpdatedAt           time.Time  `db:"updated_at,timestamp,notNull"`
	Permissions         *string    `db:"permissions,text"`
	Metadata            *string    `db:"metadata,text"`

	User *User `db:"-,belongsTo"`
}

// Post is a published piece of content with a structured caption and
// non-negative engagement counters.
type Post struct {
	ID            string      `db:"id,text,primaryKey"`
	UserID        string      `db:"user_id,text,notNull,fk(user.id),onDelete(cascade),index(posts_userId_idx)"`
	Caption       PostCaption `db:"caption,jsonb,notNull,default('{}'::jsonb)"`
	LikesCount    int         `db:"likes_count,integer,notNull,default(0)"`
	SavesCount    int         `db:"saves_count,integer,notNull,default(0)"`
	CommentsCount int         `db:"comments_count,integer,notNull,default(0)"`
	CreatedAt     time.Time   `db:"created_at,timestamptz,notNull,default(now()),index(posts_createdAt_idx)"`
	UpdatedAt     time.Time   `db:"updated_at,timestamptz,notNull"`

	User  *User       `db:"-,belongsTo"`
	Media []PostMedia `db:"-,hasMany"`
}

// PostMedia is one media item attached to a post. VideoInfo is present on
// videos and absent on pictures. A nil MediaAvailability defers to the
// column default on insert. Deleting the post removes its media via
// ON DELETE CASCADE.
type PostMedia struct {
	ID                string            `db:"id,text,primaryKey"`
	PostID            string            `db:"post_id,text,notNull,fk(posts.id),onDelete(cascade),index(postMedia_postId_idx)"`
	ThumbnailURL      string            `db:"thumbnail_url,text,notNull"`
	OriginalURL       string            `db:"original_url,text,notNull"`
	MediaType         MediaType         `db:"media_type,enum(media_type),notNull"`
	MediaAvailability *bool             `db:"media_availability,boolean,notNull,default(true)"`
	OriginalInfo      OriginalMediaInfo `db:"original_info,jsonb,notNull"`
	VideoInfo         *VideoInfo        `db:"video_info,jsonb"`
	CreatedAt         time.Time         `db:"created_at,timestamp,notNull,default(now())"`

	Post *Post `db:"-,belongsTo"`
}
