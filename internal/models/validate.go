package models

import (
	"github.com/rebblit/rebblit-db/pkg/runtime"
	"github.com/rebblit/rebblit-db/pkg/schema"
)

// ValidateUser checks the write-boundary invariants of a user record.
func ValidateUser(u *User) error {
	if u.ID == "" {
		return &runtime.ValidationError{Field: "id", Message: "must not be empty"}
	}
	if u.Email == "" {
		return &runtime.ValidationError{Field: "email", Message: "must not be empty"}
	}
	if u.Username == "" {
		return &runtime.ValidationError{Field: "username", Message: "must not be empty"}
	}
	if u.Gender != nil {
		if err := schema.ValidateEnumValue("gender", string(*u.Gender)); err != nil {
			return &runtime.ValidationError{Field: "gender", Message: err.Error()}
		}
	}
	if u.ProfileType != "" {
		if err := schema.ValidateEnumValue("profile_type", string(u.ProfileType)); err != nil {
			return &runtime.ValidationError{Field: "profile_type", Message: err.Error()}
		}
	}
	if u.SavesCount < 0 || u.FollowersCount < 0 || u.FollowingCount < 0 || u.PostsCount < 0 {
		return &runtime.ValidationError{Field: "counters", Message: "must not be negative"}
	}
	return nil
}

// ValidatePost checks the write-boundary invariants of a post record.
func ValidatePost(p *Post) error {
	if p.ID == "" {
		return &runtime.ValidationError{Field: "id", Message: "must not be empty"}
	}
	if p.UserID == "" {
		return &runtime.ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if p.LikesCount < 0 || p.SavesCount < 0 || p.CommentsCount < 0 {
		return &runtime.ValidationError{Field: "counters", Message: "must not be negative"}
	}
	return nil
}

// ValidatePostMedia checks the write-boundary invariants of a media record.
// Video metadata must be present on videos and absent on pictures.
func ValidatePostMedia(m *PostMedia) error {
	if m.ID == "" {
		return &runtime.ValidationError{Field: "id", Message: "must not be empty"}
	}
	if m.PostID == "" {
		return &runtime.ValidationError{Field: "post_id", Message: "must not be empty"}
	}
	if m.ThumbnailURL == "" {
		return &runtime.ValidationError{Field: "thumbnail_url", Message: "must not be empty"}
	}
	if m.OriginalURL == "" {
		return &runtime.ValidationError{Field: "original_url", Message: "must not be empty"}
	}
	if err := schema.ValidateEnumValue("media_type", string(m.MediaType)); err != nil {
		return &runtime.ValidationError{Field: "media_type", Message: err.Error()}
	}
	if m.OriginalInfo.Height <= 0 || m.OriginalInfo.Width <= 0 {
		return &runtime.ValidationError{Field: "original_info", Message: "dimensions must be positive"}
	}
	if m.OriginalInfo.AspectRatio <= 0 {
		return &runtime.ValidationError{Field: "original_info.aspect_ratio", Message: "must be positive"}
	}
	switch m.MediaType {
	case MediaTypeVideo:
		if m.VideoInfo == nil {
			return &runtime.ValidationError{Field: "video_info", Message: "required for video media"}
		}
		if m.VideoInfo.DurationMillis <= 0 {
			return &runtime.ValidationError{Field: "video_info.duration_millis", Message: "must be positive"}
		}
	case MediaTypePicture:
		if m.VideoInfo != nil {
			return &runtime.ValidationError{Field: "video_info", Message: "must be absent for picture media"}
		}
	}
	return nil
}
