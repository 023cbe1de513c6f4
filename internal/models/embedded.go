package models

// ProfileStatus is the moderation state embedded in the user row.
// The ban field keeps its historical spelling for wire compatibility.
type ProfileStatus struct {
	Bann      bool `json:"bann"`
	Suspended bool `json:"suspended"`
}

// PrivacySettings is the per-user privacy record embedded in the user row.
type PrivacySettings struct {
	PrivateAccount   bool `json:"private_account"`
	SensitiveContent bool `json:"sensitive_content"`
	AcceptComments   bool `json:"accept_comments"`
	AcceptSharing    bool `json:"accept_sharing"`
}

// DefaultPrivacySettings returns the settings applied to new users.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		AcceptComments: true,
		AcceptSharing:  true,
	}
}

// PostCaption is the structured caption embedded in a post row.
// All fields are optional.
type PostCaption struct {
	FullText *string  `json:"full_text,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Lang     *string  `json:"lang,omitempty"`
}

// OriginalMediaInfo describes the source dimensions of a media item.
type OriginalMediaInfo struct {
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	MediaTitle  string  `json:"media_title"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// VideoInfo carries video-only metadata. Present on video media, absent on
// pictures.
type VideoInfo struct {
	DurationMillis int64 `json:"duration_millis"`
}
