package models

import (
	"strings"
	"testing"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }
func intptr(n int) *int       { return &n }

func TestUpdateUser_Changes(t *testing.T) {
	t.Run("empty update carries nothing", func(t *testing.T) {
		changes := UpdateUser{}.Changes()
		if len(changes) != 0 {
			t.Errorf("expected no changes, got %v", changes)
		}
	})

	t.Run("set fields map to columns", func(t *testing.T) {
		gender := GenderFemale
		changes := UpdateUser{
			Name:            strptr("Amira"),
			EmailVerified:   boolptr(true),
			DisplayUsername: strptr("Amira_K"),
			Gender:          &gender,
		}.Changes()

		if len(changes) != 4 {
			t.Fatalf("expected 4 changes, got %d: %v", len(changes), changes)
		}
		if changes["name"] != "Amira" {
			t.Errorf("unexpected name: %v", changes["name"])
		}
		if changes["email_verified"] != true {
			t.Errorf("unexpected email_verified: %v", changes["email_verified"])
		}
		if changes["gender"] != "female" {
			t.Errorf("unexpected gender: %v", changes["gender"])
		}
	})

	t.Run("jsonb fields marshal to strings", func(t *testing.T) {
		changes := UpdateUser{
			ProfileStatus: &ProfileStatus{Bann: true},
		}.Changes()

		status, ok := changes["profile_status"].(string)
		if !ok {
			t.Fatalf("expected string profile_status, got %T", changes["profile_status"])
		}
		if !strings.Contains(status, `"bann":true`) {
			t.Errorf("unexpected profile_status payload: %s", status)
		}
	})
}

func TestUpdateApiKey_Changes(t *testing.T) {
	changes := UpdateApiKey{
		Enabled:             boolptr(false),
		RateLimitMax:        intptr(100),
		RateLimitTimeWindow: intptr(3600000),
	}.Changes()

	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %v", len(changes), changes)
	}
	if changes["enabled"] != false {
		t.Errorf("unexpected enabled: %v", changes["enabled"])
	}
	if changes["rate_limit_max"] != 100 {
		t.Errorf("unexpected rate_limit_max: %v", changes["rate_limit_max"])
	}
	if changes["rate_limit_time_window"] != 3600000 {
		t.Errorf("unexpected rate_limit_time_window: %v", changes["rate_limit_time_window"])
	}
}

func TestUpdatePost_Changes(t *testing.T) {
	caption := PostCaption{
		FullText: strptr("golden hour"),
		Hashtags: []string{"sunset"},
	}
	changes := UpdatePost{Caption: &caption}.Changes()

	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	payload, ok := changes["caption"].(string)
	if !ok {
		t.Fatalf("expected string caption, got %T", changes["caption"])
	}
	if !strings.Contains(payload, `"full_text":"golden hour"`) {
		t.Errorf("unexpected caption payload: %s", payload)
	}
}

func TestUpdatePostMedia_Changes(t *testing.T) {
	changes := UpdatePostMedia{
		MediaAvailability: boolptr(false),
		VideoInfo:         &VideoInfo{DurationMillis: 15000},
	}.Changes()

	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	payload, ok := changes["video_info"].(string)
	if !ok {
		t.Fatalf("expected string video_info, got %T", changes["video_info"])
	}
	if !strings.Contains(payload, `"duration_millis":15000`) {
		t.Errorf("unexpected video_info payload: %s", payload)
	}
}
