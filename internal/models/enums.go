package models

import "github.com/rebblit/rebblit-db/pkg/schema"

// Gender is the closed gender set.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ProfileType classifies a profile.
type ProfileType string

const (
	ProfileTypeUser     ProfileType = "user"
	ProfileTypeCreator  ProfileType = "creator"
	ProfileTypeBusiness ProfileType = "business"
)

// MediaType classifies a post media item.
type MediaType string

const (
	MediaTypeVideo   MediaType = "video"
	MediaTypePicture MediaType = "picture"
)

// Enum definitions backing the PostgreSQL enum types.
var (
	GenderEnum = schema.EnumType{
		Name:   "gender",
		Values: []string{string(GenderMale), string(GenderFemale)},
	}

	ProfileTypeEnum = schema.EnumType{
		Name:   "profile_type",
		Values: []string{string(ProfileTypeUser), string(ProfileTypeCreator), string(ProfileTypeBusiness)},
	}

	MediaTypeEnum = schema.EnumType{
		Name:   "media_type",
		Values: []string{string(MediaTypeVideo), string(MediaTypePicture)},
	}
)
