package models

// ProfileSettings describes the password gate of a profile.
type ProfileSettings struct {
	IsPrivate   bool `json:"is_private" yaml:"is_private"`
	HasPassword bool `json:"has_password" yaml:"has_password"`
}
