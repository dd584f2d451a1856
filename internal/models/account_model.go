package models

import "time"

// Account is a registered X account. It doubles as the application user.
type Account struct {
	ID                 string    `db:"id" json:"id" bson:"_id"`
	ExternalID         string    `db:"external_id" json:"external_id" bson:"external_id"`
	Username           string    `db:"username" json:"username" bson:"username"`
	Name               string    `db:"name" json:"name" bson:"name"`
	ProfileImageURL    string    `db:"profile_image_url" json:"profile_image_url" bson:"profile_image_url"`
	AccessToken        string    `db:"access_token" json:"-" bson:"access_token"`
	RefreshToken       string    `db:"refresh_token" json:"-" bson:"refresh_token"`
	HashedRefreshToken string    `db:"hashed_refresh_token" json:"-" bson:"hashed_refresh_token"`
	TokenExpiry        time.Time `db:"token_expiry" json:"token_expiry" bson:"token_expiry"`
	CredentialVersion  int64     `db:"credential_version" json:"-" bson:"credential_version"`
	CreatedAt          time.Time `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at" bson:"updated_at"`
}

// Credentials is the set of fields replaced together on every refresh.
type Credentials struct {
	AccessToken        string
	RefreshToken       string
	HashedRefreshToken string
	TokenExpiry        time.Time
}

// Expired reports whether the access token can no longer be trusted at now.
func (a *Account) Expired(now time.Time) bool {
	return !now.Before(a.TokenExpiry)
}

// Apply copies freshly persisted credentials onto the in-memory account.
func (a *Account) Apply(c Credentials) {
	a.AccessToken = c.AccessToken
	a.RefreshToken = c.RefreshToken
	a.HashedRefreshToken = c.HashedRefreshToken
	a.TokenExpiry = c.TokenExpiry
	a.CredentialVersion++
}
