package models

import "time"

const MaxPostLength = 280

type Post struct {
	ID            string     `db:"id" json:"id" bson:"_id"`
	AccountID     string     `db:"account_id" json:"account_id" bson:"account_id"`
	Text          string     `db:"text" json:"text" bson:"text"`
	ScheduledDate time.Time  `db:"scheduled_date" json:"scheduled_date" bson:"scheduled_date"`
	Status        string     `db:"status" json:"status" bson:"status"` // pending, sent, failed
	Source        string     `db:"source" json:"source" bson:"source"`
	ExternalID    string     `db:"external_id" json:"external_id,omitempty" bson:"external_id,omitempty"`
	Error         string     `db:"error" json:"error,omitempty" bson:"error,omitempty"`
	SentAt        *time.Time `db:"sent_at" json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at" bson:"updated_at"`
	// Seq orders posts sharing a scheduled date by creation.
	Seq int64 `db:"seq" json:"-" bson:"seq"`
}

const (
	PostStatusPending = "pending"
	PostStatusSent    = "sent"
	PostStatusFailed  = "failed"
)

const (
	PostSourceManual    = "manual"
	PostSourceAutomated = "automated"
)

// Failure reasons stored in Post.Error. Generic provider failures store the
// sanitized provider message instead.
const (
	ReasonMissingCredential          = "missing_credential"
	ReasonNoRefreshToken             = "no_refresh_token"
	ReasonRefreshRejected            = "refresh_rejected"
	ReasonInvalidCredential          = "invalid_credential"
	ReasonInvalidCredentialNoRefresh = "invalid_credential_no_refresh"
	ReasonDuplicateContent           = "duplicate_content"
	ReasonPermissionDenied           = "permission_denied"
	ReasonAuthenticationFailed       = "authentication_failed"
)

func (p *Post) Terminal() bool {
	return p.Status == PostStatusSent || p.Status == PostStatusFailed
}
