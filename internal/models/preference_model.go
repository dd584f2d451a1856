package models

import "time"

type Preference struct {
	AccountID          string    `db:"account_id" json:"account_id" bson:"_id"`
	PreferredPostTimes []string  `db:"preferred_post_times" json:"preferred_post_times" bson:"preferred_post_times"`
	CreatedAt          time.Time `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at" bson:"updated_at"`
}
