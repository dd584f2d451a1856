package models

import "time"

type HourlyInsight struct {
	Hour              int     `json:"hour" bson:"hour"`
	AverageEngagement float64 `json:"average_engagement" bson:"average_engagement"`
}

type Analytics struct {
	AccountID       string          `db:"account_id" json:"account_id" bson:"_id"`
	BestTimesToPost []HourlyInsight `db:"best_times_to_post" json:"best_times_to_post" bson:"best_times_to_post"`
	HourlyInsights  []HourlyInsight `db:"hourly_insights" json:"hourly_insights" bson:"hourly_insights"`
	SourceObject    string          `db:"source_object" json:"source_object,omitempty" bson:"source_object,omitempty"`
	LastUpdated     time.Time       `db:"last_updated" json:"last_updated" bson:"last_updated"`
}
