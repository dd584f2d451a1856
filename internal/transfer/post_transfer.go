package transfer

type PostCreation struct {
	Text          string `json:"text"`
	ScheduledDate string `json:"scheduledDate"`
}

type AutoCreate struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
}

// PreferenceUpdate accepts either a single time or a list, both as HH:MM.
type PreferenceUpdate struct {
	PreferredPostTime  string   `json:"preferred_post_time"`
	PreferredPostTimes []string `json:"preferred_post_times"`
}
