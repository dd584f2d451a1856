package transfer

import "encoding/json"

type TrendingResponse struct {
	TrendingSearches json.RawMessage `json:"trending_searches"`
}

type AnalyzeResponse struct {
	Analysis json.RawMessage `json:"analysis"`
}

type QueryStat struct {
	Query string  `json:"query"`
	Value float64 `json:"value"`
}

type KeywordAnalysis struct {
	Keyword       string      `json:"keyword"`
	RisingQueries []QueryStat `json:"rising_queries"`
	TopQueries    []QueryStat `json:"top_queries"`
}
