package models

import "time"

// SystemMetrics is a lightweight in-process snapshot shown on the admin dashboard.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	ResultsProcessed         uint64    `json:"resultsProcessed"`
	Promotions               uint64    `json:"promotions"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
