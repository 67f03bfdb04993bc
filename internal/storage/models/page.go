package models

import "time"

// CachedPage is a stored HTTP response body.
type CachedPage struct {
	Key        string
	URL        string
	StatusCode int
	Body       []byte
	FetchedAt  time.Time
}
