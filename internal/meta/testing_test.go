package meta

import (
	"time"

	"github.com/ramonehamilton/meta-collector/internal/fetch"
)

// testFetcher returns an uncached client with no retry delays.
func testFetcher() *fetch.Client {
	return fetch.NewClient(&fetch.Config{
		UserAgent:      "test",
		RequestTimeout: 5 * time.Second,
		RateLimit:      time.Millisecond,
		RetryMax:       0,
		RetryWaitMin:   time.Millisecond,
		RetryWaitMax:   time.Millisecond,
	}, nil)
}
