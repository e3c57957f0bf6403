package domain

import (
	"time"
)

// CategoryAggregate is the denormalized counter block a category listing shows.
// It is adjusted in lockstep with thread/post mutations and replaced wholesale
// by the next authoritative category fetch.
type CategoryAggregate struct {
	Slug         CategorySlug `json:"slug"`
	Name         string       `json:"name"`
	ThreadCount  int          `json:"threadCount"`
	PostCount    int          `json:"postCount"`
	LastActivity time.Time    `json:"lastActivityAt"`
}
