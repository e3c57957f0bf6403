package domain

import (
	"time"
)

type Thread struct {
	Id           ThreadId     `json:"id"`
	Slug         ThreadSlug   `json:"slug"`
	CategorySlug CategorySlug `json:"categorySlug"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	AuthorId     UserId       `json:"authorId"`
	IsPinned     bool         `json:"isPinned"`
	IsLocked     bool         `json:"isLocked"`
	ViewCount    int          `json:"viewCount"`
	ReplyCount   int          `json:"replyCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	LastActivity time.Time    `json:"lastActivityAt"`

	// TempId is set while the thread only exists locally; cleared once the
	// server assigns the real identity.
	TempId  TempId `json:"-"`
	Pending bool   `json:"-"`
}

// CloneThreads copies a listing page so readers never alias store-owned memory.
func CloneThreads(threads []Thread) []Thread {
	if threads == nil {
		return nil
	}
	dup := make([]Thread, len(threads))
	copy(dup, threads)
	return dup
}
