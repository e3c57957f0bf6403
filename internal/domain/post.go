package domain

import (
	"fmt"
	"time"
)

type Post struct {
	Id        PostId    `json:"id"`
	ThreadId  ThreadId  `json:"threadId"`
	AuthorId  UserId    `json:"authorId"`
	Content   string    `json:"content"`
	IsEdited  bool      `json:"isEdited"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// TempId/Pending mark a post that was applied optimistically and is still
	// waiting for the server to confirm it.
	TempId  TempId `json:"-"`
	Pending bool   `json:"-"`
}

// for debug
func (p *Post) String() string {
	id := fmt.Sprintf("%d", p.Id)
	if p.Pending {
		id = "tmp:" + p.TempId
	}
	return fmt.Sprintf("[id:%s, thread:%d, author:%d, edited:%v, created:%s]",
		id, p.ThreadId, p.AuthorId, p.IsEdited, p.CreatedAt.Format(time.StampMilli))
}

// ClonePosts copies a page of posts so readers never alias store-owned memory.
func ClonePosts(posts []Post) []Post {
	if posts == nil {
		return nil
	}
	dup := make([]Post, len(posts))
	copy(dup, posts)
	return dup
}
