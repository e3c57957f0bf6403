package domain

type (
	CategorySlug = string
	ThreadId     = int64
	ThreadSlug   = string
	PostId       = int64
	UserId       = int64

	// TempId is a locally generated identity for an entity that has not been
	// committed by the server yet.
	TempId = string
)
