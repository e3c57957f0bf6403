package domain

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Recompute derives TotalPages from total/limit and clamps page into
// [1, TotalPages]. TotalPages is never below 1, even for an empty listing.
func Recompute(total, limit, page int) PaginationMeta {
	if limit < 1 {
		limit = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return PaginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// Adjust re-derives the meta after total changed by delta, keeping the current
// page unless the shrunken listing forces a clamp.
func (m PaginationMeta) Adjust(delta int) PaginationMeta {
	return Recompute(m.Total+delta, m.Limit, m.Page)
}
