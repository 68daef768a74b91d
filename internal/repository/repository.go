package repository

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// normalizePage clamps pagination input to sane bounds shared by all
// list queries.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
