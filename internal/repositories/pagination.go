package repositories

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page selects a window of a listing. Construct it with NewPage so the
// bounds are always clamped.
type Page struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPage clamps page to >= 1 and perPage to [1, MaxPerPage].
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Page: page, PerPage: perPage}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}
