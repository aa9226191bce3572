package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the offset pagination contract bound from query strings.
type Params struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset"`
}

// Validated clamps limit and offset into their allowed ranges.
func (p Params) Validated() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page wraps a result set with totals for list responses.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}
