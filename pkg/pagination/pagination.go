package pagination

// Page-number pagination used by the catalog list endpoints.

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100
)

// Params holds pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Result describes the page window returned alongside list items.
type Result struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NormalizePage clamps the 1-indexed page number.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizePageSize enforces the configured default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Normalize returns params with page and page size clamped to valid ranges.
func Normalize(p Params) Params {
	return Params{
		Page:     NormalizePage(p.Page),
		PageSize: NormalizePageSize(p.PageSize),
	}
}

// Offset converts the normalized params into a row offset.
func (p Params) Offset() int {
	return (NormalizePage(p.Page) - 1) * NormalizePageSize(p.PageSize)
}

// BuildResult computes totals and page boundaries for the given item count.
func BuildResult(p Params, totalItems int64) Result {
	p = Normalize(p)
	totalPages := int((totalItems + int64(p.PageSize) - 1) / int64(p.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return Result{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1 && totalItems > 0,
	}
}
