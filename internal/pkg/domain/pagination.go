package domain

// PageRequest is an (offset, size) window converted to a zero-based page index.
// Offsets that are not a multiple of Size land on the page that contains them.
type PageRequest struct {
	Offset int
	Size   int
}

// NewPageRequest validates offset and size.
func NewPageRequest(offset, size int) (PageRequest, error) {
	if offset < 0 {
		return PageRequest{}, NewBadRequestErrorf("offset must not be negative, got %d", offset)
	}
	if size <= 0 {
		return PageRequest{}, NewBadRequestErrorf("size must be positive, got %d", size)
	}
	return PageRequest{Offset: offset, Size: size}, nil
}

// Index returns offset / size.
func (p PageRequest) Index() int { return p.Offset / p.Size }

// Skip returns the number of rows preceding the page.
func (p PageRequest) Skip() int { return p.Index() * p.Size }

// Page is a single slice of an ordered result set plus the total match count.
type Page[T any] struct {
	Items []T
	Total int64
	Index int
	Size  int
}

// NewPage builds a page for the given request.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Index: req.Index(), Size: req.Size}
}

// IsLast reports whether no rows follow this page.
func (p Page[T]) IsLast() bool {
	return int64((p.Index+1)*p.Size) >= p.Total
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[R]{Items: out, Total: p.Total, Index: p.Index, Size: p.Size}
}

// PaginatedResult is the transport view of a page.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	From  int   `json:"from"`
	Size  int   `json:"size"`
	Last  bool  `json:"last"`
}

// NewPaginatedResult converts a page into its transport view.
func NewPaginatedResult[T any](p Page[T]) PaginatedResult[T] {
	return PaginatedResult[T]{
		Items: p.Items,
		Total: p.Total,
		From:  p.Index * p.Size,
		Size:  p.Size,
		Last:  p.IsLast(),
	}
}
