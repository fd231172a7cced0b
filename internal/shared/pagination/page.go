// Package pagination holds the page window and result envelope shared by list use cases.
package pagination

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Request is a zero-based page window.
type Request struct {
	Page int
	Size int
}

// Normalize clamps page to >= 0 and size to 1..MaxSize, defaulting size to DefaultSize.
func Normalize(page, size int) Request {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Request{Page: page, Size: size}
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page is one window of results plus totals.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}

// New builds a page envelope for req.
func New[T any](items []T, req Request, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}
