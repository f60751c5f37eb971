package service

import "fmt"

// Page bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a zero-based page request.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// NewPage validates a page request. A zero size means DefaultPageSize.
func NewPage(number, size int) (Page, error) {
	if size == 0 {
		size = DefaultPageSize
	}
	if number < 0 {
		return Page{}, fmt.Errorf("%w: page must be at least 0", ErrInvalidPage)
	}
	if size < 1 || size > MaxPageSize {
		return Page{}, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidPage, MaxPageSize)
	}
	return Page{Number: number, Size: size}, nil
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// PageInfo describes a returned page.
type PageInfo struct {
	Number     int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Info describes this page of total rows.
func (p Page) Info(total int) PageInfo {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return PageInfo{Number: p.Number, Size: p.Size, Total: total, TotalPages: pages}
}
