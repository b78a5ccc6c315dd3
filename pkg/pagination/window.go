package pagination

// DefaultPageSize is the number of products shown per page.
const DefaultPageSize = 10

// Window is one page of a collection of Total items.
type Window struct {
	// Page is the 1-based page number, already clamped.
	Page int
	// PageSize is the number of items per page.
	PageSize int
	// Total is the size of the whole collection.
	Total int
}

// Control is a single page selector.
type Control struct {
	Page   int
	Active bool
}

// NewWindow returns the window for page over total items.
// Non-positive page sizes fall back to DefaultPageSize and page is clamped.
func NewWindow(total, page, pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	w := Window{PageSize: pageSize, Total: total}
	w.Page = w.Clamp(page)
	return w
}

// TotalPages returns ceil(Total / PageSize); 0 for an empty collection.
func (w Window) TotalPages() int {
	if w.Total <= 0 || w.PageSize <= 0 {
		return 0
	}
	return (w.Total + w.PageSize - 1) / w.PageSize
}

// Clamp bounds page to [1, TotalPages]. An empty collection clamps to 1.
func (w Window) Clamp(page int) int {
	last := w.TotalPages()
	switch {
	case page < 1:
		return 1
	case last == 0:
		return 1
	case page > last:
		return last
	default:
		return page
	}
}

// Start is the index of the first item on the page.
func (w Window) Start() int {
	start := (w.Page - 1) * w.PageSize
	if start > w.Total {
		return w.Total
	}
	return start
}

// End is the exclusive index after the last item on the page.
func (w Window) End() int {
	end := w.Page * w.PageSize
	if end > w.Total {
		return w.Total
	}
	return end
}

// Len is the number of items on the page.
func (w Window) Len() int {
	return w.End() - w.Start()
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool {
	return w.Page > 1
}

// HasNext reports whether a following page exists.
func (w Window) HasNext() bool {
	return w.Page < w.TotalPages()
}

// Controls returns selectors for pages 1..TotalPages with the current page
// marked active. It returns nil when there is at most one page.
func (w Window) Controls() []Control {
	last := w.TotalPages()
	if last <= 1 {
		return nil
	}

	controls := make([]Control, 0, last)
	for page := 1; page <= last; page++ {
		controls = append(controls, Control{
			Page:   page,
			Active: page == w.Page,
		})
	}
	return controls
}

// Slice returns the items of the window, preserving order.
// The result shares the backing array with items.
func Slice[T any](items []T, w Window) []T {
	if len(items) != w.Total {
		w = NewWindow(len(items), w.Page, w.PageSize)
	}
	return items[w.Start():w.End()]
}
