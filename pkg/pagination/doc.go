// Package pagination computes page windows over an in-memory collection.
//
// The products API returns the whole collection in one response; the admin
// view slices it locally. A Window describes one page of that slice:
//
//	w := pagination.NewWindow(len(products), 3, pagination.DefaultPageSize)
//	rows := pagination.Slice(products, w) // products[20:25] for 25 items
//
// Windows are always clamped: the page is kept within [1, TotalPages], or 1
// when the collection is empty, so Start and End are valid slice bounds for
// any input.
//
// Controls lists the page selectors a front end renders. It is empty when
// the collection fits on a single page.
package pagination
