// Package view implements the product list view: a single fetch per mount,
// a three-state load result and client-side paging over the fetched
// collection. A ProductListView is owned by one event loop and is not safe
// for concurrent use; fetches run elsewhere and are delivered back through
// Resolve.
package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/product-admin/pkg/format"
	"github.com/Sternrassler/product-admin/pkg/logging"
	"github.com/Sternrassler/product-admin/pkg/metrics"
	"github.com/Sternrassler/product-admin/pkg/pagination"
	"github.com/Sternrassler/product-admin/pkg/product"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LoadState is the state of the view's single fetch.
type LoadState int

const (
	// Idle is a view that has not been mounted.
	Idle LoadState = iota
	// Pending is waiting for the fetch of the current mount.
	Pending
	// Loaded holds the fetched collection.
	Loaded
	// Failed holds the fetch error.
	Failed
)

// String returns the lower-case state name used in logs and metrics.
func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EmptyMessage is shown for a loaded, empty collection.
const EmptyMessage = "No products available."

// ErrNotFailed is returned by Retry outside the Failed state.
var ErrNotFailed = errors.New("retry is only allowed after a failed load")

// Fetcher supplies the product collection. *client.Client implements it.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
}

// Ticket identifies the fetch a result belongs to.
type Ticket struct {
	Generation uint64
	MountID    string
}

// Result is a settled fetch, ready for Resolve.
type Result struct {
	Ticket   Ticket
	Products []product.Product
	Err      error
}

// Fetch runs the fetch for ticket. It does not touch any view and may run
// on any goroutine.
func Fetch(ctx context.Context, f Fetcher, ticket Ticket) Result {
	products, err := f.ListProducts(ctx)
	return Result{Ticket: ticket, Products: products, Err: err}
}

// ProductListView is the paged product table.
type ProductListView struct {
	state    LoadState
	products []product.Product
	err      error
	page     int
	pageSize int

	generation uint64
	mountID    string
	mounted    bool
	startedAt  time.Time

	logger zerolog.Logger
}

// New returns an unmounted view with the default page size.
func New() *ProductListView {
	return NewWithPageSize(pagination.DefaultPageSize)
}

// NewWithPageSize returns an unmounted view. Non-positive sizes fall back to
// the default.
func NewWithPageSize(pageSize int) *ProductListView {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &ProductListView{
		state:    Idle,
		page:     1,
		pageSize: pageSize,
		logger:   logging.NewLogger("view"),
	}
}

// Mount starts a new mount: the collection is dropped, the cursor returns
// to 1 and the view waits for the fetch identified by the returned ticket.
// Results of earlier mounts are ignored from now on.
func (v *ProductListView) Mount() Ticket {
	v.mountID = uuid.NewString()
	v.mounted = true
	v.products = nil
	v.page = 1
	return v.begin()
}

// Retry restarts the fetch after a failure, keeping the mount.
func (v *ProductListView) Retry() (Ticket, error) {
	if !v.mounted || v.state != Failed {
		return Ticket{}, ErrNotFailed
	}
	v.logger.Info().Str("mount_id", v.mountID).Msg("Retrying product list fetch")
	return v.begin(), nil
}

func (v *ProductListView) begin() Ticket {
	v.generation++
	v.state = Pending
	v.err = nil
	v.startedAt = time.Now()

	v.logger.Debug().
		Str("mount_id", v.mountID).
		Uint64("generation", v.generation).
		Msg("Product list fetch started")

	return Ticket{Generation: v.generation, MountID: v.mountID}
}

// Unmount detaches the view; any outstanding fetch result will be ignored.
func (v *ProductListView) Unmount() {
	v.mounted = false
	v.generation++
}

// Resolve applies a settled fetch. It reports false and leaves the view
// unchanged when the result is stale: from an older mount or retry, or
// delivered after Unmount.
func (v *ProductListView) Resolve(r Result) bool {
	if !v.mounted || v.state != Pending || r.Ticket.Generation != v.generation {
		metrics.ViewMountsTotal.WithLabelValues("stale").Inc()
		v.logger.Debug().
			Str("mount_id", r.Ticket.MountID).
			Uint64("generation", r.Ticket.Generation).
			Msg("Ignoring stale product list result")
		return false
	}

	elapsed := time.Since(v.startedAt)
	metrics.ViewFetchDuration.Observe(elapsed.Seconds())

	if r.Err != nil {
		v.state = Failed
		v.err = r.Err
		v.products = nil
		metrics.ViewMountsTotal.WithLabelValues(Failed.String()).Inc()
		v.logger.Error().
			Err(r.Err).
			Str("mount_id", v.mountID).
			Dur("duration", elapsed).
			Msg("Product list fetch failed")
		return true
	}

	v.state = Loaded
	v.products = r.Products
	if v.products == nil {
		v.products = []product.Product{}
	}
	v.page = v.Window().Clamp(v.page)
	metrics.ViewMountsTotal.WithLabelValues(Loaded.String()).Inc()
	v.logger.Debug().
		Str("mount_id", v.mountID).
		Int("products", len(v.products)).
		Dur("duration", elapsed).
		Msg("Product list loaded")
	return true
}

// Load mounts the view and runs the fetch synchronously under ctx.
// It returns the fetch error, which is also held by the view.
func (v *ProductListView) Load(ctx context.Context, f Fetcher) error {
	ticket := v.Mount()
	v.Resolve(Fetch(ctx, f, ticket))
	return v.err
}

// ChangePage moves the cursor, clamped to [1, TotalPages] (1 when there are
// no pages), and returns the page now current.
func (v *ProductListView) ChangePage(page int) int {
	v.page = v.Window().Clamp(page)
	v.logger.Debug().Str("mount_id", v.mountID).Int("page", v.page).Msg("Page changed")
	return v.page
}

// NextPage steps the cursor forward by one, clamped.
func (v *ProductListView) NextPage() int { return v.ChangePage(v.page + 1) }

// PrevPage steps the cursor back by one, clamped.
func (v *ProductListView) PrevPage() int { return v.ChangePage(v.page - 1) }

// State returns the load state.
func (v *ProductListView) State() LoadState { return v.state }

// Err returns the fetch error in the Failed state.
func (v *ProductListView) Err() error { return v.err }

// Page returns the 1-based cursor.
func (v *ProductListView) Page() int { return v.page }

// MountID identifies the current mount in logs.
func (v *ProductListView) MountID() string { return v.mountID }

// Products returns the whole loaded collection.
func (v *ProductListView) Products() []product.Product { return v.products }

// Window returns the page window for the cursor.
func (v *ProductListView) Window() pagination.Window {
	return pagination.NewWindow(len(v.products), v.page, v.pageSize)
}

// TotalPages returns ceil(len(products) / pageSize).
func (v *ProductListView) TotalPages() int { return v.Window().TotalPages() }

// Empty reports a loaded collection without products.
func (v *ProductListView) Empty() bool {
	return v.state == Loaded && len(v.products) == 0
}

// Controls returns the page controls; nil with at most one page.
func (v *ProductListView) Controls() []pagination.Control {
	if v.state != Loaded {
		return nil
	}
	return v.Window().Controls()
}

// Row is one rendered table row.
type Row struct {
	// Index is the 1-based position on the current page.
	Index   int
	Product product.Product
}

// Price returns the prefixed, grouped price.
func (r Row) Price() string {
	return format.PricePrefix + format.FormatPrice(r.Product.Price)
}

// Colors returns the colors joined by ", ".
func (r Row) Colors() string { return r.Product.JoinedColors() }

// Featured returns "Yes" or "No".
func (r Row) Featured() string { return product.YesNo(r.Product.Featured) }

// Shipping returns "Yes" or "No".
func (r Row) Shipping() string { return product.YesNo(r.Product.Shipping) }

// Rows returns the rows of the current page in collection order.
func (v *ProductListView) Rows() []Row {
	if v.state != Loaded {
		return nil
	}
	w := v.Window()
	page := pagination.Slice(v.products, w)
	rows := make([]Row, len(page))
	for i, p := range page {
		rows[i] = Row{Index: i + 1, Product: p}
	}
	return rows
}
