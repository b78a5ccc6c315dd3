// Package tui is the interactive terminal front end of the product list.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sternrassler/product-admin/pkg/logging"
	"github.com/Sternrassler/product-admin/pkg/metrics"
	"github.com/Sternrassler/product-admin/pkg/product"
	"github.com/Sternrassler/product-admin/pkg/view"
)

// Key bindings.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyLeft  = "left"
	keyH     = "h"
	keyRight = "right"
	keyL     = "l"
	keyRetry = "r"
)

const (
	defaultWidth  = 120
	defaultHeight = 24
	tableHeight   = 12
)

// productsLoadedMsg carries a settled fetch back to the event loop.
type productsLoadedMsg struct {
	result view.Result
}

// Model is the Bubble Tea model around a ProductListView.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	fetcher view.Fetcher

	view    *view.ProductListView
	loading *LoadingState
	table   table.Model

	width    int
	height   int
	quitting bool
}

// NewModel creates an unmounted model. The fetch starts in Init.
func NewModel(ctx context.Context, fetcher view.Fetcher) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		fetcher: fetcher,
		view:    view.New(),
		loading: NewLoadingState(),
		table: table.New(
			table.WithColumns(columns()),
			table.WithHeight(tableHeight),
		),
		width:  defaultWidth,
		height: defaultHeight,
	}
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, fetcher view.Fetcher) error {
	// Log lines would corrupt the alternate screen.
	logging.Discard()

	p := tea.NewProgram(NewModel(ctx, fetcher), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal view: %w", err)
	}
	return nil
}

// ListView returns the wrapped product list view.
func (m *Model) ListView() *view.ProductListView {
	return m.view
}

// Init mounts the view and starts the fetch.
func (m *Model) Init() tea.Cmd {
	ticket := m.view.Mount()
	return tea.Batch(m.loading.Init(), m.fetchCmd(ticket))
}

// fetchCmd runs the fetch off the event loop.
func (m *Model) fetchCmd(ticket view.Ticket) tea.Cmd {
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		return productsLoadedMsg{result: view.Fetch(ctx, fetcher, ticket)}
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case productsLoadedMsg:
		if m.view.Resolve(msg.result) {
			m.refreshTable()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.view.State() == view.Pending {
		return m, m.loading.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case keyQuit, keyCtrlC:
		m.quitting = true
		m.view.Unmount()
		m.cancel()
		return m, tea.Quit
	case keyRetry:
		ticket, err := m.view.Retry()
		if err != nil {
			return m, nil
		}
		return m, tea.Batch(m.loading.Init(), m.fetchCmd(ticket))
	}

	if m.view.State() != view.Loaded {
		return m, nil
	}

	switch key {
	case keyLeft, keyH:
		m.view.PrevPage()
	case keyRight, keyL:
		m.view.NextPage()
	default:
		page, err := strconv.Atoi(key)
		if err != nil || page < 1 || page > 9 {
			return m, nil
		}
		m.view.ChangePage(page)
	}

	m.refreshTable()
	return m, nil
}

// refreshTable copies the current page into the table.
func (m *Model) refreshTable() {
	rows := m.view.Rows()
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row{
			strconv.Itoa(r.Index),
			r.Product.Image,
			r.Product.Name,
			r.Product.Company,
			r.Price(),
			r.Colors(),
			r.Product.Category,
			r.Featured(),
			r.Shipping(),
			strconv.Itoa(r.Product.Stock),
			r.Product.EditPath() + "  " + r.Product.DeletePath(),
		}
	}
	m.table.SetRows(tableRows)
	m.table.SetCursor(0)
	metrics.PageRendersTotal.WithLabelValues("tui", m.view.State().String()).Inc()
}

func columns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Image", Width: 16},
		{Title: "Name", Width: 20},
		{Title: "Company", Width: 12},
		{Title: "Price", Width: 14},
		{Title: "Colors", Width: 16},
		{Title: "Category", Width: 12},
		{Title: "Featured", Width: 8},
		{Title: "Shipping", Width: 8},
		{Title: "Stock", Width: 5},
		{Title: "Actions", Width: 40},
	}
}

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.view.State() {
	case view.Idle, view.Pending:
		b.WriteString(m.loading.View())
	case view.Failed:
		b.WriteString(ErrorStyle.Render("Failed to load products."))
		b.WriteString("\n")
		b.WriteString(m.view.Err().Error())
		b.WriteString("\n\n")
	case view.Loaded:
		if m.view.Empty() {
			b.WriteString(view.EmptyMessage)
			b.WriteString("\n\n")
			break
		}
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if controls := m.renderControls(); controls != "" {
			b.WriteString(controls)
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := TitleStyle.Render("All Products")
	add := SubtitleStyle.Render("Add Product: " + product.NewPath)
	return lipgloss.JoinVertical(lipgloss.Left, title, add)
}

// renderControls renders page selectors with the current page highlighted.
func (m *Model) renderControls() string {
	controls := m.view.Controls()
	if len(controls) == 0 {
		return ""
	}

	parts := make([]string, len(controls))
	for i, c := range controls {
		style := ControlStyle
		if c.Active {
			style = ActiveControlStyle
		}
		parts[i] = style.Render(strconv.Itoa(c.Page))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) renderHelp() string {
	var shortcuts []string
	switch m.view.State() {
	case view.Failed:
		shortcuts = []string{"r: Retry", "q: Quit"}
	case view.Loaded:
		if m.view.TotalPages() > 1 {
			shortcuts = append(shortcuts, "←/h: Previous", "→/l: Next", "1-9: Page")
		}
		shortcuts = append(shortcuts, "q: Quit")
	default:
		shortcuts = []string{"q: Quit"}
	}
	return HelpStyle.Render(strings.Join(shortcuts, " | "))
}
