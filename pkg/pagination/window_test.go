package pagination

import (
	"testing"
)

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestWindow_TotalPages(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 0},
		{1, 1},
		{9, 1},
		{10, 1},
		{11, 2},
		{12, 2},
		{20, 2},
		{25, 3},
		{101, 11},
	}

	for _, tt := range tests {
		w := NewWindow(tt.total, 1, DefaultPageSize)
		if got := w.TotalPages(); got != tt.want {
			t.Errorf("TotalPages(total=%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestWindow_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		wantPage  int
		wantStart int
		wantEnd   int
	}{
		{"empty collection", 0, 1, 1, 0, 0},
		{"first of 25", 25, 1, 1, 0, 10},
		{"middle of 25", 25, 2, 2, 10, 20},
		{"last of 25", 25, 3, 3, 20, 25},
		{"exact multiple", 20, 2, 2, 10, 20},
		{"clamp high", 25, 9, 3, 20, 25},
		{"clamp zero", 25, 0, 1, 0, 10},
		{"clamp negative", 25, -4, 1, 0, 10},
		{"clamp on empty", 0, 5, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.total, tt.page, DefaultPageSize)
			if w.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", w.Page, tt.wantPage)
			}
			if w.Start() != tt.wantStart {
				t.Errorf("Start = %d, want %d", w.Start(), tt.wantStart)
			}
			if w.End() != tt.wantEnd {
				t.Errorf("End = %d, want %d", w.End(), tt.wantEnd)
			}
		})
	}
}

func TestWindow_DefaultPageSize(t *testing.T) {
	w := NewWindow(30, 1, 0)
	if w.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", w.PageSize, DefaultPageSize)
	}
}

// For every page P of a collection of size C, the slice is exactly
// items[(P-1)*10 : min(P*10, C)].
func TestSlice_MatchesFormula(t *testing.T) {
	for total := 0; total <= 45; total++ {
		items := seq(total)
		pages := NewWindow(total, 1, DefaultPageSize).TotalPages()

		for page := 1; page <= pages; page++ {
			got := Slice(items, NewWindow(total, page, DefaultPageSize))

			start := (page - 1) * DefaultPageSize
			end := page * DefaultPageSize
			if end > total {
				end = total
			}
			if len(got) != end-start {
				t.Fatalf("total=%d page=%d: len = %d, want %d", total, page, len(got), end-start)
			}
			for i, v := range got {
				if v != start+i {
					t.Fatalf("total=%d page=%d: got[%d] = %d, want %d", total, page, i, v, start+i)
				}
			}
		}
	}
}

func TestSlice_Page3Of25(t *testing.T) {
	got := Slice(seq(25), NewWindow(25, 3, DefaultPageSize))
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0] != 20 || got[4] != 24 {
		t.Errorf("got %v, want indices 20..24", got)
	}
}

func TestSlice_StaleTotal(t *testing.T) {
	// Window computed for a larger collection is re-clamped to the items given.
	w := NewWindow(50, 5, DefaultPageSize)
	got := Slice(seq(12), w)
	if len(got) != 2 || got[0] != 10 {
		t.Errorf("got %v, want [10 11]", got)
	}
}

func TestWindow_Controls(t *testing.T) {
	t.Run("absent for single page", func(t *testing.T) {
		for _, total := range []int{0, 1, 10} {
			if c := NewWindow(total, 1, DefaultPageSize).Controls(); c != nil {
				t.Errorf("total=%d: controls = %v, want nil", total, c)
			}
		}
	})

	t.Run("exactly one active", func(t *testing.T) {
		for page := 1; page <= 3; page++ {
			controls := NewWindow(25, page, DefaultPageSize).Controls()
			if len(controls) != 3 {
				t.Fatalf("len = %d, want 3", len(controls))
			}
			for i, c := range controls {
				if c.Page != i+1 {
					t.Errorf("controls[%d].Page = %d", i, c.Page)
				}
				if c.Active != (c.Page == page) {
					t.Errorf("page %d: control %d Active = %v", page, c.Page, c.Active)
				}
			}
		}
	})
}

func TestWindow_PrevNext(t *testing.T) {
	w := NewWindow(25, 1, DefaultPageSize)
	if w.HasPrev() || !w.HasNext() {
		t.Errorf("page 1: HasPrev=%v HasNext=%v", w.HasPrev(), w.HasNext())
	}
	w = NewWindow(25, 3, DefaultPageSize)
	if !w.HasPrev() || w.HasNext() {
		t.Errorf("page 3: HasPrev=%v HasNext=%v", w.HasPrev(), w.HasNext())
	}
	if w.Len() != 5 {
		t.Errorf("Len = %d, want 5", w.Len())
	}
}
