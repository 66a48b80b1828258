package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
)

func newTestPreview(t *testing.T, animate bool) (previewModel, *gallery.Gallery) {
	t.Helper()
	tiles := []layout.Tile{
		{ID: "a", Width: 100, Height: 100},
		{ID: "b", Width: 100, Height: 50},
		{ID: "c", Width: 100, Height: 70},
	}
	host := gallery.NewStatic(250, layout.BoxModel{}, tiles)
	r := newTermRenderer()
	g, err := gallery.New(nil, host, r,
		gallery.WithOptions(gallery.Options{ColumnWidth: 100, BestFit: true, Animate: animate}),
		gallery.WithDelays(time.Millisecond, 20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = g.Close() })

	ctx := context.Background()
	if _, err := g.Init(ctx, gallery.Overrides{}); err != nil {
		t.Fatal(err)
	}
	return newPreviewModel(ctx, g, host, r, tiles, 10, true), g
}

// next runs cmd and feeds its message back into m.
func next(t *testing.T, m previewModel, cmd tea.Cmd) previewModel {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		updated, _ := m.Update(msg)
		return updated.(previewModel)
	case <-time.After(2 * time.Second):
		t.Fatal("no message from renderer")
	}
	return m
}

func TestPreviewReceivesLayout(t *testing.T) {
	m, _ := newTestPreview(t, false)
	m = next(t, m, m.r.waitForLayout())

	if !m.hasRes || m.res.Columns != 2 {
		t.Fatalf("model result = %+v", m.res)
	}
	view := m.View()
	for _, want := range []string{"3 tiles", "2 columns", "bestfit", "┌"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPreviewResize(t *testing.T) {
	m, g := newTestPreview(t, false)
	m = next(t, m, m.r.waitForLayout())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 45, Height: 30})
	m = updated.(previewModel)
	if w, _ := m.host.AvailableWidth(context.Background()); w != 450 {
		t.Errorf("available width = %v, want 45 cells * 10", w)
	}
	if !g.ResizePending() {
		t.Error("resize should be debounced")
	}

	m = next(t, m, m.r.waitForLayout())
	if m.res.Columns != 4 {
		t.Errorf("columns after resize = %d, want 4", m.res.Columns)
	}
}

func TestPreviewTogglePolicy(t *testing.T) {
	m, g := newTestPreview(t, false)
	m = next(t, m, m.r.waitForLayout())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(previewModel)
	if g.Options().BestFit {
		t.Fatal("p should switch to sequential")
	}
	m = next(t, m, m.r.waitForLayout())
	if m.res.Policy != layout.Sequential {
		t.Errorf("policy = %v", m.res.Policy)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if updated.(previewModel).labels {
		t.Error("l should hide labels")
	}
}

func TestPreviewInvalidColumnWidth(t *testing.T) {
	m, _ := newTestPreview(t, false)
	m = next(t, m, m.r.waitForLayout())

	m.reinit(gallery.Overrides{ColumnWidth: gallery.Float(0)})
	if m.err == nil {
		t.Fatal("zero column width should fail")
	}
	if !strings.Contains(m.View(), iconError) {
		t.Error("view should show the error")
	}
}

func TestPreviewAnimation(t *testing.T) {
	m, _ := newTestPreview(t, true)
	m = next(t, m, m.r.waitForAnimation())
	if !m.animated || !strings.Contains(m.View(), "animated") {
		t.Error("animation message not reflected")
	}
}

func TestPreviewQuit(t *testing.T) {
	m, _ := newTestPreview(t, false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
