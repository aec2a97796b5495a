package main

import (
	"errors"
	"os"
	"slices"
	"testing"
)

func TestExportPNG(t *testing.T) {
	score := buildScore(t, repeat("c5:8 d5:8 e5:4 f5:4 g5:4", 40))
	e := newTestEngine(score, testPrefs())
	if _, err := e.Layout(); err != nil {
		t.Fatal(err)
	}
	g := newEngraver(e)
	dir := t.TempDir()

	written, err := exportPNG(dir, e, g, 0.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != e.PageCount() || !slices.IsSorted(written) {
		t.Fatalf("written = %v for %d pages", written, e.PageCount())
	}
	for _, p := range written {
		if _, err := os.Stat(pagePath(dir, p)); err != nil {
			t.Errorf("page %d: %v", p, err)
		}
	}

	clean := func(int) bool { return false }
	written, err = exportPNG(dir, e, g, 0.5, clean)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 0 {
		t.Errorf("clean export rewrote %v", written)
	}

	if err := os.Remove(pagePath(dir, 0)); err != nil {
		t.Fatal(err)
	}
	written, err = exportPNG(dir, e, g, 0.5, clean)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(written, []int{0}) {
		t.Errorf("missing page not rewritten: %v", written)
	}
}

func TestExportPNGEmpty(t *testing.T) {
	e := newTestEngine(&Score{}, testPrefs())
	if _, err := e.Layout(); err != nil {
		t.Fatal(err)
	}
	if _, err := exportPNG(t.TempDir(), e, newEngraver(e), 1, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}

func TestFontMetrics(t *testing.T) {
	m, err := newFontMetrics(1)
	if err != nil {
		t.Fatal(err)
	}
	if m.TextWidth("", 12) != 0 {
		t.Error("empty text has width")
	}
	short, long := m.TextWidth("la", 12), m.TextWidth("lalalala", 12)
	if short <= 0 || long <= short {
		t.Errorf("TextWidth short %v long %v", short, long)
	}
	if m.LineHeight(12) <= 0 {
		t.Error("LineHeight not positive")
	}
	if m.GlyphWidth("gClef") != glyphWidths["gClef"] || m.GlyphWidth("nope") != 0 {
		t.Error("GlyphWidth does not follow the table")
	}
}
