package main

import (
	"testing"
)

// fixedMetrics measures glyphs from the width table and text at a fixed
// advance per rune, so tests do not depend on font rendering.
type fixedMetrics struct{}

func (fixedMetrics) GlyphWidth(name string) float64 { return glyphWidths[name] }

func (fixedMetrics) TextWidth(text string, size float64) float64 {
	return float64(len([]rune(text))) * size / 2
}

func (fixedMetrics) LineHeight(size float64) float64 { return size * 1.25 }

// buildScore makes a score with one treble staff per voice list, all in C
// major and 4/4. Each string is one measure of a single voice.
func buildScore(t *testing.T, staves ...[]string) *Score {
	t.Helper()
	score := &Score{}
	for _, measures := range staves {
		st := &Staff{}
		for _, text := range measures {
			notes, err := parseVoice(text)
			if err != nil {
				t.Fatalf("parseVoice(%q): %v", text, err)
			}
			st.Measures = append(st.Measures, &Measure{
				Clef:   ClefTreble,
				Key:    "c",
				Time:   TimeSignature{Beats: 4, BeatValue: 4},
				Voices: []Voice{{Notes: notes}},
			})
		}
		score.Staves = append(score.Staves, st)
	}
	score.reindex()
	return score
}

func testPrefs() LayoutPreferences {
	return defaultLayoutPreferences()
}

func newTestEngine(score *Score, prefs LayoutPreferences) *Engine {
	return NewLayoutEngine(score, newTheory(), fixedMetrics{}, prefs)
}

// layoutAndMap runs a layout pass and builds the render map from it.
func layoutAndMap(t *testing.T, e *Engine) *RenderMap {
	t.Helper()
	res, err := e.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	elements := newEngraver(e).Draw(nil, nil)
	return BuildRenderMap(e.score, elements, res.Generation)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
