package main

import (
	"math"
	"testing"
)

func newTestEstimator(score *Score) *Estimator {
	return newEstimator(score, newTheory(), fixedMetrics{}, testPrefs())
}

func TestEstimateMeasureContainment(t *testing.T) {
	score := demoScore()
	est := newTestEstimator(score)
	for si, st := range score.Staves {
		prior := MeasureContext{}
		for _, m := range st.Measures {
			e := est.EstimateMeasure(si, m, prior, m.Index == 0, displayFlags{})
			if e.AboveBaseline > 0 || e.BelowBaseline < 0 {
				t.Errorf("staff %d measure %d: extents %v..%v do not contain the baseline", si, m.Index, e.AboveBaseline, e.BelowBaseline)
			}
			if got, want := e.Height(), e.BelowBaseline-e.AboveBaseline; got != want {
				t.Errorf("staff %d measure %d: height %v, want %v", si, m.Index, got, want)
			}
			prior = contextOf(m)
		}
	}
}

func TestEstimateLeadingSymbols(t *testing.T) {
	score := buildScore(t, []string{"c5:4 c5:4 c5:4 c5:4", "c5:4 c5:4 c5:4 c5:4"})
	est := newTestEstimator(score)
	m0, m1 := score.Staves[0].Measures[0], score.Staves[0].Measures[1]

	first := est.EstimateMeasure(0, m0, MeasureContext{}, true, displayFlags{})
	if !first.ForceClef || !first.Display.Time {
		t.Fatalf("first measure should show clef and time: %+v", first.Display)
	}
	if first.Display.Key {
		t.Errorf("C major should not display a key signature")
	}
	wantLeading := glyphWidths["gClef"] + leadingPadding + glyphWidths["timeSigDigit"] + leadingPadding
	if first.LeadingWidth != wantLeading {
		t.Errorf("leading = %v, want %v", first.LeadingWidth, wantLeading)
	}

	second := est.EstimateMeasure(0, m1, contextOf(m0), false, displayFlags{})
	if second.ForceClef || second.Display.any() || second.LeadingWidth != 0 {
		t.Errorf("second measure should need no leading symbols: %+v", second)
	}

	carried := est.EstimateMeasure(0, m1, contextOf(m0), false, displayFlags{Time: true})
	if !carried.Display.Time {
		t.Errorf("carried time obligation was dropped")
	}
}

func TestContentWidthUsesWidestVoice(t *testing.T) {
	score := buildScore(t, []string{"c5:2 c5:2"})
	m := score.Staves[0].Measures[0]
	m.Voices = append(m.Voices, mustVoice("e4:4 e4:4 e4:4 e4:4"))
	est := newTestEstimator(score)

	e := est.EstimateMeasure(0, m, MeasureContext{}, true, displayFlags{})
	want := 4 * (glyphWidths["noteheadBlack"] + testPrefs().NoteSpacing)
	if e.ContentWidth != want {
		t.Errorf("content width = %v, want %v", e.ContentWidth, want)
	}
}

func TestDisplayedAccidental(t *testing.T) {
	score := buildScore(t, []string{"f#4:4 f#4:4 fn4:4 f4:4"})
	m := score.Staves[0].Measures[0]
	notes := m.Voices[0].Notes
	est := newTestEstimator(score)

	tests := []struct {
		idx  int
		want bool
	}{
		{0, true},
		{1, false},
		{2, true},
		{3, false},
	}
	for _, tt := range tests {
		_, show := est.displayedAccidental(m.Key, notes, tt.idx, notes[tt.idx].Pitches[0])
		if show != tt.want {
			t.Errorf("note %d: show = %v, want %v", tt.idx, show, tt.want)
		}
	}

	// in G major the sharp comes from the key signature
	m.Key = "g"
	if _, show := est.displayedAccidental(m.Key, notes, 0, notes[0].Pitches[0]); show {
		t.Errorf("f# in G major should not display an accidental")
	}
}

func TestLyricWidthWidensNote(t *testing.T) {
	score := buildScore(t, []string{"c5:4 c5:4 c5:4 c5:4"})
	m := score.Staves[0].Measures[0]
	annotate(m.Voices[0].Notes[0], ModLyric, "extraordinary", 0)
	annotate(m.Voices[0].Notes[0], ModLyric, "ok", 1)
	est := newTestEstimator(score)

	got := est.noteWidth(m, m.Voices[0].Notes, 0)
	want := fixedMetrics{}.TextWidth("extraordinary", textFontSize) + testPrefs().NoteSpacing
	if got != want {
		t.Errorf("note width = %v, want %v", got, want)
	}
	plain := est.noteWidth(m, m.Voices[0].Notes, 1)
	if plain >= got {
		t.Errorf("plain note (%v) should be narrower than lyric note (%v)", plain, got)
	}
}

func TestVerticalExtentForLyricVerses(t *testing.T) {
	score := buildScore(t, []string{"b4:4 b4:4 b4:4 b4:4"})
	m := score.Staves[0].Measures[0]
	annotate(m.Voices[0].Notes[1], ModLyric, "la", 2)
	est := newTestEstimator(score)

	e := est.EstimateMeasure(0, m, contextOf(m), false, displayFlags{})
	want := est.staffHeight() + 4*fixedMetrics{}.LineHeight(textFontSize)
	if e.BelowBaseline < want {
		t.Errorf("below = %v, want at least %v", e.BelowBaseline, want)
	}
}

func TestStemDirection(t *testing.T) {
	est := newTestEstimator(&Score{})
	high := &Note{Pitches: []Pitch{{Letter: 'd', Octave: 5}}}
	low := &Note{Pitches: []Pitch{{Letter: 'e', Octave: 4}}}
	middle := &Note{Pitches: []Pitch{{Letter: 'b', Octave: 4}}}

	tests := []struct {
		name  string
		n     *Note
		voice int
		up    bool
	}{
		{"above middle line", high, 0, false},
		{"below middle line", low, 0, true},
		{"on middle line", middle, 0, false},
		{"second voice flips", low, 1, false},
		{"forced", &Note{Pitches: high.Pitches, Stem: StemUp}, 0, true},
	}
	for _, tt := range tests {
		if got := est.stemUp(tt.n, tt.voice, ClefTreble); got != tt.up {
			t.Errorf("%s: stemUp = %v, want %v", tt.name, got, tt.up)
		}
	}
}

func TestEntropyPadding(t *testing.T) {
	tests := []struct {
		name    string
		voice   string
		padding bool
	}{
		{"regular quarters", "c5:4 c5:4 c5:4 c5:4", false},
		{"irregular", "c5:8 d#5:8 e5:2 fn5:4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := buildScore(t, []string{tt.voice})
			est := newTestEstimator(score)
			m := score.Staves[0].Measures[0]
			e := est.EstimateMeasure(0, m, MeasureContext{}, true, displayFlags{})
			width, leading, padding := est.justifyColumn([]MeasureEstimate{e})
			if (padding > 0) != tt.padding {
				t.Errorf("padding = %v, want padding: %v", padding, tt.padding)
			}
			if math.Abs(width-(leading+e.ContentWidth+padding)) > 1e-9 {
				t.Errorf("width %v != leading %v + content %v + padding %v", width, leading, e.ContentWidth, padding)
			}
		})
	}
}

func TestVariation(t *testing.T) {
	if v := variation([]float64{3, 3, 3}); v != 0 {
		t.Errorf("variation of constant = %v", v)
	}
	if v := variation([]float64{1}); v != 0 {
		t.Errorf("variation of single value = %v", v)
	}
	if v := variation([]float64{1, 3}); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("variation(1,3) = %v, want 0.5", v)
	}
}
