package main

import (
	"math"
	"strconv"
)

const (
	staffSpace     = 10.0
	stemSpaces     = 3.5
	graceScale     = 0.65
	textFontSize   = 12.0
	tempoFontSize  = 13.0
	leadingPadding = 4.0
	maxEntropy     = 1.0
)

// MeasureContext is the clef, key, time signature and tempo in force at the
// measure before the one being estimated. Valid is false for the first
// measure of a staff.
type MeasureContext struct {
	Clef  ClefType
	Key   string
	Time  TimeSignature
	Tempo Tempo
	Valid bool
}

func contextOf(m *Measure) MeasureContext {
	return MeasureContext{Clef: m.Clef, Key: m.Key, Time: m.Time, Tempo: m.Tempo, Valid: true}
}

// displayFlags are symbol display obligations. The layout engine carries
// them forward from systems it hides.
type displayFlags struct {
	Key   bool
	Time  bool
	Tempo bool
}

func (d displayFlags) any() bool { return d.Key || d.Time || d.Tempo }

// TickContext collects note widths and durations for one measure. It only
// lives for the duration of one estimate and the column justification that
// consumes it.
type TickContext struct {
	widths    []float64
	durations []float64
}

func newTickContext() TickContext { return TickContext{} }

func (tc *TickContext) add(width float64, ticks int) {
	tc.widths = append(tc.widths, width)
	tc.durations = append(tc.durations, float64(ticks)/TicksPerQuarter)
}

type MeasureEstimate struct {
	LeadingWidth  float64
	ContentWidth  float64
	AboveBaseline float64
	BelowBaseline float64
	Display       displayFlags
	ForceClef     bool
	Ticks         TickContext
}

func (e MeasureEstimate) Width() float64  { return e.LeadingWidth + e.ContentWidth }
func (e MeasureEstimate) Height() float64 { return e.BelowBaseline - e.AboveBaseline }

type Estimator struct {
	score   *Score
	theory  Theory
	metrics GlyphMetrics
	prefs   LayoutPreferences
	space   float64
}

func newEstimator(score *Score, theory Theory, metrics GlyphMetrics, prefs LayoutPreferences) *Estimator {
	zoom := prefs.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return &Estimator{score: score, theory: theory, metrics: metrics, prefs: prefs, space: staffSpace * zoom}
}

func (e *Estimator) staffHeight() float64 { return 4 * e.space }

// lineY converts a staff line position into a y offset from the top line.
func (e *Estimator) lineY(pos int) float64 {
	return float64(4-pos) * e.space / 2
}

// EstimateMeasure computes the width and vertical extent of one measure.
// Extents are relative to the top staff line, so AboveBaseline <= 0 and
// BelowBaseline >= the staff height.
func (e *Estimator) EstimateMeasure(staffIdx int, m *Measure, prior MeasureContext, firstInSystem bool, carry displayFlags) MeasureEstimate {
	est := MeasureEstimate{Ticks: newTickContext()}

	est.ForceClef = firstInSystem || !prior.Valid || prior.Clef != m.Clef
	keyCount := e.theory.KeyAccidentalCount(m.Key)
	keyChanged := prior.Valid && prior.Key != m.Key
	est.Display.Key = carry.Key || keyChanged || ((firstInSystem || !prior.Valid) && keyCount > 0)
	est.Display.Time = carry.Time || !prior.Valid || prior.Time != m.Time
	est.Display.Tempo = carry.Tempo || !prior.Valid || prior.Tempo != m.Tempo

	est.LeadingWidth = e.leadingWidth(m, prior, est)
	est.ContentWidth = e.contentWidth(m, &est.Ticks)
	est.AboveBaseline, est.BelowBaseline = e.verticalExtent(staffIdx, m, est)
	return est
}

func (e *Estimator) leadingWidth(m *Measure, prior MeasureContext, est MeasureEstimate) float64 {
	w := 0.0
	if est.ForceClef {
		w += e.metrics.GlyphWidth(clefGlyph(m.Clef)) + leadingPadding
	}
	if est.Display.Key {
		// Cancelling naturals take the old key's room.
		n := e.theory.KeyAccidentalCount(m.Key)
		if prior.Valid && prior.Key != m.Key {
			n = max(n, e.theory.KeyAccidentalCount(prior.Key))
		}
		glyph := e.metrics.GlyphWidth("accidentalSharp")
		w += float64(n) * (glyph + 2)
		if n > 0 {
			w += leadingPadding
		}
	}
	if est.Display.Time {
		digits := max(len(strconv.Itoa(m.Time.Beats)), len(strconv.Itoa(m.Time.BeatValue)))
		w += float64(digits)*e.metrics.GlyphWidth("timeSigDigit") + leadingPadding
	}
	return w
}

func (e *Estimator) contentWidth(m *Measure, tc *TickContext) float64 {
	widest := 0.0
	for _, v := range m.Voices {
		total := 0.0
		for i, n := range v.Notes {
			w := e.noteWidth(m, v.Notes, i)
			tc.add(w, n.Ticks)
			total += w
		}
		widest = max(widest, total)
	}
	return widest
}

// noteWidth is the horizontal room of one note. Lyric and chord text sits
// under or over the glyphs, so the wider of the two counts, not their sum.
func (e *Estimator) noteWidth(m *Measure, notes []*Note, idx int) float64 {
	n := notes[idx]
	base, dots := e.theory.DurationParts(n.Ticks)

	var glyphs float64
	if n.Rest {
		glyphs = e.metrics.GlyphWidth(restGlyph(base))
	} else {
		glyphs = e.metrics.GlyphWidth(noteheadGlyph(base))
		for _, p := range n.Pitches {
			if acc, show := e.displayedAccidental(m.Key, notes, idx, p); show {
				glyphs += e.metrics.GlyphWidth(accidentalGlyph(acc))
			}
		}
		if base < TicksPerQuarter {
			glyphs += e.metrics.GlyphWidth("flag")
		}
	}
	glyphs += float64(dots) * e.metrics.GlyphWidth("augmentationDot")

	for _, g := range n.GraceNotes {
		gw := e.metrics.GlyphWidth("noteheadBlack")
		for _, p := range g.Pitches {
			if p.Accidental != "" {
				gw += e.metrics.GlyphWidth(accidentalGlyph(p.Accidental))
			}
		}
		glyphs += gw * graceScale
	}

	text := 0.0
	for _, mod := range n.Modifiers {
		switch mod.Kind {
		case ModLyric, ModChord:
			text = max(text, e.metrics.TextWidth(mod.Text, textFontSize))
		case ModMicrotone:
			glyphs += e.metrics.GlyphWidth("accidentalMicrotone")
		case ModDynamic, ModArticulation, ModOrnament:
		}
	}

	return max(glyphs, text) + e.prefs.NoteSpacing
}

// displayedAccidental decides whether p needs an accidental sign. The active
// alteration of a staff line is the last declared accidental on that line
// earlier in the voice, or the key signature when there is none.
func (e *Estimator) displayedAccidental(key string, notes []*Note, idx int, p Pitch) (string, bool) {
	if p.Accidental == "" {
		return "", false
	}
	active := ""
	for i := idx - 1; i >= 0 && active == ""; i-- {
		if notes[i].Rest {
			continue
		}
		for _, prev := range notes[i].Pitches {
			if prev.Letter == p.Letter && prev.Octave == p.Octave && prev.Accidental != "" {
				active = prev.Accidental
			}
		}
	}
	if active == "" {
		active = e.theory.KeyAccidental(key, p.Letter)
	}
	return p.Accidental, p.Accidental != active || p.Cautionary
}

func (e *Estimator) stemUp(n *Note, voice int, clef ClefType) bool {
	switch n.Stem {
	case StemUp:
		return true
	case StemDown:
		return false
	}
	sum := 0
	for _, p := range n.Pitches {
		sum += e.theory.StaffLine(p, clef)
	}
	up := sum < 0
	if voice%2 == 1 {
		up = !up
	}
	return up
}

func (e *Estimator) verticalExtent(staffIdx int, m *Measure, est MeasureEstimate) (float64, float64) {
	space := e.space
	staffBottom := e.staffHeight()
	highest, lowest := 0.0, staffBottom

	if staffIdx >= 0 && staffIdx < len(e.score.Staves) {
		for _, sm := range e.score.Staves[staffIdx].Modifiers {
			if !sm.SpansMeasure(m.Index) {
				continue
			}
			switch sm.Kind {
			case StaffHairpin:
				lowest = max(lowest, staffBottom+2.5*space)
			case StaffSlur:
				highest = min(highest, -1.5*space)
			case StaffBracket:
				highest = min(highest, -2*space)
			case StaffTempoText:
				highest = min(highest, -(e.metrics.LineHeight(tempoFontSize) + space))
			}
		}
	}

	if est.ForceClef {
		highest = min(highest, -space)
		lowest = max(lowest, staffBottom+space)
	}
	if est.Display.Tempo && m.Tempo.BPM > 0 {
		highest = min(highest, -(e.metrics.LineHeight(tempoFontSize) + space))
	}

	maxVerse := -1
	for vi, v := range m.Voices {
		for _, n := range v.Notes {
			maxVerse = max(maxVerse, n.MaxVerse())
			if n.Rest || len(n.Pitches) == 0 {
				continue
			}
			lo, hi := math.MaxInt, math.MinInt
			for _, p := range n.Pitches {
				pos := e.theory.StaffLine(p, m.Clef)
				lo = min(lo, pos)
				hi = max(hi, pos)
			}
			top := e.lineY(hi) - space/2
			bottom := e.lineY(lo) + space/2
			up := e.stemUp(n, vi, m.Clef)
			if up {
				top = min(top, e.lineY(lo)-stemSpaces*space)
			} else {
				bottom = max(bottom, e.lineY(hi)+stemSpaces*space)
			}
			for _, mod := range n.Modifiers {
				switch mod.Kind {
				case ModOrnament:
					top = min(top, 0) - 1.5*space
				case ModArticulation:
					if up {
						bottom += space
					} else {
						top -= space
					}
				case ModMicrotone:
					top = min(top, e.lineY(hi)-1.5*space)
				case ModDynamic:
					bottom = max(bottom, staffBottom) + 2*space
				case ModLyric, ModChord:
				}
			}
			highest = min(highest, top)
			lowest = max(lowest, bottom)
		}
	}
	if maxVerse >= 0 {
		lowest = max(lowest, staffBottom+float64(maxVerse+2)*e.metrics.LineHeight(textFontSize))
	}
	return highest, lowest
}

// multiRestEstimate is the estimate for the first measure of a collapsed
// multi-measure rest.
func (e *Estimator) multiRestEstimate(staffIdx int, m *Measure, prior MeasureContext, firstInSystem bool, carry displayFlags) MeasureEstimate {
	est := e.EstimateMeasure(staffIdx, m, prior, firstInSystem, carry)
	est.ContentWidth = e.metrics.GlyphWidth("multiRest") + e.prefs.NoteSpacing
	est.Ticks = newTickContext()
	return est
}

// justifyColumn computes the shared width of the measures at one measure
// index. Irregular note widths and durations across the column's voices add
// entropy padding so the note formatter has room to align them.
func (e *Estimator) justifyColumn(ests []MeasureEstimate) (width, leading, padding float64) {
	content := 0.0
	var widths, durations []float64
	for _, est := range ests {
		leading = max(leading, est.LeadingWidth)
		content = max(content, est.ContentWidth)
		widths = append(widths, est.Ticks.widths...)
		durations = append(durations, est.Ticks.durations...)
	}
	entropy := min(variation(widths)+variation(durations), maxEntropy)
	padding = content * e.prefs.EntropyScale * entropy
	return leading + content + padding, leading, padding
}

// variation is the coefficient of variation (population standard deviation
// over mean).
func variation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if mean == 0 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss/float64(len(xs))) / mean
}
