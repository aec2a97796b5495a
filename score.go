package main

import (
	"fmt"
	"slices"
)

type ClefType int

const (
	ClefTreble ClefType = iota
	ClefBass
	ClefAlto
	ClefTenor
)

func (c ClefType) String() string {
	switch c {
	case ClefTreble:
		return "treble"
	case ClefBass:
		return "bass"
	case ClefAlto:
		return "alto"
	case ClefTenor:
		return "tenor"
	default:
		return "unknown"
	}
}

type TimeSignature struct {
	Beats     int
	BeatValue int
}

func (t TimeSignature) String() string { return fmt.Sprintf("%d/%d", t.Beats, t.BeatValue) }

// Ticks is the length of a full measure in this time signature.
func (t TimeSignature) Ticks() int {
	if t.BeatValue == 0 {
		return 0
	}
	return t.Beats * TicksPerQuarter * 4 / t.BeatValue
}

type Tempo struct {
	BPM  int
	Text string
}

// Pitch is a value type. Accidental is one of "", "n", "#", "b", "##", "bb";
// the empty string means the pitch carries no explicit accidental and takes
// its alteration from the key or from an earlier note in the measure.
type Pitch struct {
	Letter     byte
	Accidental string
	Octave     int
	Cautionary bool
}

func (p Pitch) String() string { return fmt.Sprintf("%c%s%d", p.Letter, p.Accidental, p.Octave) }

type StemDirection int

const (
	StemAuto StemDirection = iota
	StemUp
	StemDown
)

type ModifierKind int

const (
	ModDynamic ModifierKind = iota
	ModArticulation
	ModOrnament
	ModMicrotone
	ModLyric
	ModChord
)

func (k ModifierKind) String() string {
	switch k {
	case ModDynamic:
		return "dynamic"
	case ModArticulation:
		return "articulation"
	case ModOrnament:
		return "ornament"
	case ModMicrotone:
		return "microtone"
	case ModLyric:
		return "lyric"
	case ModChord:
		return "chord"
	default:
		return "unknown"
	}
}

// NoteModifier is attached to a single note. Verse is only meaningful for
// lyrics and chord symbols.
type NoteModifier struct {
	Kind  ModifierKind
	Text  string
	Verse int
}

type StaffModifierKind int

const (
	StaffHairpin StaffModifierKind = iota
	StaffSlur
	StaffBracket
	StaffTempoText
)

func (k StaffModifierKind) String() string {
	switch k {
	case StaffHairpin:
		return "hairpin"
	case StaffSlur:
		return "slur"
	case StaffBracket:
		return "bracket"
	case StaffTempoText:
		return "tempo"
	default:
		return "unknown"
	}
}

// StaffModifier spans from Start to End (inclusive) on one staff.
type StaffModifier struct {
	Kind  StaffModifierKind
	Start Selector
	End   Selector
	Text  string
}

func (sm StaffModifier) SpansMeasure(measure int) bool {
	return sm.Start.Measure <= measure && measure <= sm.End.Measure
}

type GraceNote struct {
	Pitches []Pitch
	Ticks   int
}

type Note struct {
	Pitches    []Pitch
	Ticks      int
	Rest       bool
	Stem       StemDirection
	GraceNotes []GraceNote
	Modifiers  []NoteModifier
}

func (n *Note) Clone() *Note {
	c := *n
	c.Pitches = slices.Clone(n.Pitches)
	c.Modifiers = slices.Clone(n.Modifiers)
	c.GraceNotes = make([]GraceNote, len(n.GraceNotes))
	for i, g := range n.GraceNotes {
		c.GraceNotes[i] = GraceNote{Pitches: slices.Clone(g.Pitches), Ticks: g.Ticks}
	}
	if n.GraceNotes == nil {
		c.GraceNotes = nil
	}
	return &c
}

// MaxVerse returns the highest lyric or chord verse index, or -1.
func (n *Note) MaxVerse() int {
	v := -1
	for _, m := range n.Modifiers {
		if (m.Kind == ModLyric || m.Kind == ModChord) && m.Verse > v {
			v = m.Verse
		}
	}
	return v
}

func (n *Note) HasModifier(kind ModifierKind) bool {
	return slices.ContainsFunc(n.Modifiers, func(m NoteModifier) bool { return m.Kind == kind })
}

type Voice struct {
	Notes []*Note
}

func (v Voice) Ticks() int {
	total := 0
	for _, n := range v.Notes {
		total += n.Ticks
	}
	return total
}

// MeasureLayoutState is written by the layout engine during a pass and read
// by the engraver and the render map.
type MeasureLayoutState struct {
	SystemIndex        int
	LineIndex          int
	PageIndex          int
	Row                int
	ForceClef          bool
	ForceKey           bool
	ForceTime          bool
	ForceTempo         bool
	StartPadding       float64
	Padding            float64
	MultiMeasureRest   int
	MultiMeasureHidden bool
	HiddenEmpty        bool
	StaffY             float64
	AboveBaseline      float64
	BelowBaseline      float64
}

func (s MeasureLayoutState) Hidden() bool {
	return s.MultiMeasureHidden || s.HiddenEmpty
}

type Measure struct {
	Index        int
	Clef         ClefType
	Key          string
	Time         TimeSignature
	Tempo        Tempo
	Voices       []Voice
	SystemBreak  bool
	PageBreak    bool
	ForceDisplay bool
	Changed      bool
	Box          Box
	Layout       MeasureLayoutState
}

// Clone copies the musical content. Layout state is copied as well, but it
// is rewritten by the next layout pass.
func (m *Measure) Clone() *Measure {
	c := *m
	c.Voices = make([]Voice, len(m.Voices))
	for i, v := range m.Voices {
		notes := make([]*Note, len(v.Notes))
		for j, n := range v.Notes {
			notes[j] = n.Clone()
		}
		c.Voices[i] = Voice{Notes: notes}
	}
	return &c
}

// Silent reports whether every voice holds only rests.
func (m *Measure) Silent() bool {
	for _, v := range m.Voices {
		for _, n := range v.Notes {
			if !n.Rest {
				return false
			}
		}
	}
	return true
}

type Staff struct {
	Index     int
	Name      string
	Measures  []*Measure
	Modifiers []StaffModifier
}

type Score struct {
	Staves []*Staff
}

// MeasureCount is the number of measure columns. Staves are expected to have
// the same length; a shorter staff limits the column count.
func (s *Score) MeasureCount() int {
	if len(s.Staves) == 0 {
		return 0
	}
	n := len(s.Staves[0].Measures)
	for _, st := range s.Staves[1:] {
		n = min(n, len(st.Measures))
	}
	return n
}

func (s *Score) Measure(staff, measure int) (*Measure, bool) {
	if staff < 0 || staff >= len(s.Staves) {
		return nil, false
	}
	st := s.Staves[staff]
	if measure < 0 || measure >= len(st.Measures) {
		return nil, false
	}
	return st.Measures[measure], true
}

func (s *Score) Note(sel Selector) (*Note, bool) {
	m, ok := s.Measure(sel.Staff, sel.Measure)
	if !ok || sel.Voice < 0 || sel.Voice >= len(m.Voices) {
		return nil, false
	}
	notes := m.Voices[sel.Voice].Notes
	if sel.Tick < 0 || sel.Tick >= len(notes) {
		return nil, false
	}
	return notes[sel.Tick], true
}

// Column returns the measures at one measure index across every staff.
func (s *Score) Column(measure int) []*Measure {
	col := make([]*Measure, 0, len(s.Staves))
	for _, st := range s.Staves {
		if measure < len(st.Measures) {
			col = append(col, st.Measures[measure])
		}
	}
	return col
}

// HasNotes reports whether any staff has at least one note or rest.
func (s *Score) HasNotes() bool {
	for _, st := range s.Staves {
		for _, m := range st.Measures {
			for _, v := range m.Voices {
				if len(v.Notes) > 0 {
					return true
				}
			}
		}
	}
	return false
}

func (s *Score) reindex() {
	for i, st := range s.Staves {
		st.Index = i
		for j, m := range st.Measures {
			m.Index = j
		}
	}
}
