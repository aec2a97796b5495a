package main

import "slices"

// Selection is a selected note as seen by one layout pass. Box and
// ScrollAnchor are only valid for the pass that produced them; holding a
// Selection across passes is not supported, reselect through its Selector.
type Selection struct {
	Selector     Selector
	Staff        *Staff
	Measure      *Measure
	Note         *Note
	Box          Box
	ScrollAnchor point
	Generation   int
}

// TickCount is the duration of the selected note in ticks.
func (s *Selection) TickCount() int {
	if s.Note == nil {
		return 0
	}
	return s.Note.Ticks
}

// withPitches returns a copy narrowed to the given pitch indices.
func (s *Selection) withPitches(pitches []int) *Selection {
	c := *s
	c.Selector = s.Selector.Clone()
	c.Selector.Pitches = slices.Clone(pitches)
	return &c
}

func (s *Selection) String() string {
	if s.Note == nil {
		return s.Selector.String()
	}
	return describeNote(s.Selector, s.Note)
}

// ModifierTab is a selectable annotation (dynamic, lyric, grace note,
// hairpin...) together with the note that owns it.
type ModifierTab struct {
	Selector Selector
	Ref      ModifierRef
	Label    string
	Box      Box
}

func (t ModifierTab) Same(o ModifierTab) bool {
	return t.Selector.SameNote(o.Selector) && t.Ref == o.Ref
}

func totalTicks(sels []*Selection) int {
	total := 0
	for _, s := range sels {
		total += s.TickCount()
	}
	return total
}
