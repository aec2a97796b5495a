package main

import (
	"math"
	"slices"
)

type voiceKey struct {
	staff, voice int
}

// RenderMap indexes the notes and annotations of one drawing pass by
// logical coordinate. Notes are kept in tick order.
type RenderMap struct {
	generation int
	notes      []*Selection
	index      map[selectorKey]int
	voices     map[voiceKey][]int
	modifiers  []ModifierTab
}

// BuildRenderMap scans drawn elements back into Selections. Elements whose
// note no longer exists in the score are dropped.
func BuildRenderMap(score *Score, elements []DrawnElement, generation int) *RenderMap {
	rm := &RenderMap{
		generation: generation,
		index:      make(map[selectorKey]int),
		voices:     make(map[voiceKey][]int),
	}

	for _, el := range elements {
		switch el.Kind {
		case ElementNote:
			note, ok := score.Note(el.Selector)
			if !ok {
				continue
			}
			m, _ := score.Measure(el.Selector.Staff, el.Selector.Measure)
			rm.notes = append(rm.notes, &Selection{
				Selector:     Selector{Staff: el.Selector.Staff, Measure: el.Selector.Measure, Voice: el.Selector.Voice, Tick: el.Selector.Tick},
				Staff:        score.Staves[el.Selector.Staff],
				Measure:      m,
				Note:         note,
				Box:          el.Box,
				ScrollAnchor: point{X: el.Box.X, Y: el.Box.Y},
				Generation:   generation,
			})
		case ElementModifier:
			rm.modifiers = append(rm.modifiers, ModifierTab{
				Selector: el.Selector.Clone(),
				Ref:      el.Modifier,
				Label:    el.Label,
				Box:      el.Box,
			})
		}
	}

	slices.SortStableFunc(rm.notes, func(a, b *Selection) int { return a.Selector.Compare(b.Selector) })
	slices.SortStableFunc(rm.modifiers, func(a, b ModifierTab) int {
		if c := a.Selector.Compare(b.Selector); c != 0 {
			return c
		}
		if a.Ref.Target != b.Ref.Target {
			return int(a.Ref.Target) - int(b.Ref.Target)
		}
		return a.Ref.Index - b.Ref.Index
	})
	for i, s := range rm.notes {
		rm.index[s.Selector.key()] = i
		vk := voiceKey{s.Selector.Staff, s.Selector.Voice}
		rm.voices[vk] = append(rm.voices[vk], i)
	}
	return rm
}

func (rm *RenderMap) Generation() int { return rm.generation }

func (rm *RenderMap) Len() int { return len(rm.notes) }

func (rm *RenderMap) Notes() []*Selection { return rm.notes }

func (rm *RenderMap) Modifiers() []ModifierTab { return rm.modifiers }

// Find looks up a note by its coordinate, ignoring pitch narrowing.
func (rm *RenderMap) Find(sel Selector) (*Selection, bool) {
	i, ok := rm.index[sel.key()]
	if !ok {
		return nil, false
	}
	return rm.notes[i], true
}

func (rm *RenderMap) FirstNote() (*Selection, bool) {
	if len(rm.notes) == 0 {
		return nil, false
	}
	return rm.notes[0], true
}

// ClosestTick resolves a selector that may not exist. It tries the exact
// note, then tick 0 of the same measure (requested voice first), then the
// nearest drawn measure of the same staff, then the first note of the map.
// It only fails on an empty map.
func (rm *RenderMap) ClosestTick(sel Selector) (*Selection, bool) {
	if s, ok := rm.Find(sel); ok {
		return s, true
	}
	for _, voice := range []int{sel.Voice, 0} {
		probe := Selector{Staff: sel.Staff, Measure: sel.Measure, Voice: voice}
		if s, ok := rm.Find(probe); ok {
			return s, true
		}
	}
	var best *Selection
	bestDist := math.MaxInt
	for _, s := range rm.notes {
		if s.Selector.Staff != sel.Staff {
			continue
		}
		d := s.Selector.Measure - sel.Measure
		if d < 0 {
			d = -d
		}
		// notes are in tick order, so the first hit per measure is its tick 0
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	if best != nil {
		return best, true
	}
	return rm.FirstNote()
}

// Next returns the note after sel in the same staff and voice, crossing
// measure boundaries. Measures hidden by the layout are never drawn and so
// never returned.
func (rm *RenderMap) Next(sel Selector) (*Selection, bool) {
	return rm.step(sel, 1)
}

func (rm *RenderMap) Prev(sel Selector) (*Selection, bool) {
	return rm.step(sel, -1)
}

func (rm *RenderMap) step(sel Selector, dir int) (*Selection, bool) {
	line := rm.voices[voiceKey{sel.Staff, sel.Voice}]
	i, ok := rm.index[sel.key()]
	if !ok {
		return nil, false
	}
	pos := slices.Index(line, i)
	if pos < 0 || pos+dir < 0 || pos+dir >= len(line) {
		return nil, false
	}
	return rm.notes[line[pos+dir]], true
}

// VoiceLine returns every note of one staff and voice in order.
func (rm *RenderMap) VoiceLine(staff, voice int) []*Selection {
	line := rm.voices[voiceKey{staff, voice}]
	out := make([]*Selection, len(line))
	for i, idx := range line {
		out[i] = rm.notes[idx]
	}
	return out
}

func (rm *RenderMap) MeasureNotes(staff, measure, voice int) []*Selection {
	var out []*Selection
	for _, s := range rm.VoiceLine(staff, voice) {
		if s.Selector.Measure == measure {
			out = append(out, s)
		}
	}
	return out
}

// NoteAt hit-tests a point. A point inside a measure but between notes
// resolves to the horizontally nearest note of that measure and staff.
func (rm *RenderMap) NoteAt(x, y float64) (*Selection, bool) {
	for _, s := range rm.notes {
		if s.Box.Contains(x, y) {
			return s, true
		}
	}
	var best *Selection
	bestDist := math.Inf(1)
	for _, s := range rm.notes {
		if s.Measure == nil || !s.Measure.Box.Contains(x, y) {
			continue
		}
		d := math.Abs(s.Box.Center().X - x)
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, best != nil
}

func (rm *RenderMap) Intersecting(b Box) []*Selection {
	var out []*Selection
	for _, s := range rm.notes {
		if s.Box.Intersects(b) {
			out = append(out, s)
		}
	}
	return out
}

func (rm *RenderMap) ModifiersAt(x, y float64) []ModifierTab {
	var out []ModifierTab
	for _, t := range rm.modifiers {
		if t.Box.Contains(x, y) {
			out = append(out, t)
		}
	}
	return out
}

// ModifiersFor returns the annotations owned by a note, staff spans
// included when they start on it.
func (rm *RenderMap) ModifiersFor(sel Selector) []ModifierTab {
	var out []ModifierTab
	for _, t := range rm.modifiers {
		if t.Selector.SameNote(sel) {
			out = append(out, t)
		}
	}
	return out
}

func (rm *RenderMap) FindModifier(tab ModifierTab) (ModifierTab, bool) {
	for _, t := range rm.modifiers {
		if t.Same(tab) {
			return t, true
		}
	}
	return ModifierTab{}, false
}
