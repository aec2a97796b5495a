package main

import "slices"

// Tracker owns the current selection and maps input to logical positions
// using the render map of the latest layout pass.
type Tracker struct {
	score       *Score
	rm          *RenderMap
	selections  []*Selection
	ticks       int // selected duration when the selection was last set
	modifiers   []ModifierTab
	suggestion  *Selection
	pitchIndex  int
	graceIndex  int
	highlighter *Highlighter
}

func NewTracker(score *Score, highlighter *Highlighter) *Tracker {
	return &Tracker{
		score:       score,
		rm:          BuildRenderMap(score, nil, 0),
		pitchIndex:  -1,
		graceIndex:  -1,
		highlighter: highlighter,
	}
}

func (t *Tracker) RenderMap() *RenderMap { return t.rm }

func (t *Tracker) Selections() []*Selection { return t.selections }

func (t *Tracker) ModifierSelections() []ModifierTab { return t.modifiers }

func (t *Tracker) Suggestion() *Selection { return t.suggestion }

func (t *Tracker) Selectors() []Selector {
	out := make([]Selector, len(t.selections))
	for i, s := range t.selections {
		out[i] = s.Selector.Clone()
	}
	return out
}

// SelectedTicks is the combined duration of every selected note.
func (t *Tracker) SelectedTicks() int { return totalTicks(t.selections) }

func (t *Tracker) first() *Selection {
	if len(t.selections) == 0 {
		return nil
	}
	return t.selections[0]
}

func (t *Tracker) last() *Selection {
	if len(t.selections) == 0 {
		return nil
	}
	return t.selections[len(t.selections)-1]
}

func (t *Tracker) isSelected(sel Selector) bool {
	return slices.ContainsFunc(t.selections, func(s *Selection) bool { return s.Selector.SameNote(sel) })
}

// changed schedules a highlight for the new selection state.
func (t *Tracker) changed() {
	if t.highlighter != nil {
		t.highlighter.Schedule(len(t.selections))
	}
}

// setSelections replaces the selection list, keeping it sorted and free of
// duplicate notes, and resets sub-selection.
func (t *Tracker) setSelections(sels []*Selection) {
	t.selections = normalizeSelections(sels)
	t.ticks = totalTicks(t.selections)
	t.pitchIndex = -1
	t.graceIndex = -1
	t.modifiers = nil
	t.changed()
}

func normalizeSelections(sels []*Selection) []*Selection {
	out := slices.Clone(sels)
	slices.SortStableFunc(out, func(a, b *Selection) int { return a.Selector.Compare(b.Selector) })
	return slices.CompactFunc(out, func(a, b *Selection) bool { return a.Selector.SameNote(b.Selector) })
}

// Reconcile rebuilds the selection against the render map of a new layout
// pass. Selections survive by coordinate: identical selectors are
// reselected, a tick-contiguous selection is re-walked until it covers the
// same number of ticks, and anything else falls back to the closest tick or
// the first note. The tick total is the one recorded when the selection was
// set, since edits may have changed the selected notes since then.
func (t *Tracker) Reconcile(rm *RenderMap) {
	old := t.rm
	prev := t.Selectors()
	prevTicks := t.ticks
	contiguous := old != nil && isContiguous(old, t.selections)
	prevModifiers := t.modifiers
	pitchIndex, graceIndex := t.pitchIndex, t.graceIndex

	t.rm = rm
	t.suggestion = nil

	var restored []*Selection
	if len(prev) > 0 {
		if contiguous {
			restored = restoreSpan(rm, prev, prevTicks)
		} else {
			for _, sel := range prev {
				if s, ok := rm.Find(sel); ok {
					restored = append(restored, s.withPitches(validPitches(sel.Pitches, s.Note)))
				}
			}
		}
		if len(restored) == 0 {
			if s, ok := rm.ClosestTick(prev[0]); ok {
				Logger().Debug("selection not found after layout, using closest tick",
					"previous", prev[0].String(), "selected", s.Selector.String())
				restored = []*Selection{s}
			}
		}
	}
	if len(restored) == 0 {
		if s, ok := rm.FirstNote(); ok {
			restored = []*Selection{s}
		} else if s, ok := firstScoreNote(t.score, rm.Generation()); ok {
			Logger().Debug("no drawn notes, selecting first note of the score", "selected", s.Selector.String())
			restored = []*Selection{s}
		}
	}

	t.selections = normalizeSelections(restored)
	t.ticks = totalTicks(t.selections)
	t.modifiers = nil
	for _, m := range prevModifiers {
		if tab, ok := rm.FindModifier(m); ok {
			t.modifiers = append(t.modifiers, tab)
		}
	}

	t.pitchIndex, t.graceIndex = -1, -1
	if len(t.selections) == 1 {
		n := t.selections[0].Note
		if pitchIndex >= 0 && pitchIndex < len(n.Pitches) {
			t.pitchIndex = pitchIndex
		}
		if graceIndex >= 0 && graceIndex < len(n.GraceNotes) {
			t.graceIndex = graceIndex
		}
	}
	t.changed()
}

// firstScoreNote selects the first note of the score when the render map has
// none, as when every note sits in a hidden system. The box is empty.
func firstScoreNote(score *Score, generation int) (*Selection, bool) {
	if score == nil {
		return nil, false
	}
	var best *Selection
	for _, st := range score.Staves {
		for _, m := range st.Measures {
			for vi, v := range m.Voices {
				if len(v.Notes) == 0 {
					continue
				}
				sel := Selector{Staff: st.Index, Measure: m.Index, Voice: vi}
				if best == nil || sel.Less(best.Selector) {
					best = &Selection{Selector: sel, Staff: st, Measure: m, Note: v.Notes[0], Generation: generation}
				}
			}
		}
	}
	return best, best != nil
}

// isContiguous reports whether sels are consecutive notes of one staff and
// voice in rm.
func isContiguous(rm *RenderMap, sels []*Selection) bool {
	if len(sels) == 0 {
		return false
	}
	for i := 1; i < len(sels); i++ {
		a, b := sels[i-1].Selector, sels[i].Selector
		if a.Staff != b.Staff || a.Voice != b.Voice {
			return false
		}
		next, ok := rm.Next(a)
		if !ok || !next.Selector.SameNote(b) {
			return false
		}
	}
	return true
}

// restoreSpan walks forward from the first previous selector that still
// exists, accumulating notes until the previous tick total is covered.
func restoreSpan(rm *RenderMap, prev []Selector, prevTicks int) []*Selection {
	var start *Selection
	for _, sel := range prev {
		if s, ok := rm.Find(sel); ok {
			start = s
			break
		}
	}
	if start == nil {
		s, ok := rm.ClosestTick(prev[0])
		if !ok {
			return nil
		}
		start = s
	}

	out := []*Selection{start}
	acc := start.TickCount()
	cur := start
	for acc < prevTicks {
		next, ok := rm.Next(cur.Selector)
		if !ok {
			break
		}
		out = append(out, next)
		acc += next.TickCount()
		cur = next
	}

	if len(out) == 1 && len(prev) == 1 && out[0].Selector.SameNote(prev[0]) {
		out[0] = out[0].withPitches(validPitches(prev[0].Pitches, out[0].Note))
	}
	return out
}

func validPitches(pitches []int, n *Note) []int {
	if n == nil {
		return nil
	}
	var out []int
	for _, p := range pitches {
		if p >= 0 && p < len(n.Pitches) {
			out = append(out, p)
		}
	}
	return out
}
