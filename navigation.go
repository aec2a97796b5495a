package main

// visibleMeasure reports whether a measure has drawable geometry. Measures
// folded into a multi-measure rest or hidden with an empty system are
// skipped by navigation.
func (t *Tracker) visibleMeasure(staff, measure int) bool {
	m, ok := t.score.Measure(staff, measure)
	return ok && !m.Layout.Hidden()
}

// nextCandidate resolves the note after sel, moving to tick 0 of the next
// visible measure at the end of a measure.
func (t *Tracker) nextCandidate(sel Selector) (*Selection, bool) {
	cand := Selector{Staff: sel.Staff, Measure: sel.Measure, Voice: sel.Voice, Tick: sel.Tick + 1}
	if s, ok := t.rm.Find(cand); ok {
		return s, true
	}
	for mi := sel.Measure + 1; mi < t.score.MeasureCount(); mi++ {
		if !t.visibleMeasure(sel.Staff, mi) {
			continue
		}
		return t.rm.ClosestTick(Selector{Staff: sel.Staff, Measure: mi, Voice: sel.Voice})
	}
	return nil, false
}

// prevCandidate resolves the note before sel, moving to the last note of
// the previous visible measure at the start of a measure.
func (t *Tracker) prevCandidate(sel Selector) (*Selection, bool) {
	if sel.Tick > 0 {
		cand := Selector{Staff: sel.Staff, Measure: sel.Measure, Voice: sel.Voice, Tick: sel.Tick - 1}
		if s, ok := t.rm.Find(cand); ok {
			return s, true
		}
	}
	for mi := sel.Measure - 1; mi >= 0; mi-- {
		if !t.visibleMeasure(sel.Staff, mi) {
			continue
		}
		notes := t.rm.MeasureNotes(sel.Staff, mi, sel.Voice)
		if len(notes) == 0 {
			notes = t.rm.MeasureNotes(sel.Staff, mi, 0)
		}
		if len(notes) > 0 {
			return notes[len(notes)-1], true
		}
		return t.rm.ClosestTick(Selector{Staff: sel.Staff, Measure: mi, Voice: sel.Voice})
	}
	return nil, false
}

// ensureSelection selects the first note when nothing is selected and
// reports whether it had to.
func (t *Tracker) ensureSelection() bool {
	if len(t.selections) > 0 {
		return false
	}
	if s, ok := t.rm.FirstNote(); ok {
		t.setSelections([]*Selection{s})
	}
	return true
}

func (t *Tracker) MoveSelectionRight() {
	if t.ensureSelection() {
		return
	}
	if s, ok := t.nextCandidate(t.last().Selector); ok {
		t.setSelections([]*Selection{s})
	}
}

func (t *Tracker) MoveSelectionLeft() {
	if t.ensureSelection() {
		return
	}
	if s, ok := t.prevCandidate(t.first().Selector); ok {
		t.setSelections([]*Selection{s})
	}
}

func (t *Tracker) moveStaff(delta int) {
	if t.ensureSelection() {
		return
	}
	cur := t.first().Selector
	staff := cur.Staff + delta
	if staff < 0 || staff >= len(t.score.Staves) {
		return
	}
	cand := Selector{Staff: staff, Measure: cur.Measure, Voice: cur.Voice, Tick: cur.Tick}
	if s, ok := t.rm.ClosestTick(cand); ok {
		t.setSelections([]*Selection{s})
	}
}

func (t *Tracker) MoveSelectionUp()   { t.moveStaff(-1) }
func (t *Tracker) MoveSelectionDown() { t.moveStaff(1) }

func (t *Tracker) GrowSelectionRight() {
	if t.ensureSelection() {
		return
	}
	s, ok := t.nextCandidate(t.last().Selector)
	if !ok || t.isSelected(s.Selector) {
		return
	}
	t.setSelections(append(t.selections, s))
}

func (t *Tracker) GrowSelectionLeft() {
	if t.ensureSelection() {
		return
	}
	s, ok := t.prevCandidate(t.first().Selector)
	if !ok || t.isSelected(s.Selector) {
		return
	}
	t.setSelections(append([]*Selection{s}, t.selections...))
}

func (t *Tracker) ShrinkSelectionRight() {
	if len(t.selections) > 1 {
		t.setSelections(t.selections[:len(t.selections)-1])
	}
}

func (t *Tracker) ShrinkSelectionLeft() {
	if len(t.selections) > 1 {
		t.setSelections(t.selections[1:])
	}
}

// lineNotes returns the notes of the selection's staff and voice that sit
// on the same system line.
func (t *Tracker) lineNotes(sel *Selection) []*Selection {
	var out []*Selection
	for _, s := range t.rm.VoiceLine(sel.Selector.Staff, sel.Selector.Voice) {
		if s.Measure.Layout.LineIndex == sel.Measure.Layout.LineIndex {
			out = append(out, s)
		}
	}
	return out
}

func (t *Tracker) MoveHome() {
	if t.ensureSelection() {
		return
	}
	if notes := t.lineNotes(t.first()); len(notes) > 0 {
		t.setSelections(notes[:1])
	}
}

func (t *Tracker) MoveEnd() {
	if t.ensureSelection() {
		return
	}
	if notes := t.lineNotes(t.last()); len(notes) > 0 {
		t.setSelections(notes[len(notes)-1:])
	}
}

func (t *Tracker) MoveScoreHome() {
	if t.ensureSelection() {
		return
	}
	cur := t.first().Selector
	if notes := t.rm.VoiceLine(cur.Staff, cur.Voice); len(notes) > 0 {
		t.setSelections(notes[:1])
	}
}

func (t *Tracker) MoveScoreEnd() {
	if t.ensureSelection() {
		return
	}
	cur := t.last().Selector
	if notes := t.rm.VoiceLine(cur.Staff, cur.Voice); len(notes) > 0 {
		t.setSelections(notes[len(notes)-1:])
	}
}

// CyclePitch narrows a single selected chord to one of its pitches,
// advancing on each call. It clears any grace note sub-selection.
func (t *Tracker) CyclePitch() {
	if len(t.selections) != 1 {
		return
	}
	s := t.selections[0]
	if s.Note == nil || len(s.Note.Pitches) < 2 {
		return
	}
	t.pitchIndex = (t.pitchIndex + 1) % len(s.Note.Pitches)
	t.graceIndex = -1
	t.modifiers = nil
	t.selections[0] = s.withPitches([]int{t.pitchIndex})
	t.changed()
}

// CycleGraceNote selects the grace notes of a single selected note in turn.
// It clears any pitch sub-selection.
func (t *Tracker) CycleGraceNote() {
	if len(t.selections) != 1 {
		return
	}
	s := t.selections[0]
	if s.Note == nil || len(s.Note.GraceNotes) == 0 {
		return
	}
	t.graceIndex = (t.graceIndex + 1) % len(s.Note.GraceNotes)
	t.pitchIndex = -1
	t.selections[0] = s.withPitches(nil)
	t.modifiers = nil
	for _, tab := range t.rm.ModifiersFor(s.Selector) {
		if tab.Ref.Target == TargetGraceNote && tab.Ref.Index == t.graceIndex {
			t.modifiers = []ModifierTab{tab}
		}
	}
	t.changed()
}

func (t *Tracker) PitchIndex() int { return t.pitchIndex }
func (t *Tracker) GraceIndex() int { return t.graceIndex }

// AdvanceModifierSelection steps through the annotations owned by the
// selected notes.
func (t *Tracker) AdvanceModifierSelection(dir int) {
	var tabs []ModifierTab
	for _, s := range t.selections {
		tabs = append(tabs, t.rm.ModifiersFor(s.Selector)...)
	}
	if len(tabs) == 0 {
		return
	}
	idx := 0
	if len(t.modifiers) > 0 {
		for i, tab := range tabs {
			if tab.Same(t.modifiers[0]) {
				idx = ((i+dir)%len(tabs) + len(tabs)) % len(tabs)
				break
			}
		}
	}
	t.modifiers = []ModifierTab{tabs[idx]}
	t.graceIndex = -1
	if tabs[idx].Ref.Target == TargetGraceNote {
		t.graceIndex = tabs[idx].Ref.Index
	}
	t.changed()
}

func (t *Tracker) ClearModifierSelections() {
	if len(t.modifiers) == 0 {
		return
	}
	t.modifiers = nil
	t.graceIndex = -1
	t.changed()
}

// SelectAt handles a click at a layout position. With extend, the selection
// grows to cover everything between the current selection and the click.
// A click on an annotation selects it together with its note.
func (t *Tracker) SelectAt(x, y float64, extend bool) bool {
	s, ok := t.rm.NoteAt(x, y)
	var tab *ModifierTab
	if !ok || !s.Box.Contains(x, y) {
		if tabs := t.rm.ModifiersAt(x, y); len(tabs) > 0 {
			tab = &tabs[0]
			s, ok = t.rm.Find(tab.Selector)
		}
	}
	if !ok {
		return false
	}

	if extend && len(t.selections) > 0 {
		t.setSelections(t.rangeTo(s))
		return true
	}
	t.setSelections([]*Selection{s})
	if tab != nil {
		t.modifiers = []ModifierTab{*tab}
		if tab.Ref.Target == TargetGraceNote {
			t.graceIndex = tab.Ref.Index
		}
	}
	return true
}

// rangeTo covers the notes between the current selection and target. Notes
// on another staff or voice are simply added.
func (t *Tracker) rangeTo(target *Selection) []*Selection {
	anchor := t.first()
	if target.Selector.Less(anchor.Selector) {
		anchor = t.last()
	}
	a, b := anchor.Selector, target.Selector
	if a.Staff != b.Staff || a.Voice != b.Voice {
		return append(t.selections, target)
	}
	if b.Less(a) {
		a, b = b, a
	}
	var out []*Selection
	for _, s := range t.rm.VoiceLine(a.Staff, a.Voice) {
		if !s.Selector.Less(a) && !b.Less(s.Selector) {
			out = append(out, s)
		}
	}
	return out
}

// SelectBox replaces the selection with every note intersecting a dragged
// rectangle. An empty rectangle leaves the selection alone.
func (t *Tracker) SelectBox(b Box) bool {
	hits := t.rm.Intersecting(b)
	if len(hits) == 0 {
		return false
	}
	t.setSelections(hits)
	return true
}

// Suggest records the note under the pointer for hover feedback.
func (t *Tracker) Suggest(x, y float64) {
	s, ok := t.rm.NoteAt(x, y)
	if !ok {
		t.suggestion = nil
		return
	}
	t.suggestion = s
}
