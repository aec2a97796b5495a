package main

import (
	"errors"
	"slices"
)

var ErrNothingSelected = errors.New("stave: nothing selected")

// Editor applies musical edits to selected notes and records them for
// undo. Edits only change music content and the Changed flag; layout state
// is left to the next layout pass.
type Editor struct {
	score   *Score
	theory  Theory
	history *History
}

func NewEditor(score *Score, theory Theory) *Editor {
	return &Editor{score: score, theory: theory, history: &History{}}
}

func (e *Editor) History() *History { return e.history }

func (e *Editor) Undo() (Action, bool) { return e.history.Undo(e.score) }

func (e *Editor) Redo() (Action, bool) { return e.history.Redo(e.score) }

// targets returns the distinct selected notes, last first, so removing or
// inserting notes never shifts a target that is still to be visited.
func (e *Editor) targets(sels []Selector) []Selector {
	out := slices.Clone(sels)
	sortSelectors(out)
	out = slices.CompactFunc(out, func(a, b Selector) bool { return a.SameNote(b) })
	slices.Reverse(out)
	var valid []Selector
	for _, s := range out {
		if _, ok := e.score.Note(s); ok {
			valid = append(valid, s)
		}
	}
	return valid
}

func measureKeys(sels []Selector) []selectorKey {
	var keys []selectorKey
	for _, s := range sels {
		k := selectorKey{staff: s.Staff, measure: s.Measure}
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// apply snapshots the measures touched by sels, runs fn on each target and
// records an undo action if anything changed.
func (e *Editor) apply(kind ActionType, sels []Selector, fn func(m *Measure, sel Selector) bool) error {
	targets := e.targets(sels)
	if len(targets) == 0 {
		return ErrNothingSelected
	}
	keys := measureKeys(targets)
	before := snapshot(e.score, keys)

	changed := false
	for _, sel := range targets {
		m, _ := e.score.Measure(sel.Staff, sel.Measure)
		if fn(m, sel) {
			m.Changed = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	e.history.record(Action{Type: kind, Before: before, After: snapshot(e.score, keys)})
	Logger().Debug("edit applied", "action", kind.String(), "notes", len(targets))
	return nil
}

// ContractDuration splits each selected note into the durations returned by
// the theory service. The first part keeps the annotations.
func (e *Editor) ContractDuration(sels []Selector) error {
	return e.apply(ActionContract, sels, func(m *Measure, sel Selector) bool {
		v := &m.Voices[sel.Voice]
		n := v.Notes[sel.Tick]
		parts := e.theory.SplitDuration(n.Ticks)
		if len(parts) < 2 {
			return false
		}
		repl := make([]*Note, len(parts))
		for i, ticks := range parts {
			c := n.Clone()
			c.Ticks = ticks
			if i > 0 {
				c.Modifiers = nil
				c.GraceNotes = nil
			}
			repl[i] = c
		}
		v.Notes = slices.Replace(v.Notes, sel.Tick, sel.Tick+1, repl...)
		return true
	})
}

// DoubleDuration lets each selected note absorb the note that follows it in
// the same voice. The last note of a voice is left unchanged, and so is a
// note whose follower is itself selected.
func (e *Editor) DoubleDuration(sels []Selector) error {
	selected := make(map[selectorKey]bool, len(sels))
	for _, s := range sels {
		selected[s.key()] = true
	}
	return e.apply(ActionDouble, sels, func(m *Measure, sel Selector) bool {
		v := &m.Voices[sel.Voice]
		if sel.Tick+1 >= len(v.Notes) {
			return false
		}
		follower := sel
		follower.Tick++
		if selected[follower.key()] {
			return false
		}
		v.Notes[sel.Tick].Ticks += v.Notes[sel.Tick+1].Ticks
		v.Notes = slices.Delete(v.Notes, sel.Tick+1, sel.Tick+2)
		return true
	})
}

func (e *Editor) ToggleRest(sels []Selector) error {
	return e.apply(ActionToggleRest, sels, func(m *Measure, sel Selector) bool {
		n := m.Voices[sel.Voice].Notes[sel.Tick]
		n.Rest = !n.Rest
		return true
	})
}

// TransposeSelection moves the selected pitches by half steps, spelled for
// the measure's key. A selector that narrows to pitch indices only moves
// those pitches.
func (e *Editor) TransposeSelection(sels []Selector, steps int) error {
	if steps == 0 {
		return nil
	}
	narrowed := make(map[selectorKey][]int)
	for _, s := range sels {
		if len(s.Pitches) > 0 {
			narrowed[s.key()] = s.Pitches
		}
	}
	return e.apply(ActionTranspose, sels, func(m *Measure, sel Selector) bool {
		n := m.Voices[sel.Voice].Notes[sel.Tick]
		if n.Rest {
			return false
		}
		only := narrowed[sel.key()]
		changed := false
		for i, p := range n.Pitches {
			if len(only) > 0 && !slices.Contains(only, i) {
				continue
			}
			n.Pitches[i] = e.theory.Transpose(p, steps, m.Key)
			changed = true
		}
		return changed
	})
}

// PastePitches replaces the pitches of every selected note. Rests become
// notes.
func (e *Editor) PastePitches(sels []Selector, pitches []Pitch) error {
	if len(pitches) == 0 {
		return errors.New("stave: no pitches to paste")
	}
	return e.apply(ActionPaste, sels, func(m *Measure, sel Selector) bool {
		n := m.Voices[sel.Voice].Notes[sel.Tick]
		n.Pitches = slices.Clone(pitches)
		n.Rest = false
		return true
	})
}
