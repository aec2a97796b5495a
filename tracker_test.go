package main

import (
	"testing"
	"time"
)

type trackerFixture struct {
	t       *testing.T
	score   *Score
	engine  *Engine
	tracker *Tracker
}

func newTrackerFixture(t *testing.T, score *Score) *trackerFixture {
	t.Helper()
	f := &trackerFixture{
		t:       t,
		score:   score,
		engine:  newTestEngine(score, testPrefs()),
		tracker: NewTracker(score, NewHighlighter(time.Millisecond)),
	}
	f.relayout()
	return f
}

func (f *trackerFixture) relayout() {
	f.t.Helper()
	f.tracker.Reconcile(layoutAndMap(f.t, f.engine))
}

// choose replaces the selection with the notes at the given selectors.
func (f *trackerFixture) choose(sels ...Selector) {
	f.t.Helper()
	var out []*Selection
	for _, sel := range sels {
		s, ok := f.tracker.RenderMap().Find(sel)
		if !ok {
			f.t.Fatalf("no note at %v", sel)
		}
		out = append(out, s)
	}
	f.tracker.setSelections(out)
}

func (f *trackerFixture) assertSelected(want ...Selector) {
	f.t.Helper()
	got := f.tracker.Selectors()
	if len(got) != len(want) {
		f.t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].SameNote(want[i]) {
			f.t.Fatalf("selected %v, want %v", got, want)
		}
	}
}

func at(measure, tick int) Selector {
	return Selector{Measure: measure, Tick: tick}
}

func TestReconcileSelectsFirstNote(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4"}))
	f.assertSelected(at(0, 0))
}

func TestReconcileEmptyScore(t *testing.T) {
	f := newTrackerFixture(t, &Score{})
	if n := len(f.tracker.Selections()); n != 0 {
		t.Fatalf("empty score has %d selections", n)
	}
}

func TestReconcileContractedSpan(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:2 d5:2"}))
	editor := NewEditor(f.score, newTheory())

	if err := editor.ContractDuration(f.tracker.Selectors()); err != nil {
		t.Fatalf("ContractDuration: %v", err)
	}
	f.relayout()

	f.assertSelected(at(0, 0), at(0, 1))
	if got := f.tracker.SelectedTicks(); got != 2*TicksPerQuarter {
		t.Errorf("selected ticks = %d, want %d", got, 2*TicksPerQuarter)
	}

	if _, ok := editor.Undo(); !ok {
		t.Fatal("nothing to undo")
	}
	f.relayout()
	f.assertSelected(at(0, 0))
	if got := f.tracker.SelectedTicks(); got != 2*TicksPerQuarter {
		t.Errorf("selected ticks after undo = %d", got)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "g5:1"}))
	f.choose(at(0, 0), at(0, 2), at(1, 0))

	f.relayout()
	f.assertSelected(at(0, 0), at(0, 2), at(1, 0))
	f.relayout()
	f.assertSelected(at(0, 0), at(0, 2), at(1, 0))
}

func TestReconcileDropsMissingNotes(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4"}))
	f.choose(at(0, 0), at(0, 2))

	editor := NewEditor(f.score, newTheory())
	if err := editor.DoubleDuration(f.tracker.Selectors()); err != nil {
		t.Fatal(err)
	}
	f.relayout()
	f.assertSelected(at(0, 0))
}

func TestReconcileFallsBackToClosestTick(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "g5:1"}))
	f.choose(at(0, 3))

	editor := NewEditor(f.score, newTheory())
	if err := editor.DoubleDuration([]Selector{at(0, 2)}); err != nil {
		t.Fatal(err)
	}
	f.relayout()
	f.assertSelected(at(0, 0))
	if len(f.tracker.Selections()) == 0 {
		t.Fatal("selection must never be empty while the score has notes")
	}
}

func TestReconcileSpanAfterDoubling(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, repeat("c5:4 d5:4 e5:4 f5:4", 2)))
	f.choose(at(0, 0), at(0, 1))
	if got := f.tracker.SelectedTicks(); got != 2*TicksPerQuarter {
		t.Fatalf("selected ticks = %d", got)
	}

	editor := NewEditor(f.score, newTheory())
	if err := editor.DoubleDuration(f.tracker.Selectors()); err != nil {
		t.Fatal(err)
	}
	f.relayout()

	f.assertSelected(at(0, 0), at(0, 1))
	if got := f.tracker.SelectedTicks(); got != 3*TicksPerQuarter {
		t.Errorf("selected ticks = %d, want %d", got, 3*TicksPerQuarter)
	}
}

func TestReconcileNotesOnlyInHiddenSystems(t *testing.T) {
	score := buildScore(t, []string{"r:1", "r:1", "r:1"})
	prefs := testPrefs()
	prefs.HideEmptySystems = true
	prefs.MultiMeasureRests = false
	e := newTestEngine(score, prefs)
	tr := NewTracker(score, nil)

	for pass := 0; pass < 2; pass++ {
		rm := layoutAndMap(t, e)
		if _, ok := rm.FirstNote(); ok {
			t.Fatal("hidden system notes are in the render map")
		}
		tr.Reconcile(rm)

		sels := tr.Selections()
		if len(sels) != 1 {
			t.Fatalf("pass %d: %d selections, want 1", pass, len(sels))
		}
		s := sels[0]
		if !s.Selector.SameNote(at(0, 0)) || s.Note != voiceNotes(score, 0)[0] {
			t.Errorf("pass %d: selected %v, want the first rest", pass, s.Selector)
		}
		if s.Box != (Box{}) || s.Generation != rm.Generation() {
			t.Errorf("pass %d: box %+v generation %d", pass, s.Box, s.Generation)
		}
	}
}

func TestReconcileKeepsPitchNarrowing(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5+e5+g5:4 d5:4 e5:2"}))
	f.tracker.CyclePitch()
	f.tracker.CyclePitch()

	f.relayout()
	sels := f.tracker.Selectors()
	if len(sels) != 1 || len(sels[0].Pitches) != 1 || sels[0].Pitches[0] != 1 {
		t.Fatalf("selectors after relayout = %v", sels)
	}
	if f.tracker.PitchIndex() != 1 {
		t.Errorf("pitch index = %d, want 1", f.tracker.PitchIndex())
	}
}

func TestSelectionChangeSchedulesHighlight(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4"}))
	h := f.tracker.highlighter

	tok, ok := h.TakeRequest()
	if !ok {
		t.Fatal("reconcile did not schedule a highlight")
	}
	f.tracker.GrowSelectionRight()
	if h.Settle(tok, f.tracker.Selectors()) {
		t.Fatal("superseded token repainted")
	}

	tok, ok = h.TakeRequest()
	if !ok {
		t.Fatal("growing the selection did not schedule a highlight")
	}
	if !h.Settle(tok, f.tracker.Selectors()) {
		t.Fatal("settled token did not repaint")
	}
	if !h.IsPainted(at(0, 1)) || h.Paints() != 1 {
		t.Errorf("painted = %v after %d paints", h.Painted(), h.Paints())
	}
}
