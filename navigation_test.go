package main

import "testing"

func TestMoveSelectionAcrossMeasures(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "g5:2 a5:2"}))

	steps := []struct {
		move func()
		want Selector
	}{
		{f.tracker.MoveSelectionRight, at(0, 1)},
		{f.tracker.MoveSelectionRight, at(0, 2)},
		{f.tracker.MoveSelectionRight, at(0, 3)},
		{f.tracker.MoveSelectionRight, at(1, 0)},
		{f.tracker.MoveSelectionRight, at(1, 1)},
		{f.tracker.MoveSelectionRight, at(1, 1)},
		{f.tracker.MoveSelectionLeft, at(1, 0)},
		{f.tracker.MoveSelectionLeft, at(0, 3)},
	}
	for i, step := range steps {
		step.move()
		got := f.tracker.Selectors()
		if len(got) != 1 || !got[0].SameNote(step.want) {
			t.Fatalf("step %d: selected %v, want %v", i, got, step.want)
		}
	}
}

func TestMoveSkipsMultiMeasureRest(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:1", "r:1", "r:1", "r:1", "d5:1"}))

	f.tracker.MoveSelectionRight()
	f.assertSelected(at(1, 0))
	f.tracker.MoveSelectionRight()
	f.assertSelected(at(4, 0))
	f.tracker.MoveSelectionLeft()
	f.assertSelected(at(1, 0))
}

func TestGrowAndShrinkSelection(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "g5:1"}))
	f.choose(at(0, 3))

	f.tracker.GrowSelectionRight()
	f.assertSelected(at(0, 3), at(1, 0))
	f.tracker.GrowSelectionLeft()
	f.assertSelected(at(0, 2), at(0, 3), at(1, 0))

	// at the end of the score growing right is a no-op
	f.tracker.GrowSelectionRight()
	f.assertSelected(at(0, 2), at(0, 3), at(1, 0))

	f.tracker.ShrinkSelectionRight()
	f.assertSelected(at(0, 2), at(0, 3))
	f.tracker.ShrinkSelectionLeft()
	f.assertSelected(at(0, 3))
	f.tracker.ShrinkSelectionLeft()
	f.assertSelected(at(0, 3))
}

func TestMoveBetweenStaves(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t,
		[]string{"c5:4 d5:4 e5:4 f5:4"},
		[]string{"c4:2 e4:2"},
	))
	f.choose(at(0, 1))

	f.tracker.MoveSelectionDown()
	f.assertSelected(Selector{Staff: 1, Measure: 0, Tick: 1})
	f.tracker.MoveSelectionDown()
	f.assertSelected(Selector{Staff: 1, Measure: 0, Tick: 1})

	f.choose(at(0, 3))
	f.tracker.MoveSelectionDown()
	f.assertSelected(Selector{Staff: 1, Measure: 0, Tick: 0})
	f.tracker.MoveSelectionUp()
	f.assertSelected(at(0, 0))
}

func TestPitchAndGraceCyclingExclusive(t *testing.T) {
	score := buildScore(t, []string{"c5+e5+g5:4 d5:4 e5:2"})
	first := score.Staves[0].Measures[0].Voices[0].Notes[0]
	first.GraceNotes = []GraceNote{
		{Pitches: []Pitch{{Letter: 'd', Octave: 5}}, Ticks: TicksPerQuarter / 4},
		{Pitches: []Pitch{{Letter: 'b', Octave: 4}}, Ticks: TicksPerQuarter / 4},
	}
	f := newTrackerFixture(t, score)
	tr := f.tracker

	tr.CyclePitch()
	tr.CyclePitch()
	if tr.PitchIndex() != 1 || tr.GraceIndex() != -1 {
		t.Fatalf("pitch %d grace %d after cycling pitches", tr.PitchIndex(), tr.GraceIndex())
	}

	tr.CycleGraceNote()
	if tr.PitchIndex() != -1 || tr.GraceIndex() != 0 {
		t.Fatalf("pitch %d grace %d after cycling grace notes", tr.PitchIndex(), tr.GraceIndex())
	}
	if p := tr.Selectors()[0].Pitches; len(p) != 0 {
		t.Errorf("grace note selection kept pitch narrowing %v", p)
	}
	mods := tr.ModifierSelections()
	if len(mods) != 1 || mods[0].Ref != (ModifierRef{Target: TargetGraceNote, Index: 0}) {
		t.Errorf("modifier selection = %+v", mods)
	}

	tr.CycleGraceNote()
	if tr.GraceIndex() != 1 {
		t.Errorf("grace index = %d, want 1", tr.GraceIndex())
	}

	tr.CyclePitch()
	if tr.PitchIndex() != 0 || tr.GraceIndex() != -1 || len(tr.ModifierSelections()) != 0 {
		t.Errorf("pitch %d grace %d modifiers %v after cycling pitch again",
			tr.PitchIndex(), tr.GraceIndex(), tr.ModifierSelections())
	}
}

func TestCyclePitchIgnoresSingleNotes(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:2"}))
	f.tracker.CyclePitch()
	if f.tracker.PitchIndex() != -1 || len(f.tracker.Selectors()[0].Pitches) != 0 {
		t.Errorf("single pitch note was narrowed")
	}
}

func TestHomeAndEnd(t *testing.T) {
	score := buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "g5:2 a5:2", "b5:1"})
	score.Staves[0].Measures[2].SystemBreak = true
	f := newTrackerFixture(t, score)
	f.choose(at(1, 0))

	f.tracker.MoveEnd()
	f.assertSelected(at(1, 1))
	f.tracker.MoveHome()
	f.assertSelected(at(0, 0))

	f.tracker.MoveScoreEnd()
	f.assertSelected(at(2, 0))
	f.tracker.MoveHome()
	f.assertSelected(at(2, 0))
	f.tracker.MoveScoreHome()
	f.assertSelected(at(0, 0))
}

func TestAdvanceModifierSelection(t *testing.T) {
	score := buildScore(t, []string{"c5:4 d5:4 e5:2"})
	n := score.Staves[0].Measures[0].Voices[0].Notes[0]
	n.Modifiers = append(n.Modifiers, NoteModifier{Kind: ModLyric, Text: "la"})
	n.GraceNotes = []GraceNote{{Pitches: []Pitch{{Letter: 'd', Octave: 5}}, Ticks: TicksPerQuarter / 4}}
	f := newTrackerFixture(t, score)
	tr := f.tracker

	tr.AdvanceModifierSelection(1)
	if mods := tr.ModifierSelections(); len(mods) != 1 || mods[0].Ref.Target != TargetNoteModifier {
		t.Fatalf("first modifier = %+v", mods)
	}
	tr.AdvanceModifierSelection(1)
	if mods := tr.ModifierSelections(); len(mods) != 1 || mods[0].Ref.Target != TargetGraceNote || tr.GraceIndex() != 0 {
		t.Fatalf("second modifier = %+v, grace %d", mods, tr.GraceIndex())
	}
	tr.AdvanceModifierSelection(1)
	if mods := tr.ModifierSelections(); mods[0].Ref.Target != TargetNoteModifier || tr.GraceIndex() != -1 {
		t.Fatalf("wrap around = %+v", mods)
	}

	tr.ClearModifierSelections()
	if len(tr.ModifierSelections()) != 0 {
		t.Errorf("modifiers not cleared")
	}
}

func TestSelectAt(t *testing.T) {
	score := buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "g5:2 a5:2"})
	n := score.Staves[0].Measures[1].Voices[0].Notes[1]
	n.Modifiers = append(n.Modifiers, NoteModifier{Kind: ModLyric, Text: "word"})
	f := newTrackerFixture(t, score)
	rm := f.tracker.RenderMap()

	center := func(sel Selector) point {
		s, ok := rm.Find(sel)
		if !ok {
			t.Fatalf("no note at %v", sel)
		}
		return s.Box.Center()
	}

	c := center(at(0, 1))
	if !f.tracker.SelectAt(c.X, c.Y, false) {
		t.Fatal("click on a note selected nothing")
	}
	f.assertSelected(at(0, 1))

	c = center(at(1, 0))
	f.tracker.SelectAt(c.X, c.Y, true)
	f.assertSelected(at(0, 1), at(0, 2), at(0, 3), at(1, 0))

	c = center(at(0, 0))
	f.tracker.SelectAt(c.X, c.Y, true)
	f.assertSelected(at(0, 0), at(0, 1), at(0, 2), at(0, 3), at(1, 0))

	tabs := rm.ModifiersFor(at(1, 1))
	if len(tabs) != 1 {
		t.Fatalf("lyric tabs = %v", tabs)
	}
	c = tabs[0].Box.Center()
	if !f.tracker.SelectAt(c.X, c.Y, false) {
		t.Fatal("click on a lyric selected nothing")
	}
	f.assertSelected(at(1, 1))
	if mods := f.tracker.ModifierSelections(); len(mods) != 1 || !mods[0].Same(tabs[0]) {
		t.Errorf("lyric not selected: %+v", mods)
	}

	if f.tracker.SelectAt(-500, -500, false) {
		t.Errorf("click outside the score changed the selection")
	}
	f.assertSelected(at(1, 1))
}

func TestSelectBox(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4"}))
	rm := f.tracker.RenderMap()
	a, _ := rm.Find(at(0, 1))
	b, _ := rm.Find(at(0, 2))

	if !f.tracker.SelectBox(a.Box.Union(b.Box)) {
		t.Fatal("drag over two notes selected nothing")
	}
	f.assertSelected(at(0, 1), at(0, 2))

	if f.tracker.SelectBox(Box{X: -50, Y: -50, Width: 10, Height: 10}) {
		t.Errorf("empty drag changed the selection")
	}
	f.assertSelected(at(0, 1), at(0, 2))
}

func TestSuggest(t *testing.T) {
	f := newTrackerFixture(t, buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4"}))
	s, _ := f.tracker.RenderMap().Find(at(0, 2))
	c := s.Box.Center()

	f.tracker.Suggest(c.X, c.Y)
	if got := f.tracker.Suggestion(); got == nil || !got.Selector.SameNote(at(0, 2)) {
		t.Errorf("suggestion = %v", got)
	}
	f.tracker.Suggest(-10, -10)
	if f.tracker.Suggestion() != nil {
		t.Errorf("suggestion kept outside the score")
	}
}
