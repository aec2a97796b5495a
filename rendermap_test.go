package main

import "testing"

func TestClosestTick(t *testing.T) {
	score := buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "c5:2 d5:2", "g5:1"})
	rm := layoutAndMap(t, newTestEngine(score, testPrefs()))

	tests := []struct {
		name string
		sel  Selector
		want Selector
	}{
		{"exact", Selector{Staff: 0, Measure: 0, Voice: 0, Tick: 2}, Selector{Staff: 0, Measure: 0, Voice: 0, Tick: 2}},
		{"missing tick", Selector{Staff: 0, Measure: 1, Voice: 0, Tick: 5}, Selector{Staff: 0, Measure: 1, Voice: 0, Tick: 0}},
		{"missing voice", Selector{Staff: 0, Measure: 1, Voice: 1, Tick: 1}, Selector{Staff: 0, Measure: 1, Voice: 0, Tick: 0}},
		{"missing measure", Selector{Staff: 0, Measure: 7, Voice: 0, Tick: 3}, Selector{Staff: 0, Measure: 2, Voice: 0, Tick: 0}},
		{"missing staff", Selector{Staff: 4, Measure: 1, Voice: 0, Tick: 0}, Selector{Staff: 0, Measure: 0, Voice: 0, Tick: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rm.ClosestTick(tt.sel)
			if !ok {
				t.Fatalf("ClosestTick(%v) failed", tt.sel)
			}
			if !got.Selector.SameNote(tt.want) {
				t.Errorf("ClosestTick(%v) = %v, want %v", tt.sel, got.Selector, tt.want)
			}
		})
	}
}

func TestClosestTickEmptyMap(t *testing.T) {
	rm := BuildRenderMap(&Score{}, nil, 1)
	if _, ok := rm.ClosestTick(Selector{}); ok {
		t.Fatal("ClosestTick on an empty map should fail")
	}
	if _, ok := rm.FirstNote(); ok {
		t.Fatal("FirstNote on an empty map should fail")
	}
}

func TestRenderMapDropsStaleElements(t *testing.T) {
	score := buildScore(t, []string{"c5:2 d5:2"})
	elements := []DrawnElement{
		{Kind: ElementNote, Selector: Selector{Staff: 0, Measure: 0, Voice: 0, Tick: 1}},
		{Kind: ElementNote, Selector: Selector{Staff: 0, Measure: 0, Voice: 0, Tick: 0}},
		{Kind: ElementNote, Selector: Selector{Staff: 0, Measure: 0, Voice: 0, Tick: 9}},
		{Kind: ElementNote, Selector: Selector{Staff: 2, Measure: 0, Voice: 0, Tick: 0}},
	}
	rm := BuildRenderMap(score, elements, 3)
	if rm.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rm.Len())
	}
	if first, _ := rm.FirstNote(); first.Selector.Tick != 0 {
		t.Errorf("notes not in tick order: first tick = %d", first.Selector.Tick)
	}
	if rm.Generation() != 3 || rm.Notes()[0].Generation != 3 {
		t.Errorf("generation not recorded")
	}
}

func TestNextPrevCrossMeasures(t *testing.T) {
	score := buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4", "c5:2 d5:2", "g5:1"})
	rm := layoutAndMap(t, newTestEngine(score, testPrefs()))

	next, ok := rm.Next(Selector{Measure: 0, Tick: 3})
	if !ok || !next.Selector.SameNote(Selector{Measure: 1, Tick: 0}) {
		t.Errorf("Next across barline = %v, %v", next, ok)
	}
	prev, ok := rm.Prev(Selector{Measure: 1, Tick: 0})
	if !ok || !prev.Selector.SameNote(Selector{Measure: 0, Tick: 3}) {
		t.Errorf("Prev across barline = %v, %v", prev, ok)
	}
	if _, ok := rm.Next(Selector{Measure: 2, Tick: 0}); ok {
		t.Errorf("Next past the last note should fail")
	}
	if _, ok := rm.Prev(Selector{Measure: 0, Tick: 0}); ok {
		t.Errorf("Prev before the first note should fail")
	}
}

func TestNextSkipsMultiMeasureRestInterior(t *testing.T) {
	score := buildScore(t, []string{"c5:1", "r:1", "r:1", "d5:1"})
	rm := layoutAndMap(t, newTestEngine(score, testPrefs()))

	if _, ok := rm.Find(Selector{Measure: 2}); ok {
		t.Fatal("hidden measure should not be in the render map")
	}
	next, ok := rm.Next(Selector{Measure: 1})
	if !ok || next.Selector.Measure != 3 {
		t.Errorf("Next from span start = %v, %v; want measure 3", next, ok)
	}
}

func TestNoteAt(t *testing.T) {
	score := buildScore(t, []string{"c5:4 d5:4 e5:4 f5:4"})
	rm := layoutAndMap(t, newTestEngine(score, testPrefs()))

	target, ok := rm.Find(Selector{Tick: 1})
	if !ok {
		t.Fatal("note missing from render map")
	}
	c := target.Box.Center()
	got, ok := rm.NoteAt(c.X, c.Y)
	if !ok || !got.Selector.SameNote(target.Selector) {
		t.Errorf("NoteAt(center of tick 1) = %v, %v", got, ok)
	}

	// Below every notehead, near the right barline.
	m := score.Staves[0].Measures[0]
	got, ok = rm.NoteAt(m.Box.Right()-0.5, m.Layout.StaffY+38)
	if !ok || got.Selector.Tick != 3 {
		t.Errorf("NoteAt(inside measure) = %v, %v; want tick 3", got, ok)
	}

	if _, ok := rm.NoteAt(-100, -100); ok {
		t.Errorf("NoteAt outside every measure should fail")
	}
}

func TestClosestTickStaysOnStaff(t *testing.T) {
	score := buildScore(t,
		[]string{"c5:1", "d5:1", "e5:1"},
		[]string{"c4:1", "d4:1", "e4:1"},
	)
	rm := layoutAndMap(t, newTestEngine(score, testPrefs()))

	for _, measure := range []int{-3, 1, 2, 40} {
		got, ok := rm.ClosestTick(Selector{Staff: 1, Measure: measure, Tick: 6})
		if !ok || got.Selector.Staff != 1 {
			t.Errorf("ClosestTick(staff 1, measure %d) = %v, %v", measure, got, ok)
		}
	}
}
