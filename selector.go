package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Selector is the logical coordinate of a note. Tick is the index of the note
// within its voice, not a time value. Pitches optionally narrows the selection
// to some of the pitches sounding at that tick.
type Selector struct {
	Staff   int
	Measure int
	Voice   int
	Tick    int
	Pitches []int
}

func (s Selector) Clone() Selector {
	c := s
	if s.Pitches != nil {
		c.Pitches = slices.Clone(s.Pitches)
	}
	return c
}

// Compare orders by staff, measure, then tick. Voice breaks the remaining tie
// so that sorting a selection list is deterministic.
func (s Selector) Compare(o Selector) int {
	switch {
	case s.Staff != o.Staff:
		return cmp.Compare(s.Staff, o.Staff)
	case s.Measure != o.Measure:
		return cmp.Compare(s.Measure, o.Measure)
	case s.Tick != o.Tick:
		return cmp.Compare(s.Tick, o.Tick)
	}
	return cmp.Compare(s.Voice, o.Voice)
}

func (s Selector) Less(o Selector) bool { return s.Compare(o) < 0 }

// SameNote ignores the pitch narrowing.
func (s Selector) SameNote(o Selector) bool {
	return s.Staff == o.Staff && s.Measure == o.Measure && s.Voice == o.Voice && s.Tick == o.Tick
}

func (s Selector) SameMeasure(o Selector) bool {
	return s.Staff == o.Staff && s.Measure == o.Measure
}

func (s Selector) Equal(o Selector) bool {
	return s.SameNote(o) && slices.Equal(s.Pitches, o.Pitches)
}

// Contains reports whether o names the same note and every pitch o narrows to
// is also selected by s. An empty pitch list selects the whole note.
func (s Selector) Contains(o Selector) bool {
	if !s.SameNote(o) {
		return false
	}
	if len(s.Pitches) == 0 {
		return true
	}
	for _, p := range o.Pitches {
		if !slices.Contains(s.Pitches, p) {
			return false
		}
	}
	return len(o.Pitches) > 0
}

func (s Selector) key() selectorKey {
	return selectorKey{s.Staff, s.Measure, s.Voice, s.Tick}
}

func (s Selector) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d:%d:%d", s.Staff, s.Measure, s.Voice, s.Tick)
	if len(s.Pitches) > 0 {
		fmt.Fprintf(&b, "%v", s.Pitches)
	}
	return b.String()
}

// selectorKey is the comparable part of a Selector, used as a map key.
type selectorKey struct {
	staff, measure, voice, tick int
}

func sortSelectors(sels []Selector) {
	slices.SortStableFunc(sels, func(a, b Selector) int { return a.Compare(b) })
}
