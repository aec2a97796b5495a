package main

import "strings"

// TicksPerQuarter is the duration resolution used by notes and measures.
const TicksPerQuarter = 4096

const minTicks = TicksPerQuarter / 16

// Theory is the music-theory service the layout and edit code rely on. All of
// its operations are pure.
type Theory interface {
	// StaffLine returns the vertical position of p in half staff spaces above
	// the middle line of a staff with the given clef.
	StaffLine(p Pitch, clef ClefType) int
	// KeyAccidental returns "#", "b" or "n" for a letter in a major key.
	KeyAccidental(key string, letter byte) string
	KeyAccidentalCount(key string) int
	// DurationParts splits a tick count into a base note value and dots.
	DurationParts(ticks int) (base, dots int)
	// SplitDuration returns the durations a note contracts into.
	SplitDuration(ticks int) []int
	Transpose(p Pitch, halfSteps int, key string) Pitch
}

type westernTheory struct{}

func newTheory() Theory { return westernTheory{} }

var (
	sharpOrder = "fcgdaeb"
	flatOrder  = "beadgcf"
	sharpKeys  = map[string]int{"c": 0, "g": 1, "d": 2, "a": 3, "e": 4, "b": 5, "f#": 6, "c#": 7}
	flatKeys   = map[string]int{"f": 1, "bb": 2, "eb": 3, "ab": 4, "db": 5, "gb": 6, "cb": 7}
)

var letterSemitones = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

var sharpSpelling = []Pitch{
	{Letter: 'c'}, {Letter: 'c', Accidental: "#"}, {Letter: 'd'}, {Letter: 'd', Accidental: "#"},
	{Letter: 'e'}, {Letter: 'f'}, {Letter: 'f', Accidental: "#"}, {Letter: 'g'},
	{Letter: 'g', Accidental: "#"}, {Letter: 'a'}, {Letter: 'a', Accidental: "#"}, {Letter: 'b'},
}

var flatSpelling = []Pitch{
	{Letter: 'c'}, {Letter: 'd', Accidental: "b"}, {Letter: 'd'}, {Letter: 'e', Accidental: "b"},
	{Letter: 'e'}, {Letter: 'f'}, {Letter: 'g', Accidental: "b"}, {Letter: 'g'},
	{Letter: 'a', Accidental: "b"}, {Letter: 'a'}, {Letter: 'b', Accidental: "b"}, {Letter: 'b'},
}

func letterIndex(l byte) int {
	return strings.IndexByte("cdefgab", l)
}

func (westernTheory) StaffLine(p Pitch, clef ClefType) int {
	diatonic := p.Octave*7 + letterIndex(p.Letter)
	var middle int
	switch clef {
	case ClefTreble:
		middle = 4*7 + 6 // b4
	case ClefBass:
		middle = 3*7 + 1 // d3
	case ClefAlto:
		middle = 4 * 7 // c4
	case ClefTenor:
		middle = 3*7 + 5 // a3
	}
	return diatonic - middle
}

func (westernTheory) KeyAccidental(key string, letter byte) string {
	key = strings.ToLower(key)
	if n, ok := sharpKeys[key]; ok {
		if strings.IndexByte(sharpOrder[:n], letter) >= 0 {
			return "#"
		}
		return "n"
	}
	if n, ok := flatKeys[key]; ok {
		if strings.IndexByte(flatOrder[:n], letter) >= 0 {
			return "b"
		}
	}
	return "n"
}

func (westernTheory) KeyAccidentalCount(key string) int {
	key = strings.ToLower(key)
	if n, ok := sharpKeys[key]; ok {
		return n
	}
	return flatKeys[key]
}

func (westernTheory) DurationParts(ticks int) (base, dots int) {
	for base = TicksPerQuarter * 4; base > minTicks && base > ticks; base /= 2 {
	}
	rem := ticks - base
	for half := base / 2; rem > 0 && half >= minTicks/2 && dots < 2; half /= 2 {
		if rem < half {
			break
		}
		rem -= half
		dots++
	}
	return base, dots
}

func (westernTheory) SplitDuration(ticks int) []int {
	if ticks%2 != 0 || ticks/2 < minTicks {
		return []int{ticks}
	}
	return []int{ticks / 2, ticks / 2}
}

func accidentalSemitones(acc string) int {
	switch acc {
	case "#":
		return 1
	case "##":
		return 2
	case "b":
		return -1
	case "bb":
		return -2
	}
	return 0
}

// Transpose moves p by half steps and spells the result for the key, leaving
// the accidental empty when the key already supplies it.
func (t westernTheory) Transpose(p Pitch, halfSteps int, key string) Pitch {
	acc := p.Accidental
	if acc == "" {
		acc = t.KeyAccidental(key, p.Letter)
	}
	midi := (p.Octave+1)*12 + letterSemitones[p.Letter] + accidentalSemitones(acc) + halfSteps
	spelling := sharpSpelling
	if _, flat := flatKeys[strings.ToLower(key)]; flat {
		spelling = flatSpelling
	}
	pc := ((midi % 12) + 12) % 12
	out := spelling[pc]
	out.Octave = midi/12 - 1
	// b# and cb style spellings never come out of the tables, so the octave
	// follows directly from the midi number.
	want := out.Accidental
	if want == "" {
		want = "n"
	}
	if t.KeyAccidental(key, out.Letter) == want {
		out.Accidental = ""
	} else if want == "n" {
		out.Accidental = "n"
	}
	return out
}
