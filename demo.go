package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseVoice reads a compact note list such as "c4:4 d4:8 e4:8 r:2". Each
// token is pitches joined by '+' (or "r" for a rest), a colon, the note
// value (1 whole, 2 half, 4 quarter...) and an optional dot.
func parseVoice(text string) ([]*Note, error) {
	var notes []*Note
	for _, tok := range strings.Fields(text) {
		head, value, ok := strings.Cut(tok, ":")
		if !ok {
			return nil, fmt.Errorf("stave: note %q has no value", tok)
		}
		dotted := strings.HasSuffix(value, ".")
		v, err := strconv.Atoi(strings.TrimSuffix(value, "."))
		if err != nil || v <= 0 || (TicksPerQuarter*4)%v != 0 {
			return nil, fmt.Errorf("stave: bad note value in %q", tok)
		}
		n := &Note{Ticks: TicksPerQuarter * 4 / v}
		if dotted {
			n.Ticks += n.Ticks / 2
		}
		if head == "r" {
			n.Rest = true
		} else {
			for _, ps := range strings.Split(head, "+") {
				p, err := parsePitch(ps)
				if err != nil {
					return nil, err
				}
				n.Pitches = append(n.Pitches, p)
			}
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func mustVoice(text string) Voice {
	notes, err := parseVoice(text)
	if err != nil {
		panic(err)
	}
	return Voice{Notes: notes}
}

func newMeasure(clef ClefType, key string, time TimeSignature, voices ...string) *Measure {
	m := &Measure{Clef: clef, Key: key, Time: time, Tempo: Tempo{BPM: 96}}
	for _, v := range voices {
		m.Voices = append(m.Voices, mustVoice(v))
	}
	return m
}

func annotate(n *Note, kind ModifierKind, text string, verse int) {
	n.Modifiers = append(n.Modifiers, NoteModifier{Kind: kind, Text: text, Verse: verse})
}

// demoScore is the score the editor opens with: a short piano piece with
// lyrics, dynamics, grace notes, a chord, a hairpin and closing rests that
// collapse into a multi-measure rest.
func demoScore() *Score {
	common := TimeSignature{Beats: 4, BeatValue: 4}
	treble := []string{
		"g4:4 a4:4 b4:4 c5:4",
		"d5:2 b4:4 g4:4",
		"e5:8 d5:8 c5:8 b4:8 a4:2",
		"b4+d5+g5:2. r:4",
		"f#4:4 g4:4 a4:4 b4:4",
		"c5:4. b4:8 a4:4 f#4:4",
		"g4:1",
		"r:1",
		"r:1",
	}
	bass := []string{
		"g2:2 d3:2",
		"g2:2 b2:2",
		"c3:2 d3:2",
		"g2+d3:2. r:4",
		"d3:2 d2:2",
		"a2:2 d3:2",
		"g2:1",
		"r:1",
		"r:1",
	}

	top := &Staff{Name: "Right hand"}
	low := &Staff{Name: "Left hand"}
	for i := range treble {
		top.Measures = append(top.Measures, newMeasure(ClefTreble, "g", common, treble[i]))
		low.Measures = append(low.Measures, newMeasure(ClefBass, "g", common, bass[i]))
	}
	top.Measures[4].Voices = append(top.Measures[4].Voices, mustVoice("d4:2 d4:2"))

	m0 := top.Measures[0].Voices[0].Notes
	annotate(m0[0], ModDynamic, "mp", 0)
	for i, syl := range []string{"Sing", "a", "new", "song"} {
		annotate(m0[i], ModLyric, syl, 0)
	}
	for i, syl := range []string{"Lift", "your", "voice", "up"} {
		annotate(m0[i], ModLyric, syl, 1)
	}
	annotate(m0[0], ModChord, "G", 0)
	annotate(top.Measures[2].Voices[0].Notes[0], ModChord, "C", 0)
	annotate(top.Measures[3].Voices[0].Notes[0], ModArticulation, ">", 0)
	annotate(top.Measures[3].Voices[0].Notes[0], ModDynamic, "f", 0)
	annotate(top.Measures[5].Voices[0].Notes[0], ModOrnament, "tr", 0)
	top.Measures[1].Voices[0].Notes[0].GraceNotes = []GraceNote{
		{Pitches: []Pitch{{Letter: 'e', Octave: 5}}, Ticks: TicksPerQuarter / 4},
	}
	top.Measures[4].SystemBreak = true

	top.Modifiers = []StaffModifier{
		{Kind: StaffHairpin, Start: Selector{Measure: 1}, End: Selector{Measure: 2, Tick: 4}, Text: "<"},
		{Kind: StaffSlur, Start: Selector{Measure: 2}, End: Selector{Measure: 2, Tick: 3}},
	}

	score := &Score{Staves: []*Staff{top, low}}
	score.reindex()
	return score
}
