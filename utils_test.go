package main

import (
	"slices"
	"strings"
	"testing"
)

func TestParsePitch(t *testing.T) {
	tests := []struct {
		in      string
		want    Pitch
		wantErr bool
	}{
		{in: "c4", want: Pitch{Letter: 'c', Octave: 4}},
		{in: "F#3", want: Pitch{Letter: 'f', Accidental: "#", Octave: 3}},
		{in: "bb5", want: Pitch{Letter: 'b', Accidental: "b", Octave: 5}},
		{in: "gn2", want: Pitch{Letter: 'g', Accidental: "n", Octave: 2}},
		{in: " e##4 ", want: Pitch{Letter: 'e', Accidental: "##", Octave: 4}},
		{in: "h4", wantErr: true},
		{in: "c#b4", wantErr: true},
		{in: "c10", wantErr: true},
		{in: "c", wantErr: true},
		{in: "quarter", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePitch(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePitch(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePitch(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parsePitch(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescribeNote(t *testing.T) {
	chord := &Note{Ticks: TicksPerQuarter * 3 / 2, Pitches: []Pitch{
		{Letter: 'c', Octave: 4}, {Letter: 'e', Octave: 4}, {Letter: 'g', Octave: 4},
	}}
	tests := []struct {
		sel  Selector
		note *Note
		want string
	}{
		{Selector{}, chord, "staff 1 m1 v1 #1 (c4 e4 g4) dotted quarter"},
		{Selector{Pitches: []int{1}}, chord, "staff 1 m1 v1 #1 e4 dotted quarter"},
		{Selector{Staff: 1, Measure: 2, Tick: 3}, &Note{Ticks: TicksPerQuarter * 2, Rest: true}, "staff 2 m3 v1 #4 rest half"},
	}
	for _, tt := range tests {
		if got := describeNote(tt.sel, tt.note); got != tt.want {
			t.Errorf("describeNote(%v) = %q, want %q", tt.sel, got, tt.want)
		}
	}
}

func TestPitchListRoundTrip(t *testing.T) {
	score := buildScore(t, []string{"c4+e4+g#4:4 d5:4 r:2"})
	rm := layoutAndMap(t, newTestEngine(score, testPrefs()))
	text := describeSelections(rm.Notes())

	got, err := parsePitchList(text)
	if err != nil {
		t.Fatal(err)
	}
	want := score.Staves[0].Measures[0].Voices[0].Notes[0].Pitches
	if !slices.Equal(got, want) {
		t.Errorf("parsePitchList = %v, want %v", got, want)
	}

	if _, err := parsePitchList("staff 1 m1 v1 #3 rest half"); err == nil {
		t.Error("rest line produced pitches")
	}
}

func TestCleanClipboardText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"c4\r\ne4\rg4", "c4\ne4\ng4"},
		{"a\x00b\x07c", "abc"},
		{`{\rtf1\ansi {\b c4} e4}`, "c4 e4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := strings.TrimSpace(cleanClipboardText(tt.in)); got != tt.want {
			t.Errorf("cleanClipboardText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDurationName(t *testing.T) {
	tests := map[int]string{
		TicksPerQuarter * 4:     "whole",
		TicksPerQuarter * 3:     "dotted half",
		TicksPerQuarter * 7 / 2: "dotted dotted half",
		TicksPerQuarter / 2:     "8th",
		TicksPerQuarter / 16:    "64th",
	}
	for ticks, want := range tests {
		if got := durationName(ticks); got != want {
			t.Errorf("durationName(%d) = %q, want %q", ticks, got, want)
		}
	}
}
