package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

// describeNote renders a note the way it is shown in the status line and
// copied to the clipboard.
func describeNote(sel Selector, n *Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "staff %d m%d v%d #%d ", sel.Staff+1, sel.Measure+1, sel.Voice+1, sel.Tick+1)
	if n.Rest {
		b.WriteString("rest")
	} else {
		b.WriteString(formatPitches(n.Pitches, sel.Pitches))
	}
	fmt.Fprintf(&b, " %s", durationName(n.Ticks))
	return b.String()
}

func formatPitches(pitches []Pitch, only []int) string {
	var parts []string
	for i, p := range pitches {
		if len(only) > 0 && !slices.Contains(only, i) {
			continue
		}
		parts = append(parts, p.String())
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " ") + ")"
}

var durationNames = map[int]string{
	TicksPerQuarter * 4:  "whole",
	TicksPerQuarter * 2:  "half",
	TicksPerQuarter:      "quarter",
	TicksPerQuarter / 2:  "8th",
	TicksPerQuarter / 4:  "16th",
	TicksPerQuarter / 8:  "32nd",
	TicksPerQuarter / 16: "64th",
}

func durationName(ticks int) string {
	base, dots := newTheory().DurationParts(ticks)
	name, ok := durationNames[base]
	if !ok {
		return strconv.Itoa(ticks) + "t"
	}
	return strings.Repeat("dotted ", dots) + name
}

// describeSelections is the clipboard text for a selection, one note per
// line.
func describeSelections(sels []*Selection) string {
	lines := make([]string, 0, len(sels))
	for _, s := range sels {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

func copySelections(sels []*Selection) error {
	if len(sels) == 0 {
		return ErrNothingSelected
	}
	return clipboard.WriteAll(describeSelections(sels))
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// parsePitch reads a pitch name such as "c4", "F#3" or "bb5".
func parsePitch(s string) (Pitch, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 || letterIndex(s[0]) < 0 {
		return Pitch{}, fmt.Errorf("stave: bad pitch %q", s)
	}
	p := Pitch{Letter: s[0]}
	rest := s[1:]
	i := 0
	for i < len(rest) && (rest[i] == '#' || rest[i] == 'b' || rest[i] == 'n') {
		i++
	}
	p.Accidental = rest[:i]
	switch p.Accidental {
	case "", "n", "#", "b", "##", "bb":
	default:
		return Pitch{}, fmt.Errorf("stave: bad accidental in %q", s)
	}
	oct, err := strconv.Atoi(rest[i:])
	if err != nil || oct < 0 || oct > 9 {
		return Pitch{}, fmt.Errorf("stave: bad octave in %q", s)
	}
	p.Octave = oct
	return p, nil
}

// parsePitchList reads the pitches of the first pitch-bearing line of
// clipboard text. Text copied by copySelections round-trips.
func parsePitchList(text string) ([]Pitch, error) {
	text = cleanClipboardText(text)
	for _, line := range strings.Split(text, "\n") {
		var out []Pitch
		for _, f := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ',' || r == '(' || r == ')'
		}) {
			if p, err := parsePitch(f); err == nil {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, fmt.Errorf("stave: no pitches in clipboard text")
}

func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	text = stripRTF(text)
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := result.String()
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return normalized
}

// stripRTF drops control words and groups from rich text pasted by word
// processors, keeping the plain characters.
func stripRTF(text string) string {
	if !strings.HasPrefix(text, "{\\rtf") && !strings.Contains(text, "\\rtf") {
		return text
	}
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' || r == '}' {
			continue
		}
		if r == '\\' {
			if i+1 < len(runes) {
				next := runes[i+1]
				if (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') {
					i++
					for i < len(runes) {
						if runes[i] == ' ' || runes[i] == '\\' || runes[i] == '{' || runes[i] == '}' {
							if runes[i] == ' ' {
								i++
							}
							break
						}
						i++
					}
					i--
					continue
				} else if next == '\\' || next == '{' || next == '}' {
					result.WriteRune(next)
					i++
					continue
				}
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
