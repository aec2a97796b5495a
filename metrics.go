package main

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// GlyphMetrics reports the size of notation glyphs and text at the current
// engraving scale.
type GlyphMetrics interface {
	GlyphWidth(name string) float64
	TextWidth(text string, size float64) float64
	LineHeight(size float64) float64
}

// Glyph widths at scale 1, where one staff space is 10 units.
var glyphWidths = map[string]float64{
	"noteheadWhole":         16,
	"noteheadHalf":          12,
	"noteheadBlack":         12,
	"restWhole":             12,
	"restHalf":              12,
	"restQuarter":           10,
	"rest8th":               10,
	"rest16th":              11,
	"rest32nd":              12,
	"accidentalSharp":       8,
	"accidentalFlat":        7,
	"accidentalNatural":     7,
	"accidentalDoubleSharp": 9,
	"accidentalDoubleFlat":  12,
	"accidentalMicrotone":   9,
	"augmentationDot":       6,
	"flag":                  8,
	"gClef":                 26,
	"fClef":                 26,
	"cClef":                 26,
	"timeSigDigit":          12,
	"multiRest":             60,
}

type fontMetrics struct {
	scale float64
	ttf   *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

func newFontMetrics(scale float64) (*fontMetrics, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	if scale <= 0 {
		scale = 1
	}
	return &fontMetrics{scale: scale, ttf: ttf, faces: make(map[float64]font.Face)}, nil
}

func (f *fontMetrics) GlyphWidth(name string) float64 {
	w, ok := glyphWidths[name]
	if !ok {
		Logger().Debug("unknown glyph", "name", name)
		return 0
	}
	return w * f.scale
}

func (f *fontMetrics) face(size float64) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(f.ttf, &truetype.Options{
		Size:    size * f.scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	f.faces[size] = face
	return face
}

func (f *fontMetrics) TextWidth(text string, size float64) float64 {
	if text == "" {
		return 0
	}
	adv := font.MeasureString(f.face(size), text)
	return float64(adv) / 64
}

func (f *fontMetrics) LineHeight(size float64) float64 {
	return float64(f.face(size).Metrics().Height) / 64
}

func noteheadGlyph(base int) string {
	switch {
	case base >= TicksPerQuarter*4:
		return "noteheadWhole"
	case base >= TicksPerQuarter*2:
		return "noteheadHalf"
	default:
		return "noteheadBlack"
	}
}

func restGlyph(base int) string {
	switch {
	case base >= TicksPerQuarter*4:
		return "restWhole"
	case base >= TicksPerQuarter*2:
		return "restHalf"
	case base >= TicksPerQuarter:
		return "restQuarter"
	case base >= TicksPerQuarter/2:
		return "rest8th"
	case base >= TicksPerQuarter/4:
		return "rest16th"
	default:
		return "rest32nd"
	}
}

func accidentalGlyph(acc string) string {
	switch acc {
	case "#":
		return "accidentalSharp"
	case "b":
		return "accidentalFlat"
	case "##":
		return "accidentalDoubleSharp"
	case "bb":
		return "accidentalDoubleFlat"
	default:
		return "accidentalNatural"
	}
}

func clefGlyph(c ClefType) string {
	switch c {
	case ClefBass:
		return "fClef"
	case ClefAlto, ClefTenor:
		return "cClef"
	default:
		return "gClef"
	}
}
