package main

import (
	"fmt"
	"math"
)

// Engraver places notes and annotations inside the measure boxes produced by
// the layout engine and draws them onto a surface. It only calls the surface
// for pages the caller asks to redraw, but reports element boxes for every
// page so the render map stays complete.
type Engraver struct {
	score   *Score
	est     *Estimator
	theory  Theory
	metrics GlyphMetrics
}

func newEngraver(e *Engine) *Engraver {
	return &Engraver{score: e.score, est: e.est, theory: e.est.theory, metrics: e.est.metrics}
}

func (g *Engraver) Draw(surface RenderSurface, redraw func(page int) bool) []DrawnElement {
	var out []DrawnElement
	contextFor := func(page int) DrawContext {
		if surface == nil || (redraw != nil && !redraw(page)) {
			return nil
		}
		return surface.ContextFor(page)
	}

	for si, st := range g.score.Staves {
		noteBoxes := make(map[selectorKey]Box)
		for _, m := range st.Measures {
			if m.Layout.Hidden() || m.Box.Width == 0 {
				continue
			}
			out = g.drawMeasure(contextFor(m.Layout.PageIndex), si, m, noteBoxes, out)
		}
		for i, sm := range st.Modifiers {
			out = g.drawStaffModifier(contextFor, si, i, sm, noteBoxes, out)
		}
	}
	return out
}

func (g *Engraver) drawMeasure(ctx DrawContext, si int, m *Measure, noteBoxes map[selectorKey]Box, out []DrawnElement) []DrawnElement {
	space := g.est.space
	top := m.Layout.StaffY
	bottom := top + g.est.staffHeight()
	page := m.Layout.PageIndex

	if ctx != nil {
		ctx.DrawStaffLines(m.Box.X, top, m.Box.Width, space)
		ctx.DrawBarline(m.Box.Right(), top, bottom)
		lx := m.Box.X + 2
		if m.Layout.ForceClef {
			ctx.DrawText(m.Clef.String()[:1], lx, top+2*space)
			lx += g.metrics.GlyphWidth(clefGlyph(m.Clef))
		}
		if m.Layout.ForceKey && m.Key != "" {
			ctx.DrawText(m.Key, lx, top+space)
			lx += float64(g.theory.KeyAccidentalCount(m.Key)) * (g.metrics.GlyphWidth("accidentalSharp") + 2)
		}
		if m.Layout.ForceTime {
			ctx.DrawText(m.Time.String(), lx, top+2*space)
		}
		if m.Layout.ForceTempo {
			ctx.DrawText(fmt.Sprintf("q = %d", m.Tempo.BPM), m.Box.X, top+m.Layout.AboveBaseline+space)
		}
		if m.Layout.MultiMeasureRest > 1 {
			w := g.metrics.GlyphWidth("multiRest")
			x := m.Box.X + m.Layout.StartPadding + (m.Box.Width-m.Layout.StartPadding-w)/2
			ctx.DrawSpan(Box{X: x, Y: top + space*1.5, Width: w, Height: space}, fmt.Sprint(m.Layout.MultiMeasureRest))
		}
	}

	startX := m.Box.X + m.Layout.StartPadding
	avail := m.Box.Width - m.Layout.StartPadding
	for vi, v := range m.Voices {
		widths := make([]float64, len(v.Notes))
		total := 0.0
		for ti := range v.Notes {
			widths[ti] = g.est.noteWidth(m, v.Notes, ti)
			total += widths[ti]
		}
		scale := 1.0
		if total > 0 && avail > total {
			scale = avail / total
		}
		x := startX
		for ti, n := range v.Notes {
			sel := Selector{Staff: si, Measure: m.Index, Voice: vi, Tick: ti}
			box := g.noteBox(m, v.Notes, ti, x)
			if m.Layout.MultiMeasureRest > 1 {
				box.X = m.Box.X + m.Layout.StartPadding + (avail-box.Width)/2
			}
			noteBoxes[sel.key()] = box
			out = append(out, DrawnElement{Kind: ElementNote, Selector: sel, Box: box, Page: page})
			if ctx != nil && m.Layout.MultiMeasureRest <= 1 {
				g.drawNote(ctx, m, n, vi, box)
			}
			out = g.noteModifiers(ctx, m, n, sel, box, out)
			x += widths[ti] * scale
		}
	}
	return out
}

func (g *Engraver) noteBox(m *Measure, notes []*Note, ti int, x float64) Box {
	space := g.est.space
	n := notes[ti]
	base, _ := g.theory.DurationParts(n.Ticks)
	hx := x + g.est.prefs.NoteSpacing/2
	hx += float64(len(n.GraceNotes)) * g.metrics.GlyphWidth("noteheadBlack") * graceScale
	if n.Rest || len(n.Pitches) == 0 {
		w := g.metrics.GlyphWidth(restGlyph(base))
		return Box{X: hx, Y: m.Layout.StaffY + space, Width: w, Height: 2 * space}
	}
	for _, p := range n.Pitches {
		if acc, show := g.est.displayedAccidental(m.Key, notes, ti, p); show {
			hx += g.metrics.GlyphWidth(accidentalGlyph(acc))
		}
	}
	lo, hi := math.MaxInt, math.MinInt
	for _, p := range n.Pitches {
		pos := g.theory.StaffLine(p, m.Clef)
		lo = min(lo, pos)
		hi = max(hi, pos)
	}
	y := m.Layout.StaffY + g.est.lineY(hi) - space/2
	return Box{
		X:      hx,
		Y:      y,
		Width:  g.metrics.GlyphWidth(noteheadGlyph(base)),
		Height: g.est.lineY(lo) - g.est.lineY(hi) + space,
	}
}

func (g *Engraver) drawNote(ctx DrawContext, m *Measure, n *Note, voice int, box Box) {
	space := g.est.space
	base, dots := g.theory.DurationParts(n.Ticks)
	if n.Rest || len(n.Pitches) == 0 {
		ctx.DrawText(restLabel(base), box.X, box.Y+box.Height/2)
		return
	}
	filled := base < TicksPerQuarter*2
	for _, p := range n.Pitches {
		y := m.Layout.StaffY + g.est.lineY(g.theory.StaffLine(p, m.Clef)) - space/2
		ctx.DrawNotehead(Box{X: box.X, Y: y, Width: box.Width, Height: space}, filled)
	}
	if base < TicksPerQuarter*4 {
		if g.est.stemUp(n, voice, m.Clef) {
			ctx.DrawStem(box.Right(), box.Bottom()-space/2, box.Y-stemSpaces*space+space/2)
		} else {
			ctx.DrawStem(box.X, box.Y+space/2, box.Bottom()+stemSpaces*space-space/2)
		}
	}
	for d := 0; d < dots; d++ {
		ctx.DrawText(".", box.Right()+2+float64(d)*4, box.Bottom()-space/2)
	}
}

func restLabel(base int) string {
	switch {
	case base >= TicksPerQuarter*4:
		return "-"
	case base >= TicksPerQuarter*2:
		return "="
	case base >= TicksPerQuarter:
		return "z"
	default:
		return "y"
	}
}

func (g *Engraver) noteModifiers(ctx DrawContext, m *Measure, n *Note, sel Selector, box Box, out []DrawnElement) []DrawnElement {
	space := g.est.space
	staffBottom := m.Layout.StaffY + g.est.staffHeight()
	lineHeight := g.metrics.LineHeight(textFontSize)
	page := m.Layout.PageIndex

	emit := func(ref ModifierRef, label string, b Box) {
		out = append(out, DrawnElement{Kind: ElementModifier, Selector: sel, Modifier: ref, Label: label, Box: b, Page: page})
		if ctx != nil {
			ctx.DrawText(label, b.X, b.Bottom())
		}
	}

	for i, mod := range n.Modifiers {
		ref := ModifierRef{Target: TargetNoteModifier, Index: i}
		switch mod.Kind {
		case ModLyric:
			w := g.metrics.TextWidth(mod.Text, textFontSize)
			emit(ref, mod.Text, Box{X: box.X, Y: staffBottom + float64(mod.Verse+1)*lineHeight, Width: w, Height: lineHeight})
		case ModChord:
			w := g.metrics.TextWidth(mod.Text, textFontSize)
			y := min(box.Y, m.Layout.StaffY) - float64(mod.Verse+2)*lineHeight
			emit(ref, mod.Text, Box{X: box.X, Y: y, Width: w, Height: lineHeight})
		case ModDynamic:
			w := g.metrics.TextWidth(mod.Text, textFontSize)
			emit(ref, mod.Text, Box{X: box.X, Y: max(box.Bottom(), staffBottom) + space, Width: w, Height: lineHeight})
		case ModArticulation:
			emit(ref, mod.Text, Box{X: box.X, Y: box.Y - space, Width: box.Width, Height: space * 0.8})
		case ModOrnament:
			emit(ref, mod.Text, Box{X: box.X, Y: min(box.Y, m.Layout.StaffY) - 1.5*space, Width: box.Width, Height: space})
		case ModMicrotone:
			w := g.metrics.GlyphWidth("accidentalMicrotone")
			emit(ref, mod.Text, Box{X: box.X - w, Y: box.Y - space/2, Width: w, Height: space})
		}
	}

	gw := g.metrics.GlyphWidth("noteheadBlack") * graceScale
	for i := range n.GraceNotes {
		x := box.X - float64(len(n.GraceNotes)-i)*gw
		emit(ModifierRef{Target: TargetGraceNote, Index: i}, "g", Box{X: x, Y: box.Y, Width: gw, Height: space * graceScale})
	}
	return out
}

func (g *Engraver) drawStaffModifier(contextFor func(int) DrawContext, si, idx int, sm StaffModifier, noteBoxes map[selectorKey]Box, out []DrawnElement) []DrawnElement {
	start, ok := noteBoxes[sm.Start.key()]
	if !ok {
		return out
	}
	end, ok := noteBoxes[sm.End.key()]
	startMeasure, _ := g.score.Measure(si, sm.Start.Measure)
	endMeasure, _ := g.score.Measure(si, sm.End.Measure)
	endY := end.Y
	if !ok || endMeasure == nil || endMeasure.Layout.LineIndex != startMeasure.Layout.LineIndex {
		endY = start.Y
		// the span continues on a later system; stop at the end of this one
		end = Box{X: start.X, Width: startMeasure.Box.Right() - start.X}
		for _, m := range g.score.Staves[si].Measures[startMeasure.Index:] {
			if m.Layout.LineIndex != startMeasure.Layout.LineIndex {
				break
			}
			end = Box{X: m.Box.Right() - 1, Width: 1}
		}
	}

	space := g.est.space
	staffTop := startMeasure.Layout.StaffY
	b := Box{X: start.X, Width: max(end.Right()-start.X, space)}
	switch sm.Kind {
	case StaffHairpin:
		b.Y, b.Height = staffTop+g.est.staffHeight()+space, 1.5*space
	case StaffSlur:
		b.Y, b.Height = min(start.Y, endY, staffTop)-space, space
	case StaffBracket:
		b.Y, b.Height = staffTop-2*space, space
	case StaffTempoText:
		b.Y, b.Height = staffTop-3*space, space
	}

	sel := sm.Start.Clone()
	sel.Staff = si
	label := sm.Kind.String()
	if sm.Text != "" {
		label = sm.Text
	}
	page := startMeasure.Layout.PageIndex
	out = append(out, DrawnElement{
		Kind:     ElementModifier,
		Selector: sel,
		Modifier: ModifierRef{Target: TargetStaffModifier, Index: idx},
		Label:    label,
		Box:      b,
		Page:     page,
	})
	if ctx := contextFor(page); ctx != nil {
		ctx.DrawSpan(b, label)
	}
	return out
}
