package main

// DrawContext draws one page. Coordinates are layout coordinates; the
// context converts them to its own space.
type DrawContext interface {
	DrawStaffLines(x, y, width, space float64)
	DrawBarline(x, top, bottom float64)
	DrawNotehead(b Box, filled bool)
	DrawStem(x, y1, y2 float64)
	DrawText(text string, x, y float64)
	DrawSpan(b Box, label string)
}

// RenderSurface owns the drawing contexts of every page and converts
// between layout and screen coordinates.
type RenderSurface interface {
	ContextFor(page int) DrawContext
	LogicalToScreen(b Box) Box
	ScreenToLogical(b Box) Box
}

type ElementKind int

const (
	ElementNote ElementKind = iota
	ElementModifier
)

type ModifierTarget int

const (
	TargetNoteModifier ModifierTarget = iota
	TargetStaffModifier
	TargetGraceNote
)

// ModifierRef names a non-note annotation. Index points into the owning
// note's Modifiers or GraceNotes, or into the staff's Modifiers.
type ModifierRef struct {
	Target ModifierTarget
	Index  int
}

// DrawnElement is one note or annotation as placed by a drawing pass.
type DrawnElement struct {
	Kind     ElementKind
	Selector Selector
	Modifier ModifierRef
	Label    string
	Box      Box
	Page     int
}
