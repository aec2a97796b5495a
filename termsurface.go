package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout units covered by one terminal cell at zoom 1. A staff space spans
// two rows so every staff line gets its own row.
const (
	unitsPerCol = 8.0
	unitsPerRow = 5.0
)

const (
	layerNone = iota
	layerSelected
	layerSuggested
	layerModifier
)

var layerStyles = map[int]lipgloss.Style{
	layerSelected:  lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15")),
	layerSuggested: lipgloss.NewStyle().Underline(true),
	layerModifier:  lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
}

// cellOverlay colours a rectangle of cells, given in document cell
// coordinates.
type cellOverlay struct {
	Box   Box
	Layer int
}

// termSurface draws every page into one tall rune grid. Pages are stacked
// the same way the layout stacks them, and only pages handed out by
// ContextFor during a frame are cleared and redrawn.
type termSurface struct {
	colScale   float64
	rowScale   float64
	pageHeight float64
	pageWidth  float64
	grid       [][]rune
	cleared    map[int]bool
}

func newTermSurface(prefs LayoutPreferences) *termSurface {
	zoom := prefs.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return &termSurface{
		colScale:   unitsPerCol / zoom,
		rowScale:   unitsPerRow / zoom,
		pageHeight: prefs.PageHeight,
		pageWidth:  prefs.PageWidth,
		cleared:    make(map[int]bool),
	}
}

// BeginFrame starts a drawing pass for a document of the given page count.
func (s *termSurface) BeginFrame(pages int) {
	clear(s.cleared)
	rows := s.pageStart(pages)
	cols := s.pageCols()
	if len(s.grid) > rows {
		s.grid = s.grid[:rows]
	}
	for len(s.grid) < rows {
		s.grid = append(s.grid, blankRow(cols))
	}
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// pageStart is the first row of a page. Rows follow layout coordinates, so
// pages do not all span the same number of rows.
func (s *termSurface) pageStart(page int) int {
	return int(math.Floor(float64(page) * s.pageHeight / s.rowScale))
}

func (s *termSurface) pageCols() int { return int(math.Ceil(s.pageWidth / s.colScale)) }

// Rows is the height of the drawn document in cells.
func (s *termSurface) Rows() int { return len(s.grid) }

func (s *termSurface) Cols() int { return s.pageCols() }

func (s *termSurface) ContextFor(page int) DrawContext {
	if page < 0 {
		return nil
	}
	first, end := s.pageStart(page), s.pageStart(page+1)
	for end > len(s.grid) {
		s.grid = append(s.grid, blankRow(s.pageCols()))
	}
	if !s.cleared[page] {
		s.cleared[page] = true
		for r := first; r < end; r++ {
			s.grid[r] = blankRow(s.pageCols())
		}
		if page > 0 {
			label := fmt.Sprintf("┄┄ page %d ", page+1)
			s.writeString(label, 0, first)
			for c := len([]rune(label)); c < s.pageCols(); c++ {
				s.grid[first][c] = '┄'
			}
		}
	}
	return &termContext{s: s}
}

func (s *termSurface) LogicalToScreen(b Box) Box {
	return Box{X: b.X / s.colScale, Y: b.Y / s.rowScale, Width: b.Width / s.colScale, Height: b.Height / s.rowScale}
}

func (s *termSurface) ScreenToLogical(b Box) Box {
	return Box{X: b.X * s.colScale, Y: b.Y * s.rowScale, Width: b.Width * s.colScale, Height: b.Height * s.rowScale}
}

// CellCenter converts a document cell to the layout point at its centre.
func (s *termSurface) CellCenter(col, row int) (float64, float64) {
	b := s.ScreenToLogical(Box{X: float64(col) + 0.5, Y: float64(row) + 0.5})
	return b.X, b.Y
}

func (s *termSurface) col(x float64) int { return int(math.Floor(x / s.colScale)) }
func (s *termSurface) row(y float64) int { return int(math.Floor(y / s.rowScale)) }

func (s *termSurface) isValidPos(col, row int) bool {
	return row >= 0 && row < len(s.grid) && col >= 0 && col < len(s.grid[row])
}

func (s *termSurface) set(col, row int, r rune) {
	if s.isValidPos(col, row) {
		s.grid[row][col] = r
	}
}

// setUnder only writes over blank cells and staff lines.
func (s *termSurface) setUnder(col, row int, r rune) {
	if s.isValidPos(col, row) {
		if cur := s.grid[row][col]; cur == ' ' || cur == '─' {
			s.grid[row][col] = r
		}
	}
}

func (s *termSurface) writeString(text string, col, row int) {
	for i, r := range []rune(text) {
		s.set(col+i, row, r)
	}
}

// Render cuts a width x height window out of the document at the pan
// offset and applies the overlays.
func (s *termSurface) Render(width, height, panX, panY int, overlays []cellOverlay, drag *Box) []string {
	if height < 1 {
		height = 1
	}
	if width < 1 {
		width = 1
	}

	canvas := make([][]rune, height)
	layers := make([][]int, height)
	for y := range canvas {
		canvas[y] = blankRow(width)
		layers[y] = make([]int, width)
		if src := y + panY; src >= 0 && src < len(s.grid) {
			for x := range canvas[y] {
				if sx := x + panX; sx >= 0 && sx < len(s.grid[src]) {
					canvas[y][x] = s.grid[src][sx]
				}
			}
		}
	}

	for _, o := range overlays {
		x0 := int(math.Floor(o.Box.X)) - panX
		y0 := int(math.Floor(o.Box.Y)) - panY
		x1 := int(math.Ceil(o.Box.Right())) - panX
		y1 := int(math.Ceil(o.Box.Bottom())) - panY
		for y := max(y0, 0); y < min(max(y1, y0+1), height); y++ {
			for x := max(x0, 0); x < min(max(x1, x0+1), width); x++ {
				layers[y][x] = o.Layer
			}
		}
	}

	if drag != nil {
		drawDragRect(canvas, *drag, panX, panY)
	}

	result := make([]string, height)
	for y, row := range canvas {
		var line strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && layers[y][x] == layers[y][start] {
				continue
			}
			seg := string(row[start:x])
			if style, ok := layerStyles[layers[y][start]]; ok {
				seg = style.Render(seg)
			}
			line.WriteString(seg)
			start = x
		}
		result[y] = line.String()
	}
	return result
}

// drawDragRect outlines a rectangle given in document cells.
func drawDragRect(canvas [][]rune, b Box, panX, panY int) {
	height := len(canvas)
	width := len(canvas[0])
	minX := max(int(b.X)-panX, 0)
	minY := max(int(b.Y)-panY, 0)
	maxX := min(int(b.Right())-panX, width-1)
	maxY := min(int(b.Bottom())-panY, height-1)
	if minX > maxX || minY > maxY {
		return
	}
	for x := minX; x <= maxX; x++ {
		canvas[minY][x] = '─'
		canvas[maxY][x] = '─'
	}
	for y := minY; y <= maxY; y++ {
		canvas[y][minX] = '│'
		canvas[y][maxX] = '│'
	}
	canvas[minY][minX] = '┌'
	canvas[minY][maxX] = '┐'
	canvas[maxY][minX] = '└'
	canvas[maxY][maxX] = '┘'
}

// Lines returns the whole document without overlays, for text dumps.
func (s *termSurface) Lines() []string {
	out := make([]string, len(s.grid))
	for i, row := range s.grid {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}

type termContext struct {
	s *termSurface
}

func (c *termContext) DrawStaffLines(x, y, width, space float64) {
	c0, c1 := c.s.col(x), c.s.col(x+width)
	for k := 0; k < 5; k++ {
		row := c.s.row(y + float64(k)*space)
		for col := c0; col < c1; col++ {
			c.s.setUnder(col, row, '─')
		}
	}
}

func (c *termContext) DrawBarline(x, top, bottom float64) {
	col := c.s.col(x) - 1
	for row := c.s.row(top); row <= c.s.row(bottom); row++ {
		c.s.set(col, row, '│')
	}
}

func (c *termContext) DrawNotehead(b Box, filled bool) {
	r := 'o'
	if filled {
		r = '●'
	}
	c.s.set(c.s.col(b.Center().X), c.s.row(b.Center().Y), r)
}

func (c *termContext) DrawStem(x, y1, y2 float64) {
	col := c.s.col(x)
	r0, r1 := c.s.row(min(y1, y2)), c.s.row(max(y1, y2))
	for row := r0; row <= r1; row++ {
		c.s.setUnder(col, row, '│')
	}
}

func (c *termContext) DrawText(text string, x, y float64) {
	c.s.writeString(text, c.s.col(x), c.s.row(y)-1)
}

func (c *termContext) DrawSpan(b Box, label string) {
	row := c.s.row(b.Center().Y)
	c0, c1 := c.s.col(b.X), c.s.col(b.Right())
	for col := c0; col < c1; col++ {
		c.s.setUnder(col, row, '╌')
	}
	c.s.writeString(label, c0, row)
}
