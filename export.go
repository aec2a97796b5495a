package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"slices"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var ErrNothingToExport = errors.New("nothing to export")

// pngSurface draws each page into its own image. Layout units map to
// pixels through scale.
type pngSurface struct {
	prefs    LayoutPreferences
	scale    float64
	face     font.Face
	contexts map[int]*gg.Context
}

func newPNGSurface(prefs LayoutPreferences, scale float64) (*pngSurface, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    textFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &pngSurface{prefs: prefs, scale: scale, face: face, contexts: make(map[int]*gg.Context)}, nil
}

func (s *pngSurface) ContextFor(page int) DrawContext {
	if page < 0 {
		return nil
	}
	dc, ok := s.contexts[page]
	if !ok {
		dc = gg.NewContext(int(s.prefs.PageWidth*s.scale), int(s.prefs.PageHeight*s.scale))
		dc.SetColor(color.White)
		dc.Clear()
		dc.SetColor(color.Black)
		dc.SetFontFace(s.face)
		s.contexts[page] = dc
	}
	return &pngContext{dc: dc, scale: s.scale, top: float64(page) * s.prefs.PageHeight}
}

func (s *pngSurface) LogicalToScreen(b Box) Box {
	return Box{X: b.X * s.scale, Y: b.Y * s.scale, Width: b.Width * s.scale, Height: b.Height * s.scale}
}

func (s *pngSurface) ScreenToLogical(b Box) Box {
	return Box{X: b.X / s.scale, Y: b.Y / s.scale, Width: b.Width / s.scale, Height: b.Height / s.scale}
}

// Pages lists the pages drawn so far.
func (s *pngSurface) Pages() []int {
	var pages []int
	for p := range s.contexts {
		pages = append(pages, p)
	}
	return pages
}

func pagePath(dir string, page int) string {
	return filepath.Join(dir, fmt.Sprintf("page-%03d.png", page+1))
}

// exportPNG writes one PNG per page into dir. Only pages for which stale
// reports true, or whose file is missing, are drawn and written. It
// returns the pages written.
func exportPNG(dir string, engine *Engine, engraver *Engraver, scale float64, stale func(page int) bool) ([]int, error) {
	if engine.PageCount() == 0 {
		return nil, ErrNothingToExport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	surface, err := newPNGSurface(engine.Preferences(), scale)
	if err != nil {
		return nil, err
	}

	redraw := func(page int) bool {
		if stale == nil || stale(page) {
			return true
		}
		_, err := os.Stat(pagePath(dir, page))
		return err != nil
	}
	engraver.Draw(surface, redraw)

	pages := surface.Pages()
	slices.Sort(pages)
	var written []int
	for _, page := range pages {
		if err := surface.contexts[page].SavePNG(pagePath(dir, page)); err != nil {
			return written, fmt.Errorf("page %d: %w", page+1, err)
		}
		written = append(written, page)
	}
	Logger().Info("exported pages", "dir", dir, "written", len(written), "pages", engine.PageCount())
	return written, nil
}

// exportText writes the terminal rendering of the whole score to a file.
func exportText(filename string, surface *termSurface) error {
	if surface.Rows() == 0 {
		return ErrNothingToExport
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range surface.Lines() {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

type pngContext struct {
	dc    *gg.Context
	scale float64
	top   float64
}

func (c *pngContext) pt(x, y float64) (float64, float64) {
	return x * c.scale, (y - c.top) * c.scale
}

func (c *pngContext) DrawStaffLines(x, y, width, space float64) {
	c.dc.SetLineWidth(1.0)
	for k := 0; k < 5; k++ {
		x0, y0 := c.pt(x, y+float64(k)*space)
		c.dc.DrawLine(x0, y0, x0+width*c.scale, y0)
	}
	c.dc.Stroke()
}

func (c *pngContext) DrawBarline(x, top, bottom float64) {
	x0, y0 := c.pt(x, top)
	_, y1 := c.pt(x, bottom)
	c.dc.SetLineWidth(1.0)
	c.dc.DrawLine(x0, y0, x0, y1)
	c.dc.Stroke()
}

func (c *pngContext) DrawNotehead(b Box, filled bool) {
	cx, cy := c.pt(b.Center().X, b.Center().Y)
	c.dc.DrawEllipse(cx, cy, b.Width*c.scale/2, b.Height*c.scale/2.4)
	if filled {
		c.dc.Fill()
		return
	}
	c.dc.SetLineWidth(1.2)
	c.dc.Stroke()
}

func (c *pngContext) DrawStem(x, y1, y2 float64) {
	x0, py1 := c.pt(x, y1)
	_, py2 := c.pt(x, y2)
	c.dc.SetLineWidth(1.2)
	c.dc.DrawLine(x0, py1, x0, py2)
	c.dc.Stroke()
}

func (c *pngContext) DrawText(text string, x, y float64) {
	px, py := c.pt(x, y)
	c.dc.DrawString(text, px, py)
}

func (c *pngContext) DrawSpan(b Box, label string) {
	x0, y0 := c.pt(b.X, b.Center().Y)
	c.dc.SetLineWidth(1.0)
	c.dc.SetDash(3, 2)
	c.dc.DrawLine(x0, y0, x0+b.Width*c.scale, y0)
	c.dc.Stroke()
	c.dc.SetDash()
	c.dc.DrawStringAnchored(label, x0, y0, 0, -0.2)
}
