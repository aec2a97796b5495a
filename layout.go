package main

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrLayoutInProgress = errors.New("layout pass already in progress")
	ErrInvalidIndex     = errors.New("invalid index")
)

// PageLayout is the printable region of one page in layout coordinates and
// the range of measures placed on it (-1 when empty).
type PageLayout struct {
	Index        int
	Top          float64
	Bottom       float64
	StartMeasure int
	EndMeasure   int
}

type SystemLayout struct {
	Line         int
	Page         int
	StartMeasure int
	EndMeasure   int
	Box          Box
	Hidden       bool
}

type LayoutResult struct {
	Generation int
	Systems    []SystemLayout
	Pages      []PageLayout
	Dirty      []int
}

// placedColumn is one measure index across every staff while it waits for
// its system to be justified.
type placedColumn struct {
	measure   int
	ests      []MeasureEstimate
	width     float64
	natural   float64
	leading   float64
	padding   float64
	span      int
	hidden    bool
	pageBreak bool
}

type systemBuilder struct {
	columns   []placedColumn
	pageBreak bool
}

func (s *systemBuilder) visible() int {
	n := 0
	for _, c := range s.columns {
		if !c.hidden {
			n++
		}
	}
	return n
}

type Engine struct {
	score   *Score
	est     *Estimator
	prefs   LayoutPreferences
	cache   *PageCache
	pages   []*PageLayout
	systems []SystemLayout

	running    bool
	generation int
	page       int
	line       int
	lastLines  map[int]int
}

func NewLayoutEngine(score *Score, theory Theory, metrics GlyphMetrics, prefs LayoutPreferences) *Engine {
	return &Engine{
		score: score,
		est:   newEstimator(score, theory, metrics, prefs),
		prefs: prefs,
		cache: newPageCache(),
	}
}

func (e *Engine) Cache() *PageCache { return e.cache }

func (e *Engine) Generation() int { return e.generation }

func (e *Engine) Preferences() LayoutPreferences { return e.prefs }

func (e *Engine) Systems() []SystemLayout { return e.systems }

func (e *Engine) PageCount() int { return len(e.pages) }

// Page returns the layout record for page i, creating it (and any missing
// pages before it) if a pass has not produced it yet.
func (e *Engine) Page(i int) (*PageLayout, error) {
	if i < 0 {
		return nil, fmt.Errorf("page %d: %w", i, ErrInvalidIndex)
	}
	for len(e.pages) <= i {
		idx := len(e.pages)
		e.pages = append(e.pages, &PageLayout{
			Index:        idx,
			Top:          float64(idx)*e.prefs.PageHeight + e.prefs.TopMargin,
			Bottom:       float64(idx+1)*e.prefs.PageHeight - e.prefs.BottomMargin,
			StartMeasure: -1,
			EndMeasure:   -1,
		})
	}
	return e.pages[i], nil
}

func (e *Engine) MeasureBox(staff, measure int) (Box, error) {
	m, ok := e.score.Measure(staff, measure)
	if !ok {
		return Box{}, fmt.Errorf("measure %d/%d: %w", staff, measure, ErrInvalidIndex)
	}
	return m.Box, nil
}

func (e *Engine) printableLeft() float64  { return e.prefs.LeftMargin }
func (e *Engine) printableRight() float64 { return e.prefs.PageWidth - e.prefs.RightMargin }

// Layout recomputes every measure box, system and page from the current
// score. The result depends only on the score and the preferences.
func (e *Engine) Layout() (*LayoutResult, error) {
	if e.running {
		return nil, ErrLayoutInProgress
	}
	e.running = true
	defer func() { e.running = false }()

	e.generation++
	e.pages = nil
	e.systems = nil
	e.page = 0
	e.line = 0
	e.score.reindex()

	n := e.score.MeasureCount()
	for _, st := range e.score.Staves {
		for _, m := range st.Measures {
			m.Layout = MeasureLayoutState{}
			m.Box = Box{}
		}
	}

	if n > 0 {
		e.run(n)
	}

	dirty := e.updateCache()
	for _, st := range e.score.Staves {
		for _, m := range st.Measures {
			m.Changed = false
		}
	}

	res := &LayoutResult{Generation: e.generation, Systems: slices.Clone(e.systems), Dirty: dirty}
	for _, p := range e.pages {
		res.Pages = append(res.Pages, *p)
	}
	Logger().Debug("layout pass", "generation", e.generation, "measures", n,
		"systems", len(e.systems), "pages", len(e.pages), "dirty", dirty)
	return res, nil
}

func (e *Engine) run(n int) {
	spans, hidden := e.multiMeasureSpans(n)
	priors := make([]MeasureContext, len(e.score.Staves))

	first, _ := e.Page(0)
	y := first.Top
	x := e.printableLeft()
	var sys systemBuilder
	var carry displayFlags

	for mi := 0; mi < n; mi++ {
		column := e.score.Column(mi)
		if hidden[mi] {
			sys.columns = append(sys.columns, placedColumn{measure: mi, hidden: true})
			updatePriors(priors, column)
			continue
		}

		isFirst := sys.visible() == 0
		forceBreak, pageBreak := false, false
		for _, m := range column {
			forceBreak = forceBreak || m.SystemBreak || m.PageBreak
			pageBreak = pageBreak || m.PageBreak
		}

		colCarry := displayFlags{}
		if isFirst {
			colCarry = carry
		}
		col := e.estimateColumn(mi, priors, isFirst, colCarry, spans[mi])
		col.pageBreak = pageBreak

		if !isFirst && (x+col.width > e.printableRight() || forceBreak) {
			y, carry = e.finishSystem(&sys, y, false)
			sys = systemBuilder{}
			x = e.printableLeft()
			col = e.estimateColumn(mi, priors, true, carry, spans[mi])
			col.pageBreak = pageBreak
			carry = displayFlags{}
		} else if isFirst {
			carry = displayFlags{}
		}

		sys.pageBreak = sys.pageBreak || (sys.visible() == 0 && pageBreak && mi > 0)
		sys.columns = append(sys.columns, col)
		x += col.width
		updatePriors(priors, column)
	}

	if len(sys.columns) > 0 {
		e.finishSystem(&sys, y, true)
	}
}

func updatePriors(priors []MeasureContext, column []*Measure) {
	for s, m := range column {
		priors[s] = contextOf(m)
	}
}

func (e *Engine) estimateColumn(mi int, priors []MeasureContext, first bool, carry displayFlags, span int) placedColumn {
	column := e.score.Column(mi)
	col := placedColumn{measure: mi, span: span, ests: make([]MeasureEstimate, len(column))}
	for s, m := range column {
		if span > 1 {
			col.ests[s] = e.est.multiRestEstimate(s, m, priors[s], first, carry)
		} else {
			col.ests[s] = e.est.EstimateMeasure(s, m, priors[s], first, carry)
		}
	}
	col.width, col.leading, col.padding = e.est.justifyColumn(col.ests)
	col.natural = col.width
	return col
}

// multiMeasureSpans finds runs of silent columns. spans holds the run length
// on the first measure of each run and hidden marks the interior.
func (e *Engine) multiMeasureSpans(n int) ([]int, []bool) {
	spans := make([]int, n)
	hidden := make([]bool, n)
	if !e.prefs.MultiMeasureRests {
		return spans, hidden
	}
	for i := 0; i < n; {
		if !e.silentColumn(i) {
			i++
			continue
		}
		j := i + 1
		for j < n && e.silentColumn(j) && !e.breaksRun(j) {
			j++
		}
		if j-i >= 2 {
			spans[i] = j - i
			for k := i + 1; k < j; k++ {
				hidden[k] = true
			}
		}
		i = j
	}
	return spans, hidden
}

func (e *Engine) silentColumn(mi int) bool {
	for _, m := range e.score.Column(mi) {
		if !m.Silent() || m.ForceDisplay {
			return false
		}
	}
	return true
}

// breaksRun reports whether measure mi cannot continue a multi-measure rest
// started before it.
func (e *Engine) breaksRun(mi int) bool {
	for _, st := range e.score.Staves {
		m, prev := st.Measures[mi], st.Measures[mi-1]
		if m.SystemBreak || m.PageBreak {
			return true
		}
		if m.Clef != prev.Clef || m.Key != prev.Key || m.Time != prev.Time || m.Tempo != prev.Tempo {
			return true
		}
	}
	return false
}

// waterFill widens the narrowest columns first until the total reaches
// target. Columns already wider than the final level keep their width.
func waterFill(widths []float64, target float64) []float64 {
	out := slices.Clone(widths)
	total := 0.0
	for _, w := range widths {
		total += w
	}
	if len(widths) == 0 || total >= target {
		return out
	}
	sorted := slices.Clone(widths)
	slices.Sort(sorted)
	slices.Reverse(sorted)
	rest := target
	level := 0.0
	for i, w := range sorted {
		level = rest / float64(len(sorted)-i)
		if w <= level {
			break
		}
		rest -= w
	}
	for i, w := range out {
		out[i] = max(w, level)
	}
	return out
}

// finishSystem justifies the pending system, moves it to the next page when
// its lowest point would cross the page bottom, and assigns measure boxes.
// It returns the y where the next system starts and any display obligation
// a hidden system hands on.
func (e *Engine) finishSystem(sys *systemBuilder, y float64, last bool) (float64, displayFlags) {
	staves := len(e.score.Staves)
	line := e.line
	e.line++

	// horizontal justification
	var widths []float64
	for _, c := range sys.columns {
		if !c.hidden {
			widths = append(widths, c.width)
		}
	}
	if !last || e.prefs.StretchLastSystem {
		widths = waterFill(widths, e.printableRight()-e.printableLeft())
	}
	vi := 0
	for i := range sys.columns {
		if sys.columns[i].hidden {
			continue
		}
		sys.columns[i].width = widths[vi]
		vi++
	}

	// vertical justification: one baseline per staff across the system
	above := make([]float64, staves)
	below := make([]float64, staves)
	for _, c := range sys.columns {
		for s, est := range c.ests {
			above[s] = min(above[s], est.AboveBaseline)
			below[s] = max(below[s], est.BelowBaseline)
		}
	}
	staffY := make([]float64, staves)
	cur := y
	for s := 0; s < staves; s++ {
		staffY[s] = cur - above[s]
		cur = staffY[s] + below[s]
		if s < staves-1 {
			cur += e.prefs.StaffGap
		}
	}

	silent := true
	var obligations displayFlags
	for _, c := range sys.columns {
		if c.hidden {
			continue
		}
		for s, m := range e.score.Column(c.measure) {
			silent = silent && m.Silent()
			d := c.ests[s].Display
			obligations.Key = obligations.Key || d.Key
			obligations.Time = obligations.Time || d.Time
			obligations.Tempo = obligations.Tempo || (d.Tempo && m.Tempo.BPM > 0)
		}
	}
	hideSystem := e.prefs.HideEmptySystems && silent

	page := e.page
	top, height := y, cur-y
	if !hideSystem {
		pl, _ := e.Page(page)
		if sys.pageBreak && top > pl.Top {
			page++
		}
		for {
			pl, _ = e.Page(page)
			top = max(top, pl.Top)
			if top+height <= pl.Bottom || top <= pl.Top {
				break
			}
			page++
		}
		if top+height > pl.Bottom {
			Logger().Warn("system taller than page", "line", line, "page", page, "height", height)
		}
	}
	shift := top - y

	x := e.printableLeft()
	sl := SystemLayout{Line: line, Page: page, StartMeasure: sys.columns[0].measure,
		EndMeasure: sys.columns[len(sys.columns)-1].measure, Hidden: hideSystem}
	for ci, c := range sys.columns {
		for s, m := range e.score.Column(c.measure) {
			ls := &m.Layout
			ls.SystemIndex = ci
			ls.LineIndex = line
			ls.PageIndex = page
			ls.Row = s
			ls.StaffY = staffY[s] + shift
			if c.hidden {
				ls.MultiMeasureHidden = true
				m.Box = Box{X: x, Y: ls.StaffY}
				continue
			}
			est := c.ests[s]
			ls.ForceClef = est.ForceClef
			ls.ForceKey = est.Display.Key
			ls.ForceTime = est.Display.Time
			ls.ForceTempo = est.Display.Tempo && m.Tempo.BPM > 0
			ls.StartPadding = c.leading
			ls.Padding = c.padding + (c.width - c.natural)
			ls.MultiMeasureRest = c.span
			ls.AboveBaseline = est.AboveBaseline
			ls.BelowBaseline = est.BelowBaseline
			m.Box = Box{X: x, Y: ls.StaffY + est.AboveBaseline, Width: c.width, Height: est.Height()}
			if hideSystem {
				ls.HiddenEmpty = true
				m.Box.Y = y
				m.Box.Height = 0
			}
		}
		if !c.hidden {
			x += c.width
		}
	}

	pl, _ := e.Page(page)
	if pl.StartMeasure < 0 {
		pl.StartMeasure = sl.StartMeasure
	}
	pl.EndMeasure = sl.EndMeasure

	if hideSystem {
		sl.Box = Box{X: e.printableLeft(), Y: y, Width: x - e.printableLeft()}
		e.systems = append(e.systems, sl)
		return y, obligations
	}

	sl.Box = Box{X: e.printableLeft(), Y: top, Width: x - e.printableLeft(), Height: height}
	e.systems = append(e.systems, sl)
	e.page = page
	return top + height + e.prefs.SystemGap, displayFlags{}
}

// updateCache compares this pass's page ranges against the cache and
// returns the pages that must be redrawn.
func (e *Engine) updateCache() []int {
	var dirty []int
	mark := func(p int) {
		if p >= 0 && p < len(e.pages) && !slices.Contains(dirty, p) {
			dirty = append(dirty, p)
		}
	}

	for i, p := range e.pages {
		if e.cache.Update(i, p.StartMeasure, p.EndMeasure) {
			mark(i)
		}
	}
	e.cache.Truncate(len(e.pages))

	lines := make(map[int]int, len(e.systems))
	for _, sl := range e.systems {
		lines[sl.Line] = sl.Page
		if prev, ok := e.lastLines[sl.Line]; ok && prev != sl.Page {
			e.cache.Invalidate(prev)
			e.cache.Invalidate(sl.Page)
			mark(prev)
			mark(sl.Page)
		}
	}
	e.lastLines = lines

	for _, st := range e.score.Staves {
		for _, m := range st.Measures {
			if m.Changed {
				e.cache.Invalidate(m.Layout.PageIndex)
				mark(m.Layout.PageIndex)
			}
		}
	}
	for i := range e.pages {
		if e.cache.NeedsRedraw(i) {
			mark(i)
		}
	}
	slices.Sort(dirty)
	return dirty
}
