package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	// config problems surface on stderr before the alt screen takes over
	SetLogger(newTextLogger(os.Stderr, slog.LevelWarn))
	config := loadConfig()
	closeLog, err := setupLogging(config)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	if len(os.Args) > 1 && os.Args[1] == "export" {
		if err := runExport(config, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "stave:", err)
			os.Exit(1)
		}
		return
	}

	m, err := newModel(config, demoScore())
	if err != nil {
		log.Fatal(err)
	}
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

// setupLogging points the package logger at the configured log file. A TUI
// owns the terminal, so without a log file logging stays silent.
func setupLogging(config *Config) (func(), error) {
	if config.LogFile == "" {
		SetLogger(nil)
		return func() {}, nil
	}
	f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetLogger(newTextLogger(f, config.LogLevel))
	return func() { f.Close() }, nil
}

// runExport lays out the demo score and writes its pages as PNG files.
func runExport(config *Config, args []string) error {
	dir := config.GetSavePath("stave-export")
	if len(args) > 0 {
		dir = args[0]
	}
	theory := newTheory()
	metrics, err := newFontMetrics(config.Layout.Zoom)
	if err != nil {
		return err
	}
	score := demoScore()
	engine := NewLayoutEngine(score, theory, metrics, config.Layout)
	if _, err := engine.Layout(); err != nil {
		return err
	}
	written, err := exportPNG(dir, engine, newEngraver(engine), 2, nil)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d page(s) to %s\n", len(written), dir)
	return nil
}

func newModel(config *Config, score *Score) (model, error) {
	theory := newTheory()
	metrics, err := newFontMetrics(config.Layout.Zoom)
	if err != nil {
		return model{}, err
	}
	engine := NewLayoutEngine(score, theory, metrics, config.Layout)
	highlight := NewHighlighter(config.HighlightDelay)

	m := model{
		score:       score,
		theory:      theory,
		engine:      engine,
		engraver:    newEngraver(engine),
		surface:     newTermSurface(config.Layout),
		tracker:     NewTracker(score, highlight),
		highlight:   highlight,
		editor:      NewEditor(score, theory),
		keymap:      buildKeymap(config.Bindings),
		config:      config,
		scroll:      NewDebouncer[int](config.ScrollDelay),
		exportStale: make(map[int]bool),
		exportDir:   config.GetSavePath("stave-export"),
		mode:        ModeNormal,
	}
	m.relayout()
	return m, nil
}

func (m model) Init() tea.Cmd {
	return m.highlightCmd()
}

// relayout runs a layout pass, redraws the pages it invalidated and
// reconciles the selection against the new render map.
func (m *model) relayout() {
	res, err := m.engine.Layout()
	if err != nil {
		m.layoutErr = err
		Logger().Warn("layout skipped", "err", err)
		return
	}
	m.layoutErr = nil
	for _, p := range res.Dirty {
		m.exportStale[p] = true
	}

	cache := m.engine.Cache()
	m.surface.BeginFrame(m.engine.PageCount())
	elements := m.engraver.Draw(m.surface, cache.NeedsRedraw)
	for _, p := range res.Dirty {
		cache.MarkRendered(p)
	}
	m.tracker.Reconcile(BuildRenderMap(m.score, elements, res.Generation))
}

func (m *model) highlightCmd() tea.Cmd {
	tok, ok := m.highlight.TakeRequest()
	if !ok {
		return nil
	}
	return tea.Tick(m.highlight.Delay(), func(time.Time) tea.Msg {
		return highlightMsg{token: tok}
	})
}

func (m *model) scrollCmd(tok debounceToken[int]) tea.Cmd {
	return tea.Tick(m.scroll.Delay(), func(time.Time) tea.Msg {
		return scrollMsg{token: tok}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		return m, nil

	case highlightMsg:
		if m.highlight.Settle(msg.token, m.tracker.Selectors()) {
			m.ensureVisible()
		}
		return m, m.highlightCmd()

	case scrollMsg:
		outcome, next := m.scroll.Settle(msg.token, m.pendingScroll)
		switch outcome {
		case SettleRetry:
			return m, m.scrollCmd(next)
		case SettleDone:
			m.panY = clamp(m.panY+m.pendingScroll, 0, max(m.surface.Rows()-m.viewHeight(), 0))
			m.pendingScroll = 0
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		m.errorMessage = ""
		m.successMessage = ""
		switch m.mode {
		case ModeHelp:
			return m.handleHelpKey(msg)
		case ModeExportInput:
			return m.handleExportInput(msg)
		case ModeConfirm:
			return m.handleConfirm(msg)
		}
		action, ok := m.keymap.Action(msg.String())
		if !ok {
			return m, nil
		}
		cmd := m.perform(action)
		return m, tea.Batch(cmd, m.highlightCmd())
	}
	return m, nil
}

// perform runs one bound action.
func (m *model) perform(action string) tea.Cmd {
	t := m.tracker
	switch action {
	case actMoveLeft:
		t.MoveSelectionLeft()
	case actMoveRight:
		t.MoveSelectionRight()
	case actMoveUp:
		t.MoveSelectionUp()
	case actMoveDown:
		t.MoveSelectionDown()
	case actGrowLeft:
		t.GrowSelectionLeft()
	case actGrowRight:
		t.GrowSelectionRight()
	case actShrinkLeft:
		t.ShrinkSelectionLeft()
	case actShrinkRight:
		t.ShrinkSelectionRight()
	case actHome:
		t.MoveHome()
	case actEnd:
		t.MoveEnd()
	case actScoreHome:
		t.MoveScoreHome()
	case actScoreEnd:
		t.MoveScoreEnd()
	case actCyclePitch:
		t.CyclePitch()
	case actCycleGrace:
		t.CycleGraceNote()
	case actNextModifier:
		t.AdvanceModifierSelection(1)
	case actPrevModifier:
		t.AdvanceModifierSelection(-1)
	case actClearModifiers:
		t.ClearModifierSelections()
	case actContract:
		m.edit(m.editor.ContractDuration(t.Selectors()))
	case actDouble:
		m.edit(m.editor.DoubleDuration(t.Selectors()))
	case actToggleRest:
		m.edit(m.editor.ToggleRest(t.Selectors()))
	case actTransposeUp:
		m.edit(m.editor.TransposeSelection(t.Selectors(), 1))
	case actTransposeDown:
		m.edit(m.editor.TransposeSelection(t.Selectors(), -1))
	case actOctaveUp:
		m.edit(m.editor.TransposeSelection(t.Selectors(), 12))
	case actOctaveDown:
		m.edit(m.editor.TransposeSelection(t.Selectors(), -12))
	case actCopy:
		if err := copySelections(t.Selections()); err != nil {
			m.errorMessage = fmt.Sprintf("Copy failed: %v", err)
		} else {
			m.successMessage = fmt.Sprintf("Copied %d note(s)", len(t.Selections()))
		}
	case actPaste:
		m.paste()
	case actUndo:
		if a, ok := m.editor.Undo(); ok {
			m.relayout()
			m.successMessage = "Undid " + a.Type.String()
		}
	case actRedo:
		if a, ok := m.editor.Redo(); ok {
			m.relayout()
			m.successMessage = "Redid " + a.Type.String()
		}
	case actExport:
		m.mode = ModeExportInput
	case actScrollUp:
		return m.requestScroll(-m.viewHeight() / 2)
	case actScrollDown:
		return m.requestScroll(m.viewHeight() / 2)
	case actHelp:
		m.mode = ModeHelp
		m.helpScroll = 0
	case actQuit:
		if m.editor.History().CanUndo() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return nil
		}
		return tea.Quit
	}
	return nil
}

func (m *model) edit(err error) {
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.relayout()
}

func (m *model) paste() {
	text, err := readClipboardText()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Paste failed: %v", err)
		return
	}
	pitches, err := parsePitchList(text)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.edit(m.editor.PastePitches(m.tracker.Selectors(), pitches))
}

func (m *model) requestScroll(delta int) tea.Cmd {
	m.pendingScroll += delta
	return m.scrollCmd(m.scroll.Request(m.pendingScroll))
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal || msg.Y >= m.viewHeight() {
		return m, nil
	}
	col, row := msg.X+m.panX, msg.Y+m.panY
	x, y := m.surface.CellCenter(col, row)

	switch msg.Type {
	case tea.MouseLeft:
		if m.dragStart == nil {
			m.dragStart = &point{X: float64(col), Y: float64(row)}
			m.dragEnd = *m.dragStart
			m.tracker.SelectAt(x, y, msg.Shift)
		}
	case tea.MouseMotion:
		if m.dragStart != nil {
			m.dragEnd = point{X: float64(col), Y: float64(row)}
		} else {
			m.tracker.Suggest(x, y)
		}
	case tea.MouseRelease:
		if m.dragStart != nil && m.dragEnd != *m.dragStart {
			cells := boxFromPoints(*m.dragStart, m.dragEnd)
			cells.Width++
			cells.Height++
			m.tracker.SelectBox(m.surface.ScreenToLogical(cells))
		}
		m.dragStart = nil
	case tea.MouseWheelUp:
		return m, m.requestScroll(-wheelStep)
	case tea.MouseWheelDown:
		return m, m.requestScroll(wheelStep)
	}
	return m, m.highlightCmd()
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.mode = ModeNormal
	case "j", "down":
		m.helpScroll++
	case "k", "up":
		m.helpScroll = max(m.helpScroll-1, 0)
	}
	return m, nil
}

func (m model) handleExportInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
	case tea.KeyEnter:
		m.mode = ModeNormal
		if _, err := os.Stat(pagePath(m.exportDir, 0)); err == nil && len(m.exportStale) == m.engine.PageCount() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteExport
			return m, nil
		}
		m.export()
	case tea.KeyBackspace:
		if len(m.exportDir) > 0 {
			m.exportDir = m.exportDir[:len(m.exportDir)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.exportDir += string(msg.Runes)
	}
	return m, nil
}

func (m model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmOverwriteExport:
			m.export()
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *model) export() {
	dir := m.exportDir
	if !filepath.IsAbs(dir) && m.config.SaveDirectory != "" {
		dir = filepath.Join(m.config.SaveDirectory, dir)
	}
	written, err := exportPNG(dir, m.engine, m.engraver, 2, func(p int) bool { return m.exportStale[p] })
	if err != nil {
		if errors.Is(err, ErrNothingToExport) {
			m.errorMessage = "Nothing to export"
		} else {
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
		}
		return
	}
	for _, p := range written {
		delete(m.exportStale, p)
	}
	if err := exportText(filepath.Join(dir, "score.txt"), m.surface); err != nil {
		Logger().Warn("text export failed", "err", err)
	}
	m.successMessage = fmt.Sprintf("Exported %d page(s) to %s", len(written), dir)
}

func (m *model) viewHeight() int {
	return max(m.height-statusLines, 1)
}

// ensureVisible scrolls so the first selected note is on screen.
func (m *model) ensureVisible() {
	sels := m.tracker.Selections()
	if len(sels) == 0 || m.width == 0 {
		return
	}
	anchor := m.surface.LogicalToScreen(Box{X: sels[0].ScrollAnchor.X, Y: sels[0].ScrollAnchor.Y})
	col, row := int(anchor.X), int(anchor.Y)
	const margin = 4
	if row < m.panY+margin {
		m.panY = max(row-margin, 0)
	} else if row >= m.panY+m.viewHeight()-margin {
		m.panY = row - m.viewHeight() + margin + 1
	}
	if col < m.panX {
		m.panX = max(col-margin, 0)
	} else if col >= m.panX+m.width-margin {
		m.panX = col - m.width + margin + 1
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
