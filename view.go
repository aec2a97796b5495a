package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252"))
	modeStyle    = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpTitle    = lipgloss.NewStyle().Bold(true).Underline(true)
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Width(22)
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.mode == ModeHelp {
		return m.helpView()
	}

	lines := m.surface.Render(m.width, m.viewHeight(), m.panX, m.panY, m.overlays(), m.dragRect())
	lines = append(lines, m.statusLine(), m.messageLine())
	return strings.Join(lines, "\n")
}

// overlays colours the painted selection, the selected annotations and the
// hover suggestion.
func (m model) overlays() []cellOverlay {
	rm := m.tracker.RenderMap()
	var out []cellOverlay
	if s := m.tracker.Suggestion(); s != nil {
		out = append(out, cellOverlay{Box: m.surface.LogicalToScreen(s.Box), Layer: layerSuggested})
	}
	for _, sel := range m.highlight.Painted() {
		if s, ok := rm.Find(sel); ok {
			out = append(out, cellOverlay{Box: m.surface.LogicalToScreen(s.Box), Layer: layerSelected})
		}
	}
	for _, tab := range m.tracker.ModifierSelections() {
		out = append(out, cellOverlay{Box: m.surface.LogicalToScreen(tab.Box), Layer: layerModifier})
	}
	return out
}

func (m model) dragRect() *Box {
	if m.dragStart == nil || m.dragEnd == *m.dragStart {
		return nil
	}
	b := boxFromPoints(*m.dragStart, m.dragEnd)
	return &b
}

func (m model) modeString() string {
	switch m.mode {
	case ModeExportInput:
		return "EXPORT"
	case ModeConfirm:
		return "CONFIRM"
	case ModeHelp:
		return "HELP"
	}
	return "NORMAL"
}

func (m model) statusLine() string {
	left := modeStyle.Render(m.modeString())

	var info string
	sels := m.tracker.Selections()
	switch {
	case m.layoutErr != nil:
		info = "layout: " + m.layoutErr.Error()
	case len(sels) == 1:
		info = sels[0].String()
		if g := m.tracker.GraceIndex(); g >= 0 {
			info += fmt.Sprintf(" grace %d", g+1)
		}
	case len(sels) > 1:
		info = fmt.Sprintf("%d notes, %s", len(sels), durationName(m.tracker.SelectedTicks()))
	default:
		info = "empty score"
	}
	if mods := m.tracker.ModifierSelections(); len(mods) > 0 {
		info += " [" + mods[0].Label + "]"
	}

	page := 0
	if len(sels) > 0 && sels[0].Measure != nil {
		page = sels[0].Measure.Layout.PageIndex
	}
	right := fmt.Sprintf("page %d/%d ", page+1, max(m.engine.PageCount(), 1))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	body := " " + info
	if lipgloss.Width(body) > gap {
		body = string([]rune(body)[:max(gap-1, 0)]) + "…"
	}
	return left + statusStyle.Render(body+strings.Repeat(" ", max(gap-lipgloss.Width(body), 0))+right)
}

func (m model) messageLine() string {
	switch m.mode {
	case ModeExportInput:
		return "Export PNG pages to: " + m.exportDir + "█"
	case ModeConfirm:
		switch m.confirmAction {
		case ConfirmQuit:
			return "Quit and discard edits? (y/n)"
		case ConfirmOverwriteExport:
			return "Overwrite exported pages in " + m.exportDir + "? (y/n)"
		}
	}
	if m.errorMessage != "" {
		return errorStyle.Render(m.errorMessage)
	}
	if m.successMessage != "" {
		return successStyle.Render(m.successMessage)
	}
	return "? help"
}

var helpSections = []struct {
	title   string
	actions []struct{ action, desc string }
}{
	{"Navigation", []struct{ action, desc string }{
		{actMoveLeft, "previous note"},
		{actMoveRight, "next note"},
		{actMoveUp, "staff above"},
		{actMoveDown, "staff below"},
		{actHome, "start of line"},
		{actEnd, "end of line"},
		{actScoreHome, "first note"},
		{actScoreEnd, "last note"},
		{actScrollUp, "scroll up"},
		{actScrollDown, "scroll down"},
	}},
	{"Selection", []struct{ action, desc string }{
		{actGrowLeft, "extend selection left"},
		{actGrowRight, "extend selection right"},
		{actShrinkLeft, "drop first selected note"},
		{actShrinkRight, "drop last selected note"},
		{actCyclePitch, "select next pitch of chord"},
		{actCycleGrace, "select next grace note"},
		{actNextModifier, "next annotation"},
		{actPrevModifier, "previous annotation"},
		{actClearModifiers, "clear annotation selection"},
	}},
	{"Editing", []struct{ action, desc string }{
		{actContract, "split into shorter notes"},
		{actDouble, "absorb the following note"},
		{actToggleRest, "note <-> rest"},
		{actTransposeUp, "up a half step"},
		{actTransposeDown, "down a half step"},
		{actOctaveUp, "up an octave"},
		{actOctaveDown, "down an octave"},
		{actCopy, "copy pitches"},
		{actPaste, "paste pitches"},
		{actUndo, "undo"},
		{actRedo, "redo"},
	}},
	{"Other", []struct{ action, desc string }{
		{actExport, "export PNG pages"},
		{actHelp, "toggle help"},
		{actQuit, "quit"},
	}},
}

func (m model) helpView() string {
	var lines []string
	lines = append(lines, helpTitle.Render("stave"), "")
	for _, sec := range helpSections {
		lines = append(lines, helpTitle.Render(sec.title))
		for _, a := range sec.actions {
			keys := m.keymap.KeysFor(a.action)
			if len(keys) == 0 {
				continue
			}
			lines = append(lines, "  "+helpKeyStyle.Render(strings.Join(keys, " "))+a.desc)
		}
		lines = append(lines, "")
	}
	lines = append(lines, "Mouse: click selects, shift+click extends, drag selects a box, wheel scrolls.")

	start := min(m.helpScroll, max(len(lines)-1, 0))
	end := min(start+m.height-1, len(lines))
	return strings.Join(lines[start:end], "\n") + "\n" + "j/k scroll, esc close"
}
