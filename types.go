package main

// model is the bubbletea model. All score mutation happens in Update on the
// program's goroutine.
type model struct {
	width  int
	height int
	panX   int
	panY   int

	score     *Score
	theory    Theory
	engine    *Engine
	engraver  *Engraver
	surface   *termSurface
	tracker   *Tracker
	highlight *Highlighter
	editor    *Editor
	keymap    *Keymap
	config    *Config

	scroll        *Debouncer[int]
	pendingScroll int

	// pages changed since the last PNG export
	exportStale map[int]bool

	mode          Mode
	confirmAction ConfirmAction
	helpScroll    int
	exportDir     string
	dragStart     *point
	dragEnd       point
	layoutErr     error

	errorMessage   string
	successMessage string
}

// highlightMsg delivers a highlight request back after its delay.
type highlightMsg struct {
	token debounceToken[int]
}

// scrollMsg delivers a pending wheel scroll back after its delay.
type scrollMsg struct {
	token debounceToken[int]
}
