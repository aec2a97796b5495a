package main

import (
	"slices"
	"time"
)

// Highlighter decouples repainting the selection from mutating it. Every
// selection change schedules a request keyed by the selection count; the
// repaint happens once the count has held still for the delay.
type Highlighter struct {
	debounce *Debouncer[int]
	outbox   *debounceToken[int]
	painted  []Selector
	paints   int
}

func NewHighlighter(delay time.Duration) *Highlighter {
	return &Highlighter{debounce: NewDebouncer[int](delay)}
}

func (h *Highlighter) Delay() time.Duration { return h.debounce.Delay() }

// Schedule records a highlight request for the given selection count.
func (h *Highlighter) Schedule(count int) {
	tok := h.debounce.Request(count)
	h.outbox = &tok
}

// TakeRequest hands the newest unscheduled token to the caller, who
// delivers it back to Settle after Delay.
func (h *Highlighter) TakeRequest() (debounceToken[int], bool) {
	if h.outbox == nil {
		return debounceToken[int]{}, false
	}
	tok := *h.outbox
	h.outbox = nil
	return tok, true
}

// Settle resolves a delivered token. It reports whether the highlight was
// repainted with current.
func (h *Highlighter) Settle(tok debounceToken[int], current []Selector) bool {
	outcome, next := h.debounce.Settle(tok, len(current))
	switch outcome {
	case SettleRetry:
		h.outbox = &next
		return false
	case SettleDone:
		h.painted = slices.Clone(current)
		h.paints++
		return true
	}
	return false
}

// Painted is the selection as of the last repaint.
func (h *Highlighter) Painted() []Selector { return h.painted }

func (h *Highlighter) Paints() int { return h.paints }

// IsPainted reports whether sel is part of the painted highlight.
func (h *Highlighter) IsPainted(sel Selector) bool {
	return slices.ContainsFunc(h.painted, func(p Selector) bool { return p.SameNote(sel) })
}
