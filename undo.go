package main

// measureSnapshot is an explicit copy of one measure's content.
type measureSnapshot struct {
	Staff   int
	Measure int
	Content *Measure
}

type Action struct {
	Type   ActionType
	Before []measureSnapshot
	After  []measureSnapshot
}

// History holds the undo and redo stacks of one score.
type History struct {
	undoStack []Action
	redoStack []Action
}

func (h *History) record(a Action) {
	h.undoStack = append(h.undoStack, a)
	h.redoStack = h.redoStack[:0]
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

func (h *History) Undo(score *Score) (Action, bool) {
	if len(h.undoStack) == 0 {
		return Action{}, false
	}
	lastIndex := len(h.undoStack) - 1
	action := h.undoStack[lastIndex]
	h.undoStack = h.undoStack[:lastIndex]

	restoreSnapshots(score, action.Before)
	h.redoStack = append(h.redoStack, action)
	return action, true
}

func (h *History) Redo(score *Score) (Action, bool) {
	if len(h.redoStack) == 0 {
		return Action{}, false
	}
	lastIndex := len(h.redoStack) - 1
	action := h.redoStack[lastIndex]
	h.redoStack = h.redoStack[:lastIndex]

	restoreSnapshots(score, action.After)
	h.undoStack = append(h.undoStack, action)
	return action, true
}

// restoreSnapshots swaps copies of the snapshots back into the score and
// marks them changed so their pages are redrawn.
func restoreSnapshots(score *Score, snaps []measureSnapshot) {
	for _, s := range snaps {
		if _, ok := score.Measure(s.Staff, s.Measure); !ok {
			continue
		}
		m := s.Content.Clone()
		m.Index = s.Measure
		m.Changed = true
		score.Staves[s.Staff].Measures[s.Measure] = m
	}
}

func snapshot(score *Score, keys []selectorKey) []measureSnapshot {
	var out []measureSnapshot
	for _, k := range keys {
		m, ok := score.Measure(k.staff, k.measure)
		if !ok {
			continue
		}
		out = append(out, measureSnapshot{Staff: k.staff, Measure: k.measure, Content: m.Clone()})
	}
	return out
}
