package main

import (
	"slices"
	"strings"
)

// Action names a command a key can be bound to.
const (
	actMoveLeft       = "move_left"
	actMoveRight      = "move_right"
	actMoveUp         = "move_up"
	actMoveDown       = "move_down"
	actGrowLeft       = "grow_left"
	actGrowRight      = "grow_right"
	actShrinkLeft     = "shrink_left"
	actShrinkRight    = "shrink_right"
	actHome           = "line_home"
	actEnd            = "line_end"
	actScoreHome      = "score_home"
	actScoreEnd       = "score_end"
	actCyclePitch     = "cycle_pitch"
	actCycleGrace     = "cycle_grace"
	actNextModifier   = "next_modifier"
	actPrevModifier   = "prev_modifier"
	actClearModifiers = "clear_modifiers"
	actContract       = "contract"
	actDouble         = "double"
	actToggleRest     = "toggle_rest"
	actTransposeUp    = "transpose_up"
	actTransposeDown  = "transpose_down"
	actOctaveUp       = "octave_up"
	actOctaveDown     = "octave_down"
	actCopy           = "copy"
	actPaste          = "paste"
	actUndo           = "undo"
	actRedo           = "redo"
	actExport         = "export"
	actScrollUp       = "scroll_up"
	actScrollDown     = "scroll_down"
	actHelp           = "help"
	actQuit           = "quit"
)

var knownActions = []string{
	actMoveLeft, actMoveRight, actMoveUp, actMoveDown,
	actGrowLeft, actGrowRight, actShrinkLeft, actShrinkRight,
	actHome, actEnd, actScoreHome, actScoreEnd,
	actCyclePitch, actCycleGrace, actNextModifier, actPrevModifier, actClearModifiers,
	actContract, actDouble, actToggleRest,
	actTransposeUp, actTransposeDown, actOctaveUp, actOctaveDown,
	actCopy, actPaste, actUndo, actRedo, actExport,
	actScrollUp, actScrollDown, actHelp, actQuit,
}

var defaultBindings = map[string]string{
	"left":        actMoveLeft,
	"h":           actMoveLeft,
	"right":       actMoveRight,
	"l":           actMoveRight,
	"up":          actMoveUp,
	"k":           actMoveUp,
	"down":        actMoveDown,
	"j":           actMoveDown,
	"shift+left":  actGrowLeft,
	"H":           actGrowLeft,
	"shift+right": actGrowRight,
	"L":           actGrowRight,
	"ctrl+left":   actShrinkLeft,
	"ctrl+right":  actShrinkRight,
	"home":        actHome,
	"0":           actHome,
	"end":         actEnd,
	"$":           actEnd,
	"g":           actScoreHome,
	"G":           actScoreEnd,
	"p":           actCyclePitch,
	"n":           actCycleGrace,
	"tab":         actNextModifier,
	"shift+tab":   actPrevModifier,
	"esc":         actClearModifiers,
	"-":           actContract,
	"=":           actDouble,
	"r":           actToggleRest,
	"+":           actTransposeUp,
	"_":           actTransposeDown,
	"ctrl+up":     actOctaveUp,
	"ctrl+down":   actOctaveDown,
	"y":           actCopy,
	"v":           actPaste,
	"u":           actUndo,
	"ctrl+r":      actRedo,
	"e":           actExport,
	"pgup":        actScrollUp,
	"pgdown":      actScrollDown,
	"?":           actHelp,
	"q":           actQuit,
	"ctrl+c":      actQuit,
}

// Keymap resolves key strings, as bubbletea reports them, to action names.
type Keymap struct {
	bindings map[string]string
}

// buildKeymap merges user overrides into the defaults. A binding to an
// unknown action is reported once per action name and left out; binding a
// key to "none" removes it.
func buildKeymap(overrides map[string]string) *Keymap {
	k := &Keymap{bindings: make(map[string]string, len(defaultBindings))}
	for key, action := range defaultBindings {
		k.bindings[key] = action
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	warned := make(map[string]bool)
	for _, key := range keys {
		action := strings.ToLower(strings.TrimSpace(overrides[key]))
		if action == "none" {
			delete(k.bindings, key)
			continue
		}
		if !slices.Contains(knownActions, action) {
			if !warned[action] {
				warned[action] = true
				Logger().Warn("ignoring key binding to unknown action", "key", key, "action", action)
			}
			continue
		}
		k.bindings[key] = action
	}
	return k
}

func (k *Keymap) Action(key string) (string, bool) {
	a, ok := k.bindings[key]
	return a, ok
}

// KeysFor lists the keys bound to an action, sorted.
func (k *Keymap) KeysFor(action string) []string {
	var keys []string
	for key, a := range k.bindings {
		if a == action {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}
