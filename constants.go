package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeHelp
	ModeExportInput
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmOverwriteExport
)

type ActionType int

const (
	ActionContract ActionType = iota
	ActionDouble
	ActionToggleRest
	ActionTranspose
	ActionPaste
)

func (a ActionType) String() string {
	switch a {
	case ActionContract:
		return "contract duration"
	case ActionDouble:
		return "double duration"
	case ActionToggleRest:
		return "toggle rest"
	case ActionTranspose:
		return "transpose"
	case ActionPaste:
		return "paste pitches"
	}
	return "edit"
}

const (
	wheelStep   = 3
	statusLines = 2
)
