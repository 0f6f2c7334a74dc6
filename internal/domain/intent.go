package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentListRecipes
	IntentCook // payload: list number or recipe id
	IntentAdvance
	IntentRetreat
	IntentGoToStep // payload: 1-based step number
	IntentClose
	IntentShow
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentListRecipes:
		return "list_recipes"
	case IntentCook:
		return "cook"
	case IntentAdvance:
		return "advance"
	case IntentRetreat:
		return "retreat"
	case IntentGoToStep:
		return "goto_step"
	case IntentClose:
		return "close"
	case IntentShow:
		return "show"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}
