package app

// State is the app-level input mode.
type State int

const (
	StateChat    State = iota // keys go to the input
	StatePicker               // theme picker is open
	StatePalette              // command palette is open
)

func (s State) String() string {
	switch s {
	case StateChat:
		return "chat"
	case StatePicker:
		return "picker"
	case StatePalette:
		return "palette"
	default:
		return "unknown"
	}
}
