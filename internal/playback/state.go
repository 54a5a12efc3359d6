package playback

// State is the lifecycle state of a playback session.
type State int

const (
	// Idle means no session has been started yet.
	Idle State = iota
	// Running means the worker is emitting keystrokes.
	Running
	// Paused means the worker is parked before its next character.
	Paused
	// Cancelled means the last session was stopped before the end.
	Cancelled
	// Completed means the last session typed the whole text.
	Completed
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Active reports whether a session in state s still owns the controller.
func (s State) Active() bool {
	return s == Running || s == Paused
}

// Terminal reports whether s ends a session.
func (s State) Terminal() bool {
	return s == Cancelled || s == Completed
}
