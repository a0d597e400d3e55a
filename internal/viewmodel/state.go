package viewmodel

// State is the integer-coded UI status of the detail screen.
type State int

const (
	StateContent State = iota
	StateProgress
	StateOffline
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateContent:
		return "content"
	case StateProgress:
		return "progress"
	case StateOffline:
		return "offline"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
