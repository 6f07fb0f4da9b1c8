package loader

// State is the lifecycle stage of the search index.
type State int

const (
	StateNotStarted State = iota
	StateLoading
	StateReady
	StateFailed
	// StateClosed follows Close on a loader that was not loading.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the load has finished, one way or another.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed || s == StateClosed
}

// ChangeListener receives state transitions. err is non-nil only for
// StateFailed.
type ChangeListener func(state State, err error)
