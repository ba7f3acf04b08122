package types

// WorkerState defines the lifecycle state of a worker
type WorkerState int32

const (
	// WorkerStateCreated worker exists but has not been started
	WorkerStateCreated WorkerState = iota
	// WorkerStateStarted worker goroutine is running
	WorkerStateStarted
	// WorkerStateWaiting worker is blocked acquiring the monitor
	WorkerStateWaiting
	// WorkerStateHolding worker is inside the critical section
	WorkerStateHolding
	// WorkerStateReleased worker gave the monitor back
	WorkerStateReleased
	// WorkerStateFinished worker is done; terminal
	WorkerStateFinished
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateCreated:
		return "Created"
	case WorkerStateStarted:
		return "Started"
	case WorkerStateWaiting:
		return "Waiting"
	case WorkerStateHolding:
		return "Holding"
	case WorkerStateReleased:
		return "Released"
	case WorkerStateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transitions can happen
func (ws WorkerState) IsTerminal() bool {
	return ws == WorkerStateFinished
}
