package record

// WorkStatus is the execution-outcome state of a task or a single run.
// A task carries the status of its most recent run; a run carries its
// own outcome.
type WorkStatus string

const (
	// StatusNone means the task has never run.
	StatusNone WorkStatus = "none"
	// StatusInProcessed means a run is currently executing.
	StatusInProcessed WorkStatus = "in_processed"
	// StatusSuccessful, StatusFailed and StatusStopped are the terminal
	// outcomes of a finished run.
	StatusSuccessful WorkStatus = "successful"
	StatusFailed     WorkStatus = "failed"
	StatusStopped    WorkStatus = "stopped"
)

// Known reports whether s is one of the five declared states. Anything
// else came from a newer or misbehaving server and is rendered as an
// unknown widget rather than rejected.
func (s WorkStatus) Known() bool {
	switch s {
	case StatusNone, StatusInProcessed, StatusSuccessful, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// IsTerminal reports whether s is a finished-run outcome. Once a fixed
// run identity reaches a terminal status no further transition is
// expected and polling for it may stop.
func (s WorkStatus) IsTerminal() bool {
	switch s {
	case StatusSuccessful, StatusFailed, StatusStopped:
		return true
	}
	return false
}
