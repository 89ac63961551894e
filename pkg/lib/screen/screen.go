// Package screen decides which of the application's screens is shown and
// drives the transitions between them.
package screen

import "github.com/SanjoDeundiak/gestureback/pkg/lib"

// Screen is one of the full-screen views. Exactly one is active at a time.
type Screen int

const (
	Success Screen = iota
	NotRunningCountdown
	PermissionRequest
	GenericFailure
)

func (s Screen) String() string {
	switch s {
	case Success:
		return "Success"
	case NotRunningCountdown:
		return "NotRunningCountdown"
	case PermissionRequest:
		return "PermissionRequest"
	case GenericFailure:
		return "GenericFailure"
	default:
		return "Unknown"
	}
}

// State is the controller state.
type State int

const (
	StateInit State = iota
	StateWaitingForBroker
	StateExecuting
	StateSuccess
	StateNotRunningCountdown
	StatePermissionRequest
	StateGenericFailure
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateWaitingForBroker:
		return "WaitingForBroker"
	case StateExecuting:
		return "Executing"
	case StateSuccess:
		return "Success"
	case StateNotRunningCountdown:
		return "NotRunningCountdown"
	case StatePermissionRequest:
		return "PermissionRequest"
	case StateGenericFailure:
		return "GenericFailure"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// stateOf maps a screen onto the state that shows it.
func stateOf(s Screen) State {
	switch s {
	case Success:
		return StateSuccess
	case NotRunningCountdown:
		return StateNotRunningCountdown
	case PermissionRequest:
		return StatePermissionRequest
	default:
		return StateGenericFailure
	}
}

// FailureReason tells the GenericFailure view apart for the two ways of
// getting there.
type FailureReason int

const (
	FailureNone FailureReason = iota
	// FailureCommandFailed: the broker ran the command and it exited non-zero.
	FailureCommandFailed
	// FailurePrivilegeUnavailable: the command did not run through the broker.
	FailurePrivilegeUnavailable
)

func (r FailureReason) String() string {
	switch r {
	case FailureCommandFailed:
		return "CommandFailed"
	case FailurePrivilegeUnavailable:
		return "PrivilegeUnavailable"
	default:
		return "None"
	}
}

// Select picks the screen for a broker status and the last execution result,
// if any. Broker reachability wins over permission, and permission wins over
// the result. A granted status without a successful result is a failure.
func Select(status lib.BrokerStatus, result *lib.ExecutionResult) Screen {
	switch {
	case !status.Connected:
		return NotRunningCountdown
	case !status.PermissionGranted:
		return PermissionRequest
	case result != nil && result.Succeeded():
		return Success
	default:
		return GenericFailure
	}
}

// Reason explains a GenericFailure for result.
func Reason(result *lib.ExecutionResult) FailureReason {
	if result != nil && result.ExecutedPrivileged && result.ExitCode != 0 {
		return FailureCommandFailed
	}
	return FailurePrivilegeUnavailable
}
