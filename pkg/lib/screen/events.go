package screen

import (
	"time"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// Event is delivered to Controller.Handle on the UI goroutine.
type Event interface {
	isEvent()
}

// Dispatcher posts events onto the UI goroutine. Both methods are safe to
// call from any goroutine and must not block.
type Dispatcher interface {
	Post(ev Event)
	PostAfter(d time.Duration, ev Event)
}

// BrokerProbed carries the launch-time broker status.
type BrokerProbed struct {
	Status lib.BrokerStatus
}

// BrokerConnected is posted once the broker became reachable while the
// countdown was showing; Status is re-read at that moment.
type BrokerConnected struct {
	Status lib.BrokerStatus
}

// PermissionResult relays a broker permission callback.
type PermissionResult struct {
	RequestCode int
	Granted     bool
}

// GrantRequested is the user asking to (re-)request permission.
type GrantRequested struct{}

// ExecutionFinished carries the executor's result together with the broker
// status observed after it.
type ExecutionFinished struct {
	Result lib.ExecutionResult
	Status lib.BrokerStatus
}

// CountdownTick updates the remaining seconds. Ticks from an abandoned
// countdown carry a stale Gen and are dropped.
type CountdownTick struct {
	Remaining int
	Gen       int
}

// TerminateRequested ends the process once a screen has been shown long enough.
type TerminateRequested struct{}

// ShutdownRequested is the user quitting, or the companion launch having
// been attempted.
type ShutdownRequested struct{}

func (BrokerProbed) isEvent()       {}
func (BrokerConnected) isEvent()    {}
func (PermissionResult) isEvent()   {}
func (GrantRequested) isEvent()     {}
func (ExecutionFinished) isEvent()  {}
func (CountdownTick) isEvent()      {}
func (TerminateRequested) isEvent() {}
func (ShutdownRequested) isEvent()  {}
