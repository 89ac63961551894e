package screen

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// Executor runs the command once.
type Executor interface {
	Execute(ctx context.Context, command string) lib.ExecutionResult
}

// Launcher brings up the broker's companion application.
type Launcher interface {
	Launch(ctx context.Context) error
}

// Terminator ends the process. It does not return in production.
type Terminator interface {
	Terminate()
}

// Timing holds the screen durations.
type Timing struct {
	SuccessDelay      time.Duration
	FailureDelay      time.Duration
	CountdownTicks    int
	CountdownInterval time.Duration
}

// DefaultTiming matches the shipped configuration.
var DefaultTiming = Timing{
	SuccessDelay:      1200 * time.Millisecond,
	FailureDelay:      2 * time.Second,
	CountdownTicks:    2,
	CountdownInterval: time.Second,
}

type Options struct {
	Command     string
	RequestCode int
	Timing      Timing

	Broker     lib.PrivilegedExec
	Executor   Executor
	Launcher   Launcher
	Terminator Terminator
	Dispatcher Dispatcher
	Logger     *log.Logger
}

// View is what a renderer needs to draw the current state.
type View struct {
	State State
	// Screen is meaningful in the four screen states only.
	Screen    Screen
	Remaining int
	Result    *lib.ExecutionResult
	Failure   FailureReason
	// Denied is set when the broker refused the last permission request.
	Denied bool
}

// Controller is the screen state machine. Handle and Start must be called
// from the UI goroutine only; other goroutines reach it through the
// Dispatcher.
type Controller struct {
	opts   Options
	logger *log.Logger
	ctx    context.Context

	state     State
	screen    Screen
	remaining int
	result    *lib.ExecutionResult
	failure   FailureReason
	denied    bool

	executing      bool
	launching      bool
	countdownGen   int
	waitingConnect bool
	removeListener func()
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming
	}
	return &Controller{
		opts:   opts,
		logger: logger.WithPrefix("screen"),
		ctx:    context.Background(),
		state:  StateInit,
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	return View{
		State:     c.state,
		Screen:    c.screen,
		Remaining: c.remaining,
		Result:    c.result,
		Failure:   c.failure,
		Denied:    c.denied,
	}
}

// Start leaves Init and probes the broker off the UI goroutine. Calls after
// the first are ignored.
func (c *Controller) Start(ctx context.Context) {
	if c.state != StateInit {
		return
	}
	c.ctx = ctx
	c.state = StateWaitingForBroker
	c.logger.Info("app started, checking broker status")

	d := c.opts.Dispatcher
	requestCode := c.opts.RequestCode
	c.removeListener = c.opts.Broker.OnPermissionResult(func(code int, granted bool) {
		if code == requestCode {
			d.Post(PermissionResult{RequestCode: code, Granted: granted})
		}
	})

	broker := c.opts.Broker
	go func() {
		d.Post(BrokerProbed{Status: lib.LiveStatus(ctx, broker)})
	}()
}

// Handle applies one event.
func (c *Controller) Handle(ev Event) {
	if c.state == StateTerminated {
		return
	}
	switch ev := ev.(type) {
	case BrokerProbed:
		if c.state == StateWaitingForBroker {
			c.route(ev.Status)
		}
	case BrokerConnected:
		c.onBrokerConnected(ev.Status)
	case PermissionResult:
		c.onPermissionResult(ev)
	case GrantRequested:
		if c.state == StatePermissionRequest {
			c.logger.Info("requesting broker permission", "request_code", c.opts.RequestCode)
			c.opts.Broker.RequestPermission(c.opts.RequestCode)
		}
	case ExecutionFinished:
		c.onExecutionFinished(ev)
	case CountdownTick:
		c.onCountdownTick(ev)
	case TerminateRequested, ShutdownRequested:
		c.terminate()
	}
}

// route handles a fresh status while nothing has been executed yet.
func (c *Controller) route(status lib.BrokerStatus) {
	switch {
	case status.Connected && status.PermissionGranted:
		c.logger.Info("broker connected with permission")
		c.beginExecution()
	case status.Connected:
		c.logger.Info("broker connected without permission")
		c.showPermissionRequest()
	default:
		c.logger.Warn("broker not connected, waiting for connection")
		c.showCountdown()
		c.awaitConnection()
	}
}

// onBrokerConnected reroutes a launch-time countdown. A countdown entered
// after an execution always ends with the companion launch.
func (c *Controller) onBrokerConnected(status lib.BrokerStatus) {
	c.waitingConnect = false
	if c.state != StateNotRunningCountdown || c.launching || c.result != nil {
		return
	}
	if !status.Connected {
		return
	}
	c.logger.Info("broker connected")
	c.route(status)
}

func (c *Controller) onPermissionResult(ev PermissionResult) {
	if c.state != StatePermissionRequest {
		c.logger.Debug("ignoring permission result", "state", c.state, "granted", ev.Granted)
		return
	}
	if ev.Granted {
		c.logger.Info("broker permission granted")
		c.beginExecution()
		return
	}
	c.logger.Warn("broker permission denied")
	c.denied = true
	c.show(PermissionRequest)
}

func (c *Controller) beginExecution() {
	if c.executing {
		return
	}
	c.executing = true
	c.countdownGen++
	c.state = StateExecuting
	c.denied = false

	ctx := c.ctx
	command := c.opts.Command
	broker := c.opts.Broker
	executor := c.opts.Executor
	d := c.opts.Dispatcher
	go func() {
		result := executor.Execute(ctx, command)
		status := lib.BrokerStatus{Connected: true, PermissionGranted: true}
		if !result.Succeeded() {
			status = lib.LiveStatus(ctx, broker)
		}
		d.Post(ExecutionFinished{Result: result, Status: status})
	}()
}

func (c *Controller) onExecutionFinished(ev ExecutionFinished) {
	if c.state != StateExecuting {
		return
	}
	c.executing = false
	result := ev.Result
	c.result = &result
	if result.ExecutedPrivileged {
		c.logger.Info("execution method: broker", "exit_code", result.ExitCode)
	} else {
		c.logger.Warn("execution method: local process", "exit_code", result.ExitCode)
	}

	switch Select(ev.Status, c.result) {
	case Success:
		c.logger.Info("showing success screen")
		c.show(Success)
		c.opts.Dispatcher.PostAfter(c.opts.Timing.SuccessDelay, TerminateRequested{})
	case NotRunningCountdown:
		c.showCountdown()
	case PermissionRequest:
		c.logger.Warn("broker permission missing after execution")
		c.show(PermissionRequest)
	case GenericFailure:
		c.failure = Reason(c.result)
		c.logger.Error("command failed", "reason", c.failure, "exit_code", result.ExitCode)
		c.show(GenericFailure)
		c.opts.Dispatcher.PostAfter(c.opts.Timing.FailureDelay, TerminateRequested{})
	}
}

func (c *Controller) showPermissionRequest() {
	c.logger.Warn("broker permission missing, requesting")
	c.show(PermissionRequest)
	c.opts.Broker.RequestPermission(c.opts.RequestCode)
}

func (c *Controller) showCountdown() {
	c.show(NotRunningCountdown)
	c.countdownGen++
	c.remaining = c.opts.Timing.CountdownTicks
	c.opts.Dispatcher.PostAfter(c.opts.Timing.CountdownInterval, CountdownTick{Remaining: c.remaining - 1, Gen: c.countdownGen})
}

// awaitConnection registers the one-shot "broker connected" listener. Only
// the launch-time route arms it.
func (c *Controller) awaitConnection() {
	if c.waitingConnect || c.result != nil {
		return
	}
	c.waitingConnect = true
	ctx := c.ctx
	broker := c.opts.Broker
	d := c.opts.Dispatcher
	broker.OnConnected(func() {
		d.Post(BrokerConnected{Status: lib.LiveStatus(ctx, broker)})
	})
}

func (c *Controller) onCountdownTick(ev CountdownTick) {
	if c.state != StateNotRunningCountdown || ev.Gen != c.countdownGen {
		return
	}
	if ev.Remaining > 0 {
		c.remaining = ev.Remaining
		c.opts.Dispatcher.PostAfter(c.opts.Timing.CountdownInterval, CountdownTick{Remaining: ev.Remaining - 1, Gen: ev.Gen})
		return
	}

	// The last shown value stays on screen while the companion launches.
	c.countdownGen++
	c.launching = true
	c.logger.Info("launching broker companion")
	ctx := c.ctx
	launcher := c.opts.Launcher
	d := c.opts.Dispatcher
	go func() {
		if launcher != nil {
			if err := launcher.Launch(ctx); err != nil {
				c.logger.Error("failed to launch broker companion", "err", err)
			}
		}
		d.Post(ShutdownRequested{})
	}()
}

func (c *Controller) show(s Screen) {
	c.screen = s
	c.state = stateOf(s)
}

func (c *Controller) terminate() {
	c.logger.Info("terminating", "state", c.state)
	c.state = StateTerminated
	if c.removeListener != nil {
		c.removeListener()
		c.removeListener = nil
	}
	if c.opts.Terminator != nil {
		c.opts.Terminator.Terminate()
	}
}
