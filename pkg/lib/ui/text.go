package ui

import (
	"fmt"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/screen"
)

// Headline is the first line of a screen, unstyled.
func Headline(v screen.View) string {
	switch v.State {
	case screen.StateInit, screen.StateWaitingForBroker:
		return "Checking broker"
	case screen.StateExecuting:
		return "Running command"
	case screen.StateSuccess:
		return "Done"
	case screen.StateNotRunningCountdown:
		return "Broker not running"
	case screen.StatePermissionRequest:
		return "Broker permission required"
	case screen.StateGenericFailure:
		return "Something went wrong"
	default:
		return ""
	}
}

// Detail is the body of a screen, unstyled.
func Detail(v screen.View) string {
	switch v.State {
	case screen.StateSuccess:
		return "The command ran with broker privileges."
	case screen.StateNotRunningCountdown:
		return fmt.Sprintf("Opening in %ds", v.Remaining)
	case screen.StatePermissionRequest:
		if v.Denied {
			return "The broker operator denied the request."
		}
		return "Waiting for the broker operator to answer."
	case screen.StateGenericFailure:
		return failureDetail(v)
	default:
		return ""
	}
}

func failureDetail(v screen.View) string {
	switch v.Failure {
	case screen.FailureCommandFailed:
		if v.Result != nil {
			return fmt.Sprintf("The command exited with code %d.", v.Result.ExitCode)
		}
		return "The command failed."
	case screen.FailurePrivilegeUnavailable:
		return "The command could not run with broker privileges."
	default:
		return "The command failed."
	}
}

// Line renders a view as a single log line for non-interactive output.
func Line(v screen.View) string {
	headline := Headline(v)
	if detail := Detail(v); detail != "" {
		return headline + ": " + detail
	}
	return headline
}
