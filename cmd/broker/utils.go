package main

import (
	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

func toProtoProcess(c *lib.Command) *apiv1.Process {
	if c == nil {
		return nil
	}
	return &apiv1.Process{Command: c.Command, Args: c.Args}
}

func toProtoProcessStatus(st *lib.ProcessStatus) *apiv1.ProcessStatus {
	if st == nil {
		return nil
	}
	start := st.StartTime
	ps := &apiv1.ProcessStatus{
		State:     toProtoProcessState(st.State),
		StartTime: &start,
	}
	if st.ExitCode != nil {
		v := int32(*st.ExitCode)
		ps.ExitCode = &v
	}
	if st.EndTime != nil {
		end := *st.EndTime
		ps.EndTime = &end
	}
	return ps
}

func toProtoProcessState(s lib.ProcessState) apiv1.ProcessState {
	switch s {
	case lib.ProcessStateRunning:
		return apiv1.ProcessState_PROCESS_STATE_RUNNING
	case lib.ProcessStateStopped:
		return apiv1.ProcessState_PROCESS_STATE_STOPPED
	default:
		return apiv1.ProcessState_PROCESS_STATE_UNSPECIFIED
	}
}
