// Package apiv1 is the wire contract between the privilege broker and its clients.
//
// Messages are plain Go structs carried by the codec in codec.go; requests
// without arguments use emptypb.Empty.
package apiv1

import "time"

type ProcessState int32

const (
	ProcessState_PROCESS_STATE_UNSPECIFIED ProcessState = 0
	ProcessState_PROCESS_STATE_RUNNING     ProcessState = 1
	ProcessState_PROCESS_STATE_STOPPED     ProcessState = 2
)

type Process struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

func (p *Process) GetCommand() string {
	if p == nil {
		return ""
	}
	return p.Command
}

func (p *Process) GetArgs() []string {
	if p == nil {
		return nil
	}
	return p.Args
}

type ProcessStatus struct {
	State     ProcessState `json:"state"`
	ExitCode  *int32       `json:"exit_code,omitempty"`
	StartTime *time.Time   `json:"start_time,omitempty"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
}

func (s *ProcessStatus) GetState() ProcessState {
	if s == nil {
		return ProcessState_PROCESS_STATE_UNSPECIFIED
	}
	return s.State
}

type PingResponse struct {
	Version    string `json:"version"`
	Privileged bool   `json:"privileged"`
	Uid        int32  `json:"uid"`
}

type PermissionStatus struct {
	Granted bool `json:"granted"`
}

type PermissionRequest struct {
	RequestCode int32 `json:"request_code"`
}

type PermissionResult struct {
	RequestCode int32 `json:"request_code"`
	Granted     bool  `json:"granted"`
}

type SpawnRequest struct {
	Argv []string `json:"argv"`
	// Env replaces the environment when non-nil.
	Env []string `json:"env,omitempty"`
	Dir string   `json:"dir,omitempty"`
}

type SpawnResponse struct {
	ProcessIdentifier string         `json:"process_identifier"`
	Status            *ProcessStatus `json:"status,omitempty"`
}

type GetOutputRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type GetOutputResponse_Type int32

const (
	GetOutputResponse_TYPE_UNSPECIFIED GetOutputResponse_Type = 0
	GetOutputResponse_TYPE_STDOUT      GetOutputResponse_Type = 1
	GetOutputResponse_TYPE_STDERR      GetOutputResponse_Type = 2
)

type GetOutputResponse struct {
	Type GetOutputResponse_Type `json:"type"`
	Data []byte                 `json:"data"`
}

func (r *GetOutputResponse) GetType() GetOutputResponse_Type {
	if r == nil {
		return GetOutputResponse_TYPE_UNSPECIFIED
	}
	return r.Type
}

func (r *GetOutputResponse) GetData() []byte {
	if r == nil {
		return nil
	}
	return r.Data
}

type WaitRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type WaitResponse struct {
	Process *Process       `json:"process,omitempty"`
	Status  *ProcessStatus `json:"status,omitempty"`
}

type StatusRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type StatusResponse struct {
	Process *Process       `json:"process,omitempty"`
	Status  *ProcessStatus `json:"status,omitempty"`
}

type StopRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type StopResponse struct {
	Process *Process       `json:"process,omitempty"`
	Status  *ProcessStatus `json:"status,omitempty"`
}
