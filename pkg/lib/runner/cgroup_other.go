//go:build !linux

package runner

import (
	"syscall"
)

type cgroups struct{}

func newCgroups(CgroupOptions) *cgroups { return &cgroups{} }

func (*cgroups) procAttr(string) (*procAttr, error) {
	// New process group to manage children as a unit
	return &procAttr{Raw: &syscall.SysProcAttr{Setpgid: true}}, nil
}

func (*cgroups) kill(string) (bool, error) { return false, nil }

func (*cgroups) cleanup(string) {}
