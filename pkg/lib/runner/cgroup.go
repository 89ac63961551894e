package runner

import (
	"os"
	"syscall"
)

const (
	DefaultCgroupRoot       = "/sys/fs/cgroup/gestureback"
	DefaultCgroupMemoryHigh = int64(512) * 1024 * 1024
)

// CgroupOptions controls per-process cgroup v2 confinement.
type CgroupOptions struct {
	// Root is the parent cgroup directory. Empty means DefaultCgroupRoot.
	Root string
	// MemoryHigh is written to memory.high in bytes. Zero means DefaultCgroupMemoryHigh,
	// a negative value leaves memory.high untouched.
	MemoryHigh int64
	// Disabled turns confinement off even when running as root.
	Disabled bool
}

func (o CgroupOptions) withDefaults() CgroupOptions {
	if o.Root == "" {
		o.Root = DefaultCgroupRoot
	}
	if o.MemoryHigh == 0 {
		o.MemoryHigh = DefaultCgroupMemoryHigh
	}
	return o
}

// procAttr is the SysProcAttr for a new process plus the cgroup directory
// handle that must be closed once the process has started.
type procAttr struct {
	File *os.File
	Raw  *syscall.SysProcAttr
}
