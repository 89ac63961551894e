//go:build linux

package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

type cgroups struct {
	opts    CgroupOptions
	enabled bool

	initOnce sync.Once
	initErr  error
}

func newCgroups(opts CgroupOptions) *cgroups {
	// Not running as root: never touch cgroupfs.
	return &cgroups{opts: opts.withDefaults(), enabled: !opts.Disabled && unix.Geteuid() == 0}
}

// init prepares the parent cgroup. Real work happens only once.
func (c *cgroups) init() error {
	c.initOnce.Do(func() {
		c.initErr = c.initRoot()
	})
	return c.initErr
}

func (c *cgroups) initRoot() error {
	if err := os.MkdirAll(c.opts.Root, 0o755); err != nil {
		return err
	}

	available, err := readControllerSet(filepath.Join(c.opts.Root, "cgroup.controllers"))
	if err != nil {
		return err
	}
	enabled, err := readControllerSet(filepath.Join(c.opts.Root, "cgroup.subtree_control"))
	if err != nil {
		return err
	}

	var toAdd []string
	for _, ctrl := range []string{"cpu", "io", "memory"} {
		if available[ctrl] && !enabled[ctrl] {
			toAdd = append(toAdd, "+"+ctrl)
		}
	}
	if len(toAdd) == 0 {
		return nil
	}
	return writeString(filepath.Join(c.opts.Root, "cgroup.subtree_control"), strings.Join(toAdd, " "))
}

func (c *cgroups) procAttr(id string) (*procAttr, error) {
	// New process group to manage children as a unit
	if !c.enabled {
		return &procAttr{Raw: &syscall.SysProcAttr{Setpgid: true}}, nil
	}

	if err := c.init(); err != nil {
		logger.Warn("cgroup root unavailable, spawning unconfined", "err", err)
		return &procAttr{Raw: &syscall.SysProcAttr{Setpgid: true}}, nil
	}

	dir, err := c.setup(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}

	return &procAttr{
		File: f,
		Raw: &syscall.SysProcAttr{
			Setpgid:     true,
			UseCgroupFD: true,
			CgroupFD:    int(f.Fd()),
		},
	}, nil
}

func (c *cgroups) setup(id string) (string, error) {
	dir := filepath.Join(c.opts.Root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	// Only write controller files for enabled controllers.
	enabled, _ := readControllerSet(filepath.Join(c.opts.Root, "cgroup.subtree_control"))
	if enabled["cpu"] {
		if err := writeString(filepath.Join(dir, "cpu.weight"), "100"); err != nil {
			return "", err
		}
	}
	if enabled["io"] {
		if err := writeString(filepath.Join(dir, "io.weight"), "100"); err != nil {
			return "", err
		}
	}
	if enabled["memory"] && c.opts.MemoryHigh > 0 {
		if err := writeString(filepath.Join(dir, "memory.high"), fmt.Sprint(c.opts.MemoryHigh)); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (c *cgroups) kill(id string) (bool, error) {
	if !c.enabled || c.init() != nil {
		return false, nil
	}
	if err := writeString(filepath.Join(c.opts.Root, id, "cgroup.kill"), "1"); err != nil {
		return false, err
	}
	return true, nil
}

func (c *cgroups) cleanup(id string) {
	if !c.enabled {
		return
	}
	_ = os.Remove(filepath.Join(c.opts.Root, id))
}

func readControllerSet(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, f := range strings.Fields(string(data)) {
		// subtree_control may list names with or without the "+" prefix
		set[strings.TrimPrefix(f, "+")] = true
	}
	return set, nil
}

func writeString(path, val string) error {
	return os.WriteFile(path, []byte(val), 0o644)
}
