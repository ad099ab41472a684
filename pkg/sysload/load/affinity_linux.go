//go:build linux

package load

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCPU binds the calling OS thread to one processor. The caller must
// hold runtime.LockOSThread. Indices beyond the CPU count wrap around.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu % runtime.NumCPU())

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}
