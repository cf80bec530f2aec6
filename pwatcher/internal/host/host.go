// Package host probes the resources of the machine the watcher runs on.
package host

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// GiB is one gibibyte in bytes.
const GiB = 1 << 30

// TotalMemory returns the total physical memory in bytes.
func TotalMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, errors.Wrap(err, "failed to query sysinfo")
	}

	return uint64(info.Totalram) * uint64(info.Unit), nil
}

// TotalMemoryGB returns the total physical memory in whole gibibytes, rounded
// down.
func TotalMemoryGB() (int, error) {
	total, err := TotalMemory()
	if err != nil {
		return 0, err
	}

	return int(total / GiB), nil
}
