// Package system derives resource-aware defaults from the host.
package system

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const workerMemoryBytes = 2 << 30

// DefaultWorkers sizes cross-video parallelism: one pipeline instance per two
// logical cores, additionally capped so each worker has roughly 2 GiB of
// available memory for transcoding buffers. Never below 1.
func DefaultWorkers() int {
	workers := 1
	if counts, err := cpu.Counts(true); err == nil && counts > 1 {
		workers = counts / 2
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		byMem := int(vm.Available / workerMemoryBytes)
		if byMem > 0 && byMem < workers {
			workers = byMem
		}
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
