package utils

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcStats is a point-in-time memory snapshot emitted by the capture
// stats ticker.
type ProcStats struct {
	RSSMB      float64 // process resident set size
	HeapMB     float64 // Go heap in use
	SysUsedPct float64 // system memory pressure
}

// ReadProcStats samples process and system memory. Sampling failures
// degrade to zero fields rather than erroring; stats are auxiliary.
func ReadProcStats() ProcStats {
	var st ProcStats

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	st.HeapMB = float64(ms.HeapAlloc) / (1 << 20)

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			st.RSSMB = float64(mi.RSS) / (1 << 20)
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.SysUsedPct = vm.UsedPercent
	}
	return st
}
