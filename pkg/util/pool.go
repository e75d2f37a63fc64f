package util

import "runtime"

// GetOptimalPoolSize returns the worker count for the extraction pool.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Extraction jobs mix file reads with lexing, so 2× cores keeps workers busy
// while some block on I/O. The floor of 4 preserves parallelism on small
// machines; the cap of 32 bounds open-file pressure on large ones.
func GetOptimalPoolSize() int {
	cores := runtime.NumCPU()
	poolSize := cores * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// the auto-sized value. Config files and tests use the override.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
