package profiler

import (
	"bytes"
	"runtime"
	"strconv"
)

// CurrentGoroutineID reads the numeric goroutine id from the runtime stack
// header ("goroutine 123 [running]:"). Go deliberately hides goroutine
// identity, but the per-caller breakdown in the profiling report needs a
// stable id for the invoking goroutine, which the stack header provides.
func CurrentGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
