// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: affinity_linux.go — OS-thread-to-core pinning
//
// Purpose:
//   - Pin the calling OS thread to a single logical CPU, so a
//     runtime.LockOSThread'd connection worker stays on one core for the
//     life of the connection (spec §5: "native OS threads ... may run in
//     parallel on distinct cores").
//
// Notes:
//   - Replaces ring/setaffinity_linux.go's hand-rolled syscall.RawSyscall
//     with golang.org/x/sys/unix.SchedSetaffinity, the documented wrapper,
//     now that the dependency is worth promoting from indirect to direct.
//
// ─────────────────────────────────────────────────────────────────────────────

//go:build linux

package affinity

import "golang.org/x/sys/unix"

// Pin binds the calling OS thread to cpu (0-based). The caller must have
// already called runtime.LockOSThread, or the pin applies to whichever
// thread the goroutine happens to be scheduled on next. Errors are
// swallowed: on a cgroup-restricted or containerized host the call may
// return EPERM/EINVAL, and the fallback is simply "no pin".
func Pin(cpu int) {
	if cpu < 0 {
		return
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}

// Available reports whether affinity pinning is implemented on this build.
func Available() bool { return true }
