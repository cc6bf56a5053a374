// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: control.go — shutdown coordination for the server layer
//
// Purpose:
//   - Provides a global stop flag and a drain WaitGroup so the server can
//     refuse new connections and wait for open connections and background
//     goroutines to finish before the process exits.
//
// Notes:
//   - The table core itself has no cancellation (spec §5: "A spinning set is
//     not externally cancellable by design"). Shutdown only stops new
//     connections from being accepted; requests on connections that are
//     already open are still dispatched until the client disconnects, and an
//     operation already inside the probe/spin loop is never interrupted.
//
// ─────────────────────────────────────────────────────────────────────────────

package control

import "sync"

var (
	stop uint32

	// Inflight tracks open client connections and the process's background
	// goroutines. The server's accept loop calls Inflight.Add(1) for each
	// accepted connection and its handler calls Inflight.Done() when the
	// connection closes, so Inflight.Wait() returns once every connection
	// and background goroutine has exited.
	Inflight sync.WaitGroup
)

// Shutdown sets the global stop flag. Callers (server accept loops) observe
// it via Stopped and stop admitting new connections; it does not itself wait
// for drain — call Inflight.Wait() for that.
//
//go:nosplit
//go:inline
func Shutdown() {
	stop = 1
}

// Stopped reports whether Shutdown has been called.
//
//go:nosplit
//go:inline
func Stopped() bool {
	return stop == 1
}
