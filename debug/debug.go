// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — zero-alloc diagnostic logging
//
// Purpose:
//   - Logs infrequent cold-path events (listener and connection errors,
//     fatal hazard-slot exhaustion, shutdown) without introducing heap
//     pressure.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - Never invoked from get/set/del's hot path — only from the code around it.
//
// ⚠️ Never invoke in the table's probe/spin loops — use only in connection
// and process-lifecycle diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "lfkv/utils"

// DropError logs an error with a custom alloc-free print strategy, writing
// directly to stderr. If err is nil, only the prefix is printed (useful for
// tagged cold-path markers that carry no error value).
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs a debug message with zero-allocation print strategy.
// Used for cold-path diagnostics: listener start, recovered connection
// panics, shutdown progress.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
