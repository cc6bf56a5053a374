// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: utils.go — zero-alloc string/number helpers
//
// Purpose:
//   - Small alloc-free building blocks; debug writes through PrintWarning.
//
// ─────────────────────────────────────────────────────────────────────────────

package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged for the
// lifetime of the returned string.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b views a string as a []byte **without** allocation. The result must
// never be mutated — strings are immutable, callers are not.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Number Formatting — No fmt, No Allocation For Small Values
///////////////////////////////////////////////////////////////////////////////

// Itoa renders n in base 10 without going through fmt.Sprintf, for cold
// diagnostic paths where pulling in fmt's reflection machinery would be
// wasteful. No package in this module calls it outside its tests.
//
//go:nosplit
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Direct-Write Logging — Bypasses buffered os.Stderr Wrapping
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg directly to stderr (fd 2), bypassing fmt's
// allocation-heavy formatting path. Used only on cold paths — see debug.go.
//
//go:nosplit
func PrintWarning(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}
