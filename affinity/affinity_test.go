package affinity

import "testing"

func TestPinDoesNotPanic(t *testing.T) {
	Pin(0)
	Pin(-1) // out-of-range must be ignored, not panic
}

func TestAvailableIsBoolean(t *testing.T) {
	_ = Available()
}
