package kvtable

import (
	"errors"

	"lfkv/hazard"
)

// ErrTableFull is returned by Set when every bucket on the probe sequence
// was occupied by a live key and none was available for insertion (spec §7).
var ErrTableFull = errors.New("kvtable: table full")

// ErrNoHazardSlot is hazard.ErrNoSlot re-exported under the table's own
// error taxonomy: callers that only import kvtable still get a name for
// the registration-time failure spec §7 groups alongside ErrTableFull.
var ErrNoHazardSlot = hazard.ErrNoSlot
