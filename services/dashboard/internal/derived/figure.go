// Package derived turns an insights snapshot into the whole-number figures the dashboard shows.
// Every function is pure: no I/O, no state, and the snapshot is never modified.
package derived

import (
	"encoding/json"
	"strconv"
)

// Placeholder is what presentation shows for a NotComputable figure.
const Placeholder = "—"

// Figure is a rounded whole number, or NotComputable when its denominator was zero.
type Figure struct {
	value      int64
	computable bool
}

// NotComputable is the sentinel for a figure whose inputs cannot produce a value.
var NotComputable = Figure{}

// Whole wraps a computed value.
func Whole(v int64) Figure {
	return Figure{value: v, computable: true}
}

// Value returns the figure and whether it is computable.
func (f Figure) Value() (int64, bool) {
	return f.value, f.computable
}

func (f Figure) Computable() bool { return f.computable }

func (f Figure) String() string {
	if !f.computable {
		return Placeholder
	}
	return strconv.FormatInt(f.value, 10)
}

// MarshalJSON encodes NotComputable as null.
func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.computable {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
