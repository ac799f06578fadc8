package sheet

import (
	"fmt"
	"strings"
)

// State is the accounting lifecycle state of a stored sheet.
type State int

const (
	Active State = iota
	Inactive
	Missing
	Obsolete
)

var stateNames = [...]string{"active", "inactive", "missing", "obsolete"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(n, name) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sheet state %q", name)
}

// Ref points at a previously stored sheet.
type Ref struct {
	Path        string
	ProductID   string
	SheetNumber string
	State       State
}

// Key identifies a sheet across states.
type Key struct {
	ProductID   string
	SheetNumber string
}

// Key returns the identity of the referenced sheet.
func (r Ref) Key() Key {
	return Key{r.ProductID, r.SheetNumber}
}
