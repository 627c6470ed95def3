// internal/nodeid/address.go
package nodeid

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.Index != -1 {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// Child returns a new address with one more segment appended. The receiver
// is not modified.
func (a Address) Child(name string, index int) Address {
	path := make([]PathSegment, len(a.Path), len(a.Path)+1)
	copy(path, a.Path)
	return Address{Path: append(path, PathSegment{Name: name, Index: index})}
}

// Last returns the final segment, or the zero segment for an empty address.
func (a Address) Last() PathSegment {
	if len(a.Path) == 0 {
		return PathSegment{Index: -1}
	}
	return a.Path[len(a.Path)-1]
}

// HasPrefix reports whether base is an ancestor of (or equal to) a.
func (a Address) HasPrefix(base Address) bool {
	if len(base.Path) > len(a.Path) {
		return false
	}
	for i, seg := range base.Path {
		if a.Path[i] != seg {
			return false
		}
	}
	return true
}

// Rel returns the path of a relative to base, formatted canonically. The
// empty string means a and base are the same address. ok is false when base
// is not a prefix of a.
func (a Address) Rel(base Address) (rel string, ok bool) {
	if !a.HasPrefix(base) {
		return "", false
	}
	rest := Address{Path: a.Path[len(base.Path):]}
	return rest.String(), true
}
