// Package ident implements qualified identifiers of the form "A::B::x".
//
// An ID is a comparable value: two IDs naming the same path compare equal with
// ==, which lets them key maps directly. Segments are NFC-normalised on
// construction so that visually identical names written with different
// Unicode compositions resolve to the same symbol.
package ident

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator joins namespace segments.
const Separator = "::"

// ID is a fully or partially qualified identifier. The zero value is the null
// identifier, which also names the root namespace.
type ID struct {
	path string
}

// Null is the empty identifier.
var Null = ID{}

// Parse splits s on "::" and builds an ID. Empty segments are dropped, so
// "::x" and "x" are the same identifier.
func Parse(s string) ID {
	if s == "" {
		return Null
	}
	return New(strings.Split(s, Separator)...)
}

// New builds an ID from individual segments.
func New(segments ...string) ID {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		parts = append(parts, norm.NFC.String(seg))
	}
	return ID{path: strings.Join(parts, Separator)}
}

// IsNull reports whether the identifier is empty.
func (id ID) IsNull() bool { return id.path == "" }

// String returns the "::" separated form.
func (id ID) String() string { return id.path }

// Segments returns the individual path segments.
func (id ID) Segments() []string {
	if id.path == "" {
		return nil
	}
	return strings.Split(id.path, Separator)
}

// Depth is the number of segments.
func (id ID) Depth() int {
	if id.path == "" {
		return 0
	}
	return strings.Count(id.path, Separator) + 1
}

// Name returns the last segment.
func (id ID) Name() string {
	if i := strings.LastIndex(id.path, Separator); i >= 0 {
		return id.path[i+len(Separator):]
	}
	return id.path
}

// Parent strips the last segment. The parent of a single-segment id is Null.
func (id ID) Parent() ID {
	if i := strings.LastIndex(id.path, Separator); i >= 0 {
		return ID{path: id.path[:i]}
	}
	return Null
}

// IsExplicit reports whether the identifier carries a namespace qualifier.
func (id ID) IsExplicit() bool {
	return strings.Contains(id.path, Separator)
}

// Child appends a single segment.
func (id ID) Child(name string) ID {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return id
	}
	if id.path == "" {
		return ID{path: name}
	}
	return ID{path: id.path + Separator + name}
}

// Join appends all segments of other.
func (id ID) Join(other ID) ID {
	switch {
	case other.path == "":
		return id
	case id.path == "":
		return other
	default:
		return ID{path: id.path + Separator + other.path}
	}
}

// IsParentOf reports whether other lives somewhere below id. The null id is
// the parent of every non-null id.
func (id ID) IsParentOf(other ID) bool {
	if other.path == "" || id == other {
		return false
	}
	if id.path == "" {
		return true
	}
	return strings.HasPrefix(other.path, id.path+Separator)
}

// IsSameOrParentOf is IsParentOf that also accepts id == other.
func (id ID) IsSameOrParentOf(other ID) bool {
	return id == other || id.IsParentOf(other)
}

// Relocate swaps the oldParent prefix for newParent. Identifiers that do not
// live below oldParent are returned unchanged.
func (id ID) Relocate(oldParent, newParent ID) ID {
	if !oldParent.IsParentOf(id) {
		return id
	}
	rest := id.path
	if oldParent.path != "" {
		rest = id.path[len(oldParent.path)+len(Separator):]
	}
	return newParent.Join(ID{path: rest})
}

// Less orders identifiers lexically by path.
func Less(a, b ID) bool { return a.path < b.path }
