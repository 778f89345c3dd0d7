package types

import (
	"strings"
	"sync"
	"time"

	"github.com/joshuapare/hiverecon/internal/cells"
)

// KeyFlags distinguishes live, deleted and reattached keys.
type KeyFlags uint8

const (
	// KeyDeleted marks a key salvaged from an unreferenced record.
	KeyDeleted KeyFlags = 1 << iota
	// KeyHasActiveParent marks a key whose parent is a live key.
	KeyHasActiveParent
	// KeyRoot marks the hive's root key.
	KeyRoot
)

// PathSeparator joins key names in a full path.
const PathSeparator = `\`

// Key is a reconstructed registry key. Values and SubKeys are owned by the
// key; Cell points back at the record it was built from.
type Key struct {
	Name           string
	ClassName      string
	LastWrite      time.Time
	Offset         uint32
	ParentOffset   uint32
	SecurityOffset uint32
	Flags          KeyFlags

	Values  []*Value
	SubKeys []*Key
	Parent  *Key
	Cell    *cells.KeyCell

	pathOnce sync.Once
	path     string
}

// Deleted reports whether the key was recovered from free or orphaned space.
func (k *Key) Deleted() bool { return k.Flags&KeyDeleted != 0 }

// HasActiveParent reports whether the key hangs off a live key.
func (k *Key) HasActiveParent() bool { return k.Flags&KeyHasActiveParent != 0 }

// IsRoot reports whether the key is the hive root.
func (k *Key) IsRoot() bool { return k.Flags&KeyRoot != 0 }

// Path returns the full path below the root, without the root's own name.
// The root's path is empty. The path is computed on first use; recovery
// links Parent before anything asks for it.
func (k *Key) Path() string {
	k.pathOnce.Do(func() {
		var names []string
		for n := k; n != nil && !n.IsRoot(); n = n.Parent {
			names = append(names, n.Name)
		}
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
		k.path = strings.Join(names, PathSeparator)
	})
	return k.path
}

// SubKey returns the direct child with the given name, compared
// case-insensitively.
func (k *Key) SubKey(name string) *Key {
	for _, c := range k.SubKeys {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Value returns the value with the given name, compared case-insensitively.
// An empty name selects the default value.
func (k *Key) Value(name string) *Value {
	for _, v := range k.Values {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

// Walk visits k and every descendant depth-first, stopping early when fn
// returns false.
func (k *Key) Walk(fn func(*Key) bool) bool {
	if !fn(k) {
		return false
	}
	for _, c := range k.SubKeys {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
