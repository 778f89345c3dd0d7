package cells

import "github.com/joshuapare/hiverecon/internal/format"

// ListKind tags the subkey list variants.
type ListKind int

const (
	// ListDirect is an lf or lh list: key offsets with name hints or hashes.
	ListDirect ListKind = iota + 1
	// ListIndexed is an ri list: each entry is another list.
	ListIndexed
	// ListPlain is an li list: bare key offsets.
	ListPlain
)

func (k ListKind) String() string {
	switch k {
	case ListDirect:
		return "direct"
	case ListIndexed:
		return "indexed"
	case ListPlain:
		return "plain"
	}
	return "unknown"
}

// List is a subkey list. Entries are key offsets for Direct and Plain lists
// and sub-list offsets for Indexed ones.
type List struct {
	Offset  uint32
	Tag     string
	Kind    ListKind
	Free    bool
	Entries []uint32
}

// NewList tags a decoded list record.
func NewList(off uint32, free bool, rec format.ListRecord) *List {
	l := &List{Offset: off, Tag: rec.Tag, Free: free, Entries: rec.Entries}
	switch rec.Tag {
	case "lf", "lh":
		l.Kind = ListDirect
	case "ri":
		l.Kind = ListIndexed
	default:
		l.Kind = ListPlain
	}
	return l
}
