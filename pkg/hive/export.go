package hive

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joshuapare/hiverecon/pkg/types"
)

var fieldEscaper = strings.NewReplacer("%", "%25", "|", "%7C", "\r", "%0D", "\n", "%0A")

// ExportText writes one line per key and value, then summary counters:
//
//	key|<path>|<last write>|<subkeys>|<values>|<state>|<offset>
//	value|<key path>|<name>|<type>|<length>|<state>|<offset>|<data>
//	total_keys|<n>
//
// Live keys come first in tree order, reattached deleted keys where they
// hang, then the detached forest and finally unassociated values. Fields
// escape '%', '|' and line breaks as %XX.
func (h *Hive) ExportText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var keys, values, deletedKeys, deletedValues int
	emit := func(k *types.Key) bool {
		state := keyState(k)
		if k.Deleted() {
			deletedKeys++
		} else {
			keys++
		}
		fmt.Fprintf(bw, "key|%s|%s|%d|%d|%s|0x%08X\n",
			fieldEscaper.Replace(k.Path()), stamp(k.LastWrite), len(k.SubKeys), len(k.Values), state, k.Offset)
		for _, v := range k.Values {
			if v.Deleted {
				deletedValues++
			} else {
				values++
			}
			writeValue(bw, k.Path(), v)
		}
		return true
	}
	h.root.Walk(emit)
	for _, k := range h.forest {
		k.Walk(emit)
	}
	for _, v := range h.unassociated {
		writeValue(bw, "", v)
	}
	fmt.Fprintf(bw, "total_keys|%d\n", keys)
	fmt.Fprintf(bw, "total_values|%d\n", values)
	fmt.Fprintf(bw, "total_deleted_keys|%d\n", deletedKeys)
	fmt.Fprintf(bw, "total_deleted_values|%d\n", deletedValues)
	fmt.Fprintf(bw, "total_unassociated_values|%d\n", len(h.unassociated))
	return bw.Flush()
}

func writeValue(w io.Writer, keyPath string, v *types.Value) {
	state := "live"
	if v.Deleted {
		state = "deleted"
	}
	fmt.Fprintf(w, "value|%s|%s|%s|%d|%s|0x%08X|%s\n",
		fieldEscaper.Replace(keyPath), fieldEscaper.Replace(v.DisplayName()), v.Type, v.Length, state, v.Offset,
		fieldEscaper.Replace(v.Text()))
}

func keyState(k *types.Key) string {
	switch {
	case k.Deleted() && k.HasActiveParent():
		return "reattached"
	case k.Deleted():
		return "deleted"
	case k.IsRoot():
		return "root"
	}
	return "live"
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
