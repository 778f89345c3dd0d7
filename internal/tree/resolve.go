package tree

import (
	"github.com/joshuapare/hiverecon/internal/cells"
	"github.com/joshuapare/hiverecon/internal/diag"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/scan"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Resolver turns key and value cells into model objects, following their
// class name, value list, data and subkey list references through the scan
// result. Every dangling or malformed reference is reported and skipped.
type Resolver struct {
	res     *scan.Result
	minor   uint32
	recover bool
	d       *diag.Collector
}

// NewResolver returns a resolver over res. With recover set, value list
// entries past the declared count are taken when they point at free records.
func NewResolver(res *scan.Result, hdr format.Header, recover bool, d *diag.Collector) *Resolver {
	return &Resolver{res: res, minor: hdr.MinorVersion, recover: recover, d: d}
}

// Quiet returns a resolver that reports nothing, for best-effort salvage of
// records that are expected to be damaged.
func (r *Resolver) Quiet() *Resolver {
	q := *r
	q.d = nil
	return &q
}

// NewKey builds a key for cell with its class name resolved. Values and
// subkeys are left to the caller.
func (r *Resolver) NewKey(cell *cells.KeyCell, parent *types.Key) *types.Key {
	nk := cell.NK
	k := &types.Key{
		Name:           cell.Name,
		LastWrite:      format.FiletimeToTime(nk.LastWriteRaw),
		Offset:         cell.Offset(),
		ParentOffset:   nk.ParentOffset,
		SecurityOffset: nk.SecurityOffset,
		Parent:         parent,
		Cell:           cell,
	}
	if sc, ok := r.res.Cells[nk.SecurityOffset].(*cells.SecurityCell); ok {
		sc.MarkReferenced()
	}
	r.className(k)
	return k
}

func (r *Resolver) className(k *types.Key) {
	nk := k.Cell.NK
	if nk.ClassLength == 0 || nk.ClassNameOffset == format.InvalidOffset {
		return
	}
	c, err := format.CellAt(r.res.Buf, nk.ClassNameOffset)
	if err != nil {
		r.d.Warnf(types.DiagData, abs(nk.ClassNameOffset), "class", "key %q: class name cell: %v", k.Name, err)
		return
	}
	if int(nk.ClassLength) > len(c.Data) {
		r.d.Mismatch(types.DiagData, abs(nk.ClassNameOffset), "class", "class name overruns its cell, skipped",
			len(c.Data), int(nk.ClassLength))
		return
	}
	k.ClassName = format.DecodeUTF16LE(c.Data[:nk.ClassLength])
}

// Values resolves k's value list into k.Values and marks each value cell
// referenced. deleted flags every resolved value as deleted.
func (r *Resolver) Values(k *types.Key, deleted bool) {
	nk := k.Cell.NK
	if nk.ValueCount == 0 || nk.ValueListOffset == format.InvalidOffset {
		return
	}
	list, err := format.CellAt(r.res.Buf, nk.ValueListOffset)
	if err != nil {
		r.d.Warnf(types.DiagStructure, abs(nk.ValueListOffset), "valuelist", "key %q: %v", k.Name, err)
		return
	}
	offs, err := format.DecodeValueList(list.Data, nk.ValueCount)
	if err != nil {
		r.d.Mismatch(types.DiagConsistency, abs(nk.ValueListOffset), "valuelist",
			"value list shorter than declared count", nk.ValueCount, len(offs))
	}
	for _, off := range offs {
		vc, ok := r.res.Value(off)
		if !ok {
			r.d.Warnf(types.DiagIntegrity, abs(off), "vk", "key %q: value offset does not name a value record", k.Name)
			continue
		}
		vc.MarkReferenced()
		k.Values = append(k.Values, r.Value(vc, deleted))
	}
	if !r.recover {
		return
	}
	table := format.DecodeOffsetTable(list.Data)
	for _, off := range table[len(offs):] {
		vc, ok := r.res.Value(off)
		if !ok || !vc.Free() || vc.Referenced() {
			continue
		}
		vc.MarkReferenced()
		k.Values = append(k.Values, r.Value(vc, true))
	}
}

// Value builds a value for vc and resolves its data.
func (r *Resolver) Value(vc *cells.ValueCell, deleted bool) *types.Value {
	vk := vc.VK
	v := &types.Value{
		Name:    vc.Name,
		Type:    types.RegType(vk.Type),
		Offset:  vc.Offset(),
		Length:  vk.Length(),
		Inline:  vk.DataInline(),
		Deleted: deleted || vc.Free(),
		Cell:    vc,
	}
	switch {
	case v.Inline:
		if v.Length > format.OffsetFieldSize {
			r.d.Warnf(types.DiagData, abs(vc.Offset()), "vk", "value %q: inline length %d exceeds 4", v.Name, v.Length)
		}
		v.Raw = vk.InlineData()
	case v.Length == 0:
	case vk.DataOffset == format.InvalidOffset:
		r.d.Warnf(types.DiagIntegrity, abs(vc.Offset()), "vk", "value %q: %d bytes declared without a data cell", v.Name, v.Length)
	default:
		r.data(v, vk.DataOffset)
	}
	return v
}

func (r *Resolver) data(v *types.Value, off uint32) {
	c, err := format.CellAt(r.res.Buf, off)
	if err != nil {
		r.d.Warnf(types.DiagData, abs(off), "data", "value %q: %v", v.Name, err)
		return
	}
	if format.UsesBigData(r.minor, v.Length) && format.IsDBRecord(c.Data) {
		r.bigData(v, c)
		return
	}
	if len(c.Data) < v.Length {
		r.d.Mismatch(types.DiagData, abs(off), "data", "value data cell shorter than declared length", v.Length, len(c.Data))
		v.Raw = c.Data
		return
	}
	v.Raw = c.Data[:v.Length]
	v.Slack = c.Data[v.Length:]
}

// bigData concatenates db blocks. Each block holds DBChunkSize bytes of data
// followed by padding that is not part of the value.
func (r *Resolver) bigData(v *types.Value, c format.Cell) {
	v.BigData = true
	db, err := format.DecodeDB(c.Data)
	if err != nil {
		r.d.Warnf(types.DiagData, uint64(c.Offset), "db", "value %q: %v", v.Name, err)
		return
	}
	list, err := format.CellAt(r.res.Buf, db.ListOffset)
	if err != nil {
		r.d.Warnf(types.DiagData, abs(db.ListOffset), "db", "value %q: block list: %v", v.Name, err)
		return
	}
	blocks, err := format.DecodeValueList(list.Data, uint32(db.Count))
	if err != nil {
		r.d.Warnf(types.DiagData, abs(db.ListOffset), "db", "value %q: %v", v.Name, err)
	}
	out := make([]byte, 0, v.Length)
	for _, blk := range blocks {
		bc, err := format.CellAt(r.res.Buf, blk)
		if err != nil {
			r.d.Warnf(types.DiagData, abs(blk), "db", "value %q: block: %v", v.Name, err)
			break
		}
		n := min(v.Length-len(out), format.DBChunkSize, len(bc.Data))
		out = append(out, bc.Data[:n]...)
		if len(out) == v.Length {
			break
		}
	}
	if len(out) < v.Length {
		r.d.Mismatch(types.DiagData, uint64(c.Offset), "db", "big data shorter than declared length", v.Length, len(out))
	}
	v.Raw = out
}

// SubkeyOffsets resolves a key's subkey list to child key offsets,
// dispatching on the list kind.
func (r *Resolver) SubkeyOffsets(cell *cells.KeyCell) []uint32 {
	nk := cell.NK
	if nk.SubkeyCount == 0 || nk.SubkeyListOffset == format.InvalidOffset {
		return nil
	}
	l, ok := r.res.Lists[nk.SubkeyListOffset]
	if !ok {
		r.d.Warnf(types.DiagIntegrity, abs(nk.SubkeyListOffset), "list", "key %q: subkey list missing", cell.Name)
		return nil
	}
	var out []uint32
	switch l.Kind {
	case cells.ListDirect, cells.ListPlain:
		out = l.Entries
	case cells.ListIndexed:
		for _, sub := range l.Entries {
			sl, ok := r.res.Lists[sub]
			if !ok || sl.Kind == cells.ListIndexed {
				r.d.Warnf(types.DiagIntegrity, abs(sub), "ri", "key %q: ri entry is not a leaf list", cell.Name)
				continue
			}
			out = append(out, sl.Entries...)
		}
	}
	if uint32(len(out)) != nk.SubkeyCount {
		r.d.Mismatch(types.DiagConsistency, abs(nk.SubkeyListOffset), l.Tag,
			"subkey list length differs from declared count", nk.SubkeyCount, len(out))
	}
	return out
}

func abs(rel uint32) uint64 {
	return uint64(rel) + format.HiveDataBase
}
