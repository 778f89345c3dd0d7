package hive

import (
	"fmt"
	"iter"
	"strings"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/search"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Path returns the file the hive was loaded from, empty for LoadBytes.
func (h *Hive) Path() string { return h.path }

// Root returns the root key.
func (h *Hive) Root() *types.Key { return h.root }

// Len returns the number of keys in the path index, reattached deleted keys
// included.
func (h *Hive) Len() int { return len(h.byPath) }

// Key resolves a path below the root, case-insensitively. A leading hive
// alias such as HKLM is accepted, as is a first segment naming the root key
// itself or the hive's mount point, e.g. SOFTWARE in HKLM\SOFTWARE\Microsoft.
func (h *Hive) Key(path string) (*types.Key, error) {
	segs := normalizePath(stripRootPrefix(path))
	if k, ok := h.byPath[indexKey(segs)]; ok {
		return k, nil
	}
	if len(segs) > 0 && h.namesHive(segs[0]) {
		if k, ok := h.byPath[indexKey(segs[1:])]; ok {
			return k, nil
		}
	}
	return nil, types.Wrap(types.ErrNotFound, fmt.Errorf("key %q", path))
}

// namesHive reports whether seg names the root key or the hive's mount point.
func (h *Hive) namesHive(seg string) bool {
	return rootNameMatches(h.root.Name, seg) || strings.EqualFold(mountName(h.header.FileName), seg)
}

// KeyByOffset returns the key whose record sits at cell index off.
func (h *Hive) KeyByOffset(off uint32) (*types.Key, error) {
	if k, ok := h.byOffset[off]; ok {
		return k, nil
	}
	return nil, types.Wrap(types.ErrNotFound, fmt.Errorf("key at offset %#x", off))
}

// Value resolves a key path and a value name.
func (h *Hive) Value(path, name string) (*types.Value, error) {
	k, err := h.Key(path)
	if err != nil {
		return nil, err
	}
	if v := k.Value(name); v != nil {
		return v, nil
	}
	return nil, types.Wrap(types.ErrNotFound, fmt.Errorf("value %q under %q", name, path))
}

// KeyNames yields keys whose name matches m.
func (h *Hive) KeyNames(m search.Matcher) iter.Seq[search.Hit] { return h.engine.KeyNames(m) }

// ValueNames yields values whose name matches m.
func (h *Hive) ValueNames(m search.Matcher) iter.Seq[search.Hit] { return h.engine.ValueNames(m) }

// ValueData yields values whose data matches m.
func (h *Hive) ValueData(m search.Matcher) iter.Seq[search.Hit] { return h.engine.ValueData(m) }

// ValueSlack yields values whose slack matches m.
func (h *Hive) ValueSlack(m search.Matcher) iter.Seq[search.Hit] { return h.engine.ValueSlack(m) }

// ValueSize yields values of at least minLen bytes.
func (h *Hive) ValueSize(minLen int) iter.Seq[search.Hit] { return h.engine.ValueSize(minLen) }

// LastWrite yields keys last written inside r.
func (h *Hive) LastWrite(r search.TimeRange) iter.Seq[search.Hit] { return h.engine.LastWrite(r) }

// Expand yields keys matching a wildcard path such as `Software\*\Run`.
// Leading prefixes are accepted as in Key; a first segment naming the hive
// is dropped unless a top-level key has that name.
func (h *Hive) Expand(pattern string) iter.Seq[search.Hit] {
	segs := normalizePath(stripRootPrefix(pattern))
	if len(segs) > 0 && h.namesHive(segs[0]) {
		if _, ok := h.byPath[indexKey(segs[:1])]; !ok {
			segs = segs[1:]
		}
	}
	return h.engine.Expand(strings.Join(segs, `\`))
}

// Search runs a text predicate selected by kind: key, value, data or slack.
func (h *Hive) Search(kind search.Kind, q string, regex bool) (iter.Seq[search.Hit], error) {
	m, err := search.NewMatcher(q, regex)
	if err != nil {
		return nil, types.Wrap(types.ErrUnsupported, err)
	}
	switch kind {
	case search.KeyName:
		return h.KeyNames(m), nil
	case search.ValueName:
		return h.ValueNames(m), nil
	case search.ValueData:
		return h.ValueData(m), nil
	case search.ValueSlack:
		return h.ValueSlack(m), nil
	}
	return nil, types.Wrap(types.ErrUnsupported, fmt.Errorf("search kind %s takes no text query", kind))
}

// Deleted returns the top-level deleted keys: those reattached under a live
// key first, then the detached forest.
func (h *Hive) Deleted() []*types.Key {
	out := make([]*types.Key, 0, len(h.attached)+len(h.forest))
	out = append(out, h.attached...)
	return append(out, h.forest...)
}

// Unassociated returns value records no key references.
func (h *Hive) Unassociated() []*types.Value { return h.unassociated }

// Stats returns aggregate counts.
func (h *Hive) Stats() types.Stats { return h.stats }

// Diagnostics returns the issues found while loading.
func (h *Hive) Diagnostics() *types.DiagnosticReport { return h.report }

// Info returns the base block fields, after any log replay.
func (h *Hive) Info() types.HiveInfo {
	hd := h.header
	return types.HiveInfo{
		PrimarySequence:   hd.PrimarySequence,
		SecondarySequence: hd.SecondarySequence,
		LastWrite:         format.FiletimeToTime(hd.LastWriteRaw),
		MajorVersion:      hd.MajorVersion,
		MinorVersion:      hd.MinorVersion,
		Type:              hd.Type,
		Format:            hd.Format,
		RootCellOffset:    hd.RootCellOffset,
		HiveBinsDataSize:  hd.HiveBinsDataSize,
		ClusteringFactor:  hd.ClusteringFactor,
		FileName:          hd.FileName,
		RmID:              hd.RmID,
		LogID:             hd.LogID,
		TmID:              hd.TmID,
		Flags:             hd.Flags,
		Checksum:          hd.Checksum,
		ChecksumValid:     hd.ChecksumOK(),
		Dirty:             hd.Dirty(),
	}
}

// Header returns the decoded base block, for low-level dumps.
func (h *Hive) Header() format.Header { return h.header }
