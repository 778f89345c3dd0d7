// Package tree reconstructs the live key hierarchy from a scan result,
// starting at the root key and following subkey and value lists.
package tree

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/joshuapare/hiverecon/internal/cells"
	"github.com/joshuapare/hiverecon/internal/diag"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/scan"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Options controls a build.
type Options struct {
	// Recover takes value list entries past the declared count when they
	// point at free value records.
	Recover  bool
	Diag     *diag.Collector
	Progress types.ProgressFunc
}

// Tree is the reconstructed hierarchy. ByPath is keyed by lower-cased full
// path; the root is registered under "".
type Tree struct {
	Root     *types.Key
	ByPath   map[string]*types.Key
	ByOffset map[uint32]*types.Key
	Keys     int
	Values   int

	resolver *Resolver
}

// Resolver returns the resolver the tree was built with.
func (t *Tree) Resolver() *Resolver { return t.resolver }

// Register indexes k by offset and path. When another key already holds the
// same path, preferActiveParent decides which one stays.
func (t *Tree) Register(k *types.Key, d *diag.Collector) {
	t.ByOffset[k.Offset] = k
	p := strings.ToLower(k.Path())
	existing, ok := t.ByPath[p]
	if !ok {
		t.ByPath[p] = k
		return
	}
	d.Infof(types.DiagConsistency, abs(k.Offset), "nk", "path %q already held by key at %#x", k.Path(), abs(existing.Offset))
	t.ByPath[p] = preferActiveParent(existing, k)
}

// preferActiveParent resolves two keys sharing a path: a key hanging off a
// live parent beats one that does not, otherwise the first one stays.
func preferActiveParent(existing, candidate *types.Key) *types.Key {
	if candidate.HasActiveParent() && !existing.HasActiveParent() {
		return candidate
	}
	return existing
}

// Build walks the hierarchy iteratively from the root. Each key cell is
// visited at most once, so cyclic or shared subkey lists terminate.
func Build(ctx context.Context, res *scan.Result, hdr format.Header, opts Options) (*Tree, error) {
	d := opts.Diag
	rootCell, err := findRoot(res, hdr, d)
	if err != nil {
		return nil, err
	}

	r := NewResolver(res, hdr, opts.Recover, d)
	t := &Tree{
		ByPath:   make(map[string]*types.Key),
		ByOffset: make(map[uint32]*types.Key),
		resolver: r,
	}
	total := 0
	for _, c := range res.Cells {
		if _, ok := c.(*cells.KeyCell); ok {
			total++
		}
	}

	visited := map[uint32]bool{rootCell.Offset(): true}
	rootCell.MarkReferenced()
	t.Root = r.NewKey(rootCell, nil)
	t.Root.Flags |= types.KeyRoot
	stack := []*types.Key{t.Root}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.Register(k, d)
		r.Values(k, false)
		t.Keys++
		t.Values += len(k.Values)

		for _, off := range r.SubkeyOffsets(k.Cell) {
			if visited[off] {
				d.Warnf(types.DiagIntegrity, abs(off), "nk", "key %q: subkey already visited, cycle or shared list", k.Name)
				continue
			}
			cell, ok := res.Key(off)
			if !ok {
				d.Warnf(types.DiagIntegrity, abs(off), "nk", "key %q: subkey offset does not name a key record", k.Name)
				continue
			}
			visited[off] = true
			cell.MarkReferenced()
			child := r.NewKey(cell, k)
			child.Flags |= types.KeyHasActiveParent
			if cell.Free() {
				d.Warnf(types.DiagIntegrity, abs(off), "nk", "live list references free key %q", cell.Name)
			}
			k.SubKeys = append(k.SubKeys, child)
		}
		// Children were appended in list order; push them reversed so they
		// are registered in that order too.
		for _, c := range slices.Backward(k.SubKeys) {
			stack = append(stack, c)
		}

		if opts.Progress != nil && total > 0 {
			opts.Progress(types.Progress{Phase: types.PhaseBuild, Fraction: min(float64(t.Keys)/float64(total), 1)})
		}
	}
	return t, nil
}

// findRoot prefers the header's root cell index and falls back to the
// lowest-offset key carrying the hive-entry flag.
func findRoot(res *scan.Result, hdr format.Header, d *diag.Collector) (*cells.KeyCell, error) {
	if k, ok := res.Key(hdr.RootCellOffset); ok {
		return k, nil
	}
	d.Warnf(types.DiagIntegrity, abs(hdr.RootCellOffset), "regf", "root cell index does not name a key record")

	var found *cells.KeyCell
	for off, c := range res.Cells {
		k, ok := c.(*cells.KeyCell)
		if !ok || !k.NK.IsRoot() || k.Free() {
			continue
		}
		if found == nil || off < found.Offset() {
			found = k
		}
	}
	if found == nil {
		return nil, types.Wrap(types.ErrNoRoot, fmt.Errorf("root cell %#x", hdr.RootCellOffset))
	}
	d.Infof(types.DiagRecovery, abs(found.Offset()), "nk", "using flagged root key %q", found.Name)
	return found, nil
}
