// Package recovery salvages key and value records the live tree never
// reached. Unreferenced keys become a deleted forest; fragments whose
// parent is still live are reattached under it and become searchable.
//
// Recovery only adds: live keys keep their paths and flags, and a deleted
// key never displaces a live key in the path index.
package recovery

import (
	"cmp"
	"context"
	"slices"

	"github.com/joshuapare/hiverecon/internal/cells"
	"github.com/joshuapare/hiverecon/internal/diag"
	"github.com/joshuapare/hiverecon/internal/scan"
	"github.com/joshuapare/hiverecon/internal/tree"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Options controls recovery.
type Options struct {
	Diag     *diag.Collector
	Progress types.ProgressFunc
}

// Result is the salvaged state.
type Result struct {
	// Forest holds deleted keys with no live ancestor, ordered by offset.
	Forest []*types.Key
	// Attached holds deleted keys reattached under a live key.
	Attached []*types.Key
	// Unassociated holds value records no key references.
	Unassociated []*types.Value

	Keys   int // deleted keys, including descendants
	Values int // values salvaged under deleted keys
}

// Recover runs after tree.Build over the same scan result. It relies on the
// referenced marks the build left on every cell it reached.
func Recover(ctx context.Context, res *scan.Result, t *tree.Tree, opts Options) (*Result, error) {
	d := opts.Diag
	q := t.Resolver().Quiet()
	out := &Result{}

	orphans := unreferencedKeys(res)
	byOffset := make(map[uint32]*types.Key, len(orphans))
	keys := make([]*types.Key, 0, len(orphans))
	for i, cell := range orphans {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		cell.MarkReferenced()
		k := q.NewKey(cell, nil)
		k.Flags |= types.KeyDeleted
		q.Values(k, true)
		out.Values += len(k.Values)
		byOffset[k.Offset] = k
		keys = append(keys, k)
		if opts.Progress != nil {
			opts.Progress(types.Progress{Phase: types.PhaseRecover, Fraction: float64(i+1) / float64(len(orphans))})
		}
	}
	out.Keys = len(keys)

	top := reparentOrphans(keys, byOffset)

	for _, k := range top {
		live, ok := t.ByOffset[k.ParentOffset]
		if !ok || live.Deleted() {
			out.Forest = append(out.Forest, k)
			continue
		}
		k.Parent = live
		k.Flags |= types.KeyHasActiveParent
		live.SubKeys = append(live.SubKeys, k)
		k.Walk(func(n *types.Key) bool {
			t.Register(n, d)
			return true
		})
		out.Attached = append(out.Attached, k)
	}

	for _, c := range sortedCells(res) {
		vc, ok := c.(*cells.ValueCell)
		if !ok || vc.Referenced() {
			continue
		}
		out.Unassociated = append(out.Unassociated, q.Value(vc, true))
	}

	d.Infof(types.DiagRecovery, 0, "recovery", "%d deleted keys (%d reattached, %d detached), %d values, %d unassociated values",
		out.Keys, len(out.Attached), len(out.Forest), out.Values, len(out.Unassociated))
	return out, nil
}

// reparentOrphans moves every orphan whose parent offset names another
// orphan under that orphan and returns the ones left at the top level.
// Parents are looked up among all orphans, not only top-level ones, so one
// pass reaches the fixed point. A move that would close a cycle is skipped.
func reparentOrphans(keys []*types.Key, byOffset map[uint32]*types.Key) []*types.Key {
	var top []*types.Key
	for _, k := range keys {
		p, ok := byOffset[k.ParentOffset]
		if !ok || p == k || isAncestor(k, p) {
			top = append(top, k)
			continue
		}
		k.Parent = p
		p.SubKeys = append(p.SubKeys, k)
	}
	return top
}

// isAncestor reports whether a is n or one of n's ancestors.
func isAncestor(a, n *types.Key) bool {
	for ; n != nil; n = n.Parent {
		if n == a {
			return true
		}
	}
	return false
}

func unreferencedKeys(res *scan.Result) []*cells.KeyCell {
	var out []*cells.KeyCell
	for _, c := range sortedCells(res) {
		if k, ok := c.(*cells.KeyCell); ok && !k.Referenced() {
			out = append(out, k)
		}
	}
	return out
}

// sortedCells returns the scanned records in offset order so results do not
// depend on map iteration.
func sortedCells(res *scan.Result) []cells.Cell {
	out := make([]cells.Cell, 0, len(res.Cells))
	for _, c := range res.Cells {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b cells.Cell) int {
		return cmp.Compare(a.Offset(), b.Offset())
	})
	return out
}
