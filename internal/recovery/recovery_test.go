package recovery

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/diag"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/hivetest"
	"github.com/joshuapare/hiverecon/internal/scan"
	"github.com/joshuapare/hiverecon/internal/tree"
	"github.com/joshuapare/hiverecon/pkg/types"
)

func parse(t *testing.T, raw []byte, recover bool) (*tree.Tree, *Result) {
	t.Helper()
	hdr, err := format.ParseHeader(raw)
	require.NoError(t, err)
	d := diag.New(nil, int64(len(raw)))
	res, err := scan.Scan(context.Background(), raw, hdr, scan.Options{CarveFree: recover, Diag: d})
	require.NoError(t, err)
	tr, err := tree.Build(context.Background(), res, hdr, tree.Options{Recover: recover, Diag: d})
	require.NoError(t, err)
	if !recover {
		return tr, nil
	}
	rr, err := Recover(context.Background(), res, tr, Options{Diag: d})
	require.NoError(t, err)
	return tr, rr
}

func damagedHive() []byte {
	b := hivetest.NewBuilder()
	root := b.AddRoot(hivetest.KeyDef{
		Name:    "ROOT",
		SubKeys: []hivetest.KeyDef{{Name: "Live", Values: []hivetest.ValueDef{{Name: "Kept", Type: uint32(types.REG_DWORD), Data: []byte{1, 0, 0, 0}}}}},
	})
	b.SetRoot(root)

	gone := b.AddKey(hivetest.KeyDef{
		Name:    "Gone",
		Values:  []hivetest.ValueDef{{Name: "Old", Type: uint32(types.REG_SZ), Data: format.EncodeUTF16LE("was here\x00")}},
		SubKeys: []hivetest.KeyDef{{Name: "Inner"}},
	}, root, "Gone")
	b.Free(gone)

	lost := b.AddKey(hivetest.KeyDef{Name: "Lost"}, 0x00ABC000, "Lost")
	b.AddKey(hivetest.KeyDef{Name: "LostChild"}, lost, `Lost\LostChild`)

	b.AllocFree(hivetest.VK{Name: "Stray", Type: uint32(types.REG_DWORD), DataLen: 4 | format.VKDataInlineBit, DataOff: 3}.Bytes())
	return b.Bytes()
}

func TestRecoverPhases(t *testing.T) {
	tr, rr := parse(t, damagedHive(), true)

	require.Equal(t, 4, rr.Keys)
	require.Equal(t, 1, rr.Values)

	gone := tr.ByPath["gone"]
	require.NotNil(t, gone)
	require.True(t, gone.Deleted())
	require.True(t, gone.HasActiveParent())
	require.Same(t, tr.Root, gone.Parent)
	require.Len(t, rr.Attached, 1)
	require.True(t, gone.Value("Old").Deleted)

	inner := tr.ByPath[`gone\inner`]
	require.NotNil(t, inner)
	require.Equal(t, `Gone\Inner`, inner.Path())
	require.True(t, inner.Deleted())
	require.Same(t, inner, tr.ByOffset[inner.Offset])

	require.Len(t, rr.Forest, 1)
	lost := rr.Forest[0]
	require.Equal(t, "Lost", lost.Name)
	require.False(t, lost.HasActiveParent())
	require.Len(t, lost.SubKeys, 1)
	require.Equal(t, `Lost\LostChild`, lost.SubKeys[0].Path())
	require.Nil(t, tr.ByPath["lost"])

	require.Len(t, rr.Unassociated, 1)
	require.Equal(t, "Stray", rr.Unassociated[0].Name)
	require.True(t, rr.Unassociated[0].Deleted)
}

func livePaths(tr *tree.Tree) []string {
	var out []string
	for p, k := range tr.ByPath {
		if !k.Deleted() {
			out = append(out, p+"@"+k.Name)
		}
	}
	sort.Strings(out)
	return out
}

func TestRecoverIsAdditive(t *testing.T) {
	raw := damagedHive()
	plain, _ := parse(t, raw, false)
	recovered, _ := parse(t, raw, true)
	require.Equal(t, livePaths(plain), livePaths(recovered))
	require.Greater(t, len(recovered.ByPath), len(plain.ByPath))
}

func TestRecoverKeepsLiveKeyOnCollision(t *testing.T) {
	b := hivetest.NewBuilder()
	root := b.AddRoot(hivetest.KeyDef{Name: "ROOT", SubKeys: []hivetest.KeyDef{{Name: "Twin"}}})
	b.SetRoot(root)
	b.AddKey(hivetest.KeyDef{Name: "Twin"}, root, "twin-deleted")
	raw := b.Bytes()

	tr, rr := parse(t, raw, true)
	require.Len(t, rr.Attached, 1)
	require.Equal(t, b.Keys["Twin"], tr.ByPath["twin"].Offset)
	require.False(t, tr.ByPath["twin"].Deleted())
	require.True(t, tr.ByOffset[b.Keys["twin-deleted"]].Deleted())
}

func TestRecoverOrphanCycle(t *testing.T) {
	b := hivetest.NewBuilder()
	b.SetRoot(b.AddRoot(hivetest.KeyDef{Name: "ROOT"}))
	x := b.AddKey(hivetest.KeyDef{Name: "X"}, format.InvalidOffset, "X")
	y := b.AddKey(hivetest.KeyDef{Name: "Y"}, x, "Y")
	b.SetField(x, format.NKParentOffset, y)
	raw := b.Bytes()

	_, rr := parse(t, raw, true)
	require.Equal(t, 2, rr.Keys)
	require.Len(t, rr.Forest, 1)
	top := rr.Forest[0]
	require.Len(t, top.SubKeys, 1)
	require.Empty(t, top.SubKeys[0].SubKeys)
}

func TestRecoverCancelled(t *testing.T) {
	raw := damagedHive()
	hdr, err := format.ParseHeader(raw)
	require.NoError(t, err)
	res, err := scan.Scan(context.Background(), raw, hdr, scan.Options{})
	require.NoError(t, err)
	tr, err := tree.Build(context.Background(), res, hdr, tree.Options{Recover: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Recover(ctx, res, tr, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReparentOrphans(t *testing.T) {
	a := &types.Key{Name: "a", Offset: 1, ParentOffset: 99}
	b := &types.Key{Name: "b", Offset: 2, ParentOffset: 1}
	c := &types.Key{Name: "c", Offset: 3, ParentOffset: 2}
	byOff := map[uint32]*types.Key{1: a, 2: b, 3: c}

	top := reparentOrphans([]*types.Key{c, b, a}, byOff)
	require.Equal(t, []*types.Key{a}, top)
	require.Same(t, b, c.Parent)
	require.Same(t, a, b.Parent)
}
