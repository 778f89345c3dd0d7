package search

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/pkg/types"
)

type fixture struct {
	root   *types.Key
	byPath map[string]*types.Key
}

func newFixture() *fixture {
	root := &types.Key{Name: "ROOT", Flags: types.KeyRoot}
	return &fixture{root: root, byPath: map[string]*types.Key{"": root}}
}

func (f *fixture) add(path string, when time.Time, values ...*types.Value) *types.Key {
	parent := f.root
	var k *types.Key
	for _, name := range strings.Split(path, `\`) {
		k = parent.SubKey(name)
		if k == nil {
			k = &types.Key{Name: name, Parent: parent, Flags: types.KeyHasActiveParent}
			parent.SubKeys = append(parent.SubKeys, k)
		}
		parent = k
	}
	k.LastWrite = when
	k.Values = append(k.Values, values...)
	f.byPath[strings.ToLower(path)] = k
	return k
}

func collect(seq func(func(Hit) bool)) []string {
	var out []string
	for h := range seq {
		s := h.Key.Path()
		if h.Value != nil {
			s += "|" + h.Value.DisplayName()
		}
		out = append(out, s)
	}
	return out
}

func TestExpand(t *testing.T) {
	f := newFixture()
	f.add(`Software\A\Run`, time.Time{})
	f.add(`Software\B\Run`, time.Time{})
	f.add(`Software\A\RunOnce`, time.Time{})
	f.add(`Software\A\B\Run`, time.Time{})
	e := New(f.byPath)

	require.Equal(t, []string{`Software\A\Run`, `Software\B\Run`}, collect(e.Expand(`Software\*\Run`)))
	require.Equal(t, []string{`Software\A\Run`, `Software\B\Run`}, collect(e.Expand(`software\*\RUN`)))
	require.Equal(t, []string{`Software\A\Run`, `Software\A\RunOnce`}, collect(e.Expand(`Software\A\Run*`)))
	require.Empty(t, collect(e.Expand(`Software\*`+"\\"+`(x)`)))
}

func TestNamesAndRestart(t *testing.T) {
	f := newFixture()
	f.add(`Software\Microsoft`, time.Time{}, &types.Value{Name: "Version"}, &types.Value{Name: ""})
	f.add(`Software\Classes`, time.Time{}, &types.Value{Name: "microsoft.url"})
	e := New(f.byPath)

	keys := e.KeyNames(Substring("MICRO"))
	require.Equal(t, []string{`Software\Microsoft`}, collect(keys))
	require.Equal(t, collect(keys), collect(keys))

	vals := e.ValueNames(Substring("micro"))
	require.Equal(t, []string{`Software\Classes|microsoft.url`}, collect(vals))

	def := e.ValueNames(Substring("(default)"))
	require.Equal(t, []string{`Software\Microsoft|(Default)`}, collect(def))

	re, err := Regexp(`^ver`)
	require.NoError(t, err)
	require.Len(t, collect(e.ValueNames(re)), 1)

	_, err = NewMatcher("(", true)
	require.Error(t, err)
}

func TestSequenceStopsEarly(t *testing.T) {
	f := newFixture()
	for _, p := range []string{"a", "b", "c", "d"} {
		f.add(p, time.Time{})
	}
	e := New(f.byPath)
	var seen int
	for range e.Expand("*") {
		seen++
		if seen == 2 {
			break
		}
	}
	require.Equal(t, 2, seen)
}

func TestValueDataDualDecode(t *testing.T) {
	f := newFixture()
	f.add("Data", time.Time{},
		&types.Value{Name: "sz", Type: types.REG_SZ, Raw: format.EncodeUTF16LE("C:\\Windows\\notepad.exe\x00")},
		&types.Value{Name: "bin16", Type: types.REG_BINARY, Raw: format.EncodeUTF16LE("secret notepad")},
		&types.Value{Name: "bin8", Type: types.REG_BINARY, Raw: []byte("xxNOTEPADxx")},
		&types.Value{Name: "dword", Type: types.REG_DWORD, Raw: []byte{42, 0, 0, 0}, Length: 4},
	)
	e := New(f.byPath)

	hits := slices.Collect(e.ValueData(Substring("notepad")))
	require.Len(t, hits, 3)
	require.Equal(t, `C:\Windows\notepad.exe`, hits[0].Text)
	require.Equal(t, "secret notepad", hits[1].Text)
	require.Equal(t, "xxNOTEPADxx", hits[2].Text)
	require.Equal(t, ValueData, hits[0].Kind)

	require.Equal(t, []string{"Data|dword"}, collect(e.ValueData(Substring("(42)"))))
}

func TestValueSlack(t *testing.T) {
	f := newFixture()
	f.add("K", time.Time{},
		&types.Value{Name: "a", Type: types.REG_SZ, Slack: format.EncodeUTF16LE("old password")},
		&types.Value{Name: "b", Type: types.REG_SZ, Slack: []byte("PASSWORD1")},
		&types.Value{Name: "c", Type: types.REG_SZ},
	)
	e := New(f.byPath)
	require.Equal(t, []string{"K|a", "K|b"}, collect(e.ValueSlack(Substring("password"))))
}

func TestValueSizeAndLastWrite(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	f := newFixture()
	f.add("Old", day(1), &types.Value{Name: "small", Length: 4})
	f.add("Mid", day(10), &types.Value{Name: "big", Length: 40000})
	f.add("New", day(20))
	delete(f.byPath, "")
	e := New(f.byPath)

	require.Equal(t, []string{"Mid|big"}, collect(e.ValueSize(4096)))
	require.Len(t, collect(e.ValueSize(0)), 2)

	require.Equal(t, []string{"Mid"}, collect(e.LastWrite(TimeRange{After: day(5), Before: day(15)})))
	require.Equal(t, []string{"Mid", "New"}, collect(e.LastWrite(TimeRange{After: day(10)})))
	require.Equal(t, []string{"Old"}, collect(e.LastWrite(TimeRange{Before: day(9)})))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "slack", ValueSlack.String())
	require.Equal(t, "Kind(99)", Kind(99).String())
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"key", "keys", "Values", "data", "slack", "size", "time", "path"} {
		k, err := ParseKind(s)
		require.NoError(t, err, s)
		require.Equal(t, strings.TrimSuffix(strings.ToLower(s), "s"), k.String())
	}
	_, err := ParseKind("bogus")
	require.Error(t, err)
}
