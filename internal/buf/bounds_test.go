package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok)
	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok)
}

func TestMulOverflowSafe(t *testing.T) {
	p, ok := MulOverflowSafe(4, 8)
	require.True(t, ok)
	require.Equal(t, 32, p)

	_, ok = MulOverflowSafe(math.MaxInt/2, 3)
	require.False(t, ok)
	_, ok = MulOverflowSafe(-1, 3)
	require.False(t, ok)
}

func TestCheckListBounds(t *testing.T) {
	end, err := CheckListBounds(20, 4, 2, 8)
	require.NoError(t, err)
	require.Equal(t, 20, end)

	_, err = CheckListBounds(19, 4, 2, 8)
	require.Error(t, err)
	_, err = CheckListBounds(100, 4, math.MaxInt/4, 8)
	require.Error(t, err)
}

func TestSliceHasClamp(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	require.False(t, ok)
	_, ok = Slice(data, -1, 1)
	require.False(t, ok)
	_, ok = Slice(data, 1, -1)
	require.False(t, ok)

	require.True(t, Has(data, 2, 1))
	require.False(t, Has(data, 2, 4))

	require.Equal(t, []byte{3, 4}, Clamp(data, 3, 10))
	require.Nil(t, Clamp(data, 5, 1))
}
