package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegType_String(t *testing.T) {
	tests := []struct {
		regType  RegType
		expected string
	}{
		{REG_NONE, "REG_NONE"},
		{REG_SZ, "REG_SZ"},
		{REG_EXPAND_SZ, "REG_EXPAND_SZ"},
		{REG_BINARY, "REG_BINARY"},
		{REG_DWORD, "REG_DWORD"},
		{REG_DWORD_BE, "REG_DWORD_BE"},
		{REG_LINK, "REG_LINK"},
		{REG_MULTI_SZ, "REG_MULTI_SZ"},
		{REG_RESOURCE_LIST, "REG_RESOURCE_LIST"},
		{REG_QWORD, "REG_QWORD"},
		{RegType(12), "UNKNOWN_TYPE_12"},
		{RegType(0xFFFF2012), "UNKNOWN_TYPE_-57326"},
		{RegType(2147483648), "UNKNOWN_TYPE_-2147483648"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.regType.String())
		})
	}
}

func TestRegType_IsText(t *testing.T) {
	require.True(t, REG_SZ.IsText())
	require.True(t, REG_MULTI_SZ.IsText())
	require.False(t, REG_BINARY.IsText())
	require.False(t, REG_DWORD.IsText())
}
