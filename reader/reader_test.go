package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserCode(t *testing.T) {
	tests := []struct {
		name  string
		linux uint16
		want  int
	}{
		{"a", 30, 65},
		{"m", 50, 77},
		{"v", 47, 86},
		{"z", 44, 90},
		{"1", 2, 49},
		{"0", 11, 48},
		{"enter", 28, 13},
		{"keypad enter", 96, 13},
		{"left shift", 42, 16},
		{"right shift", 54, 16},
		{"left ctrl", 29, 17},
		{"backslash", 43, 220},
		{"insert", 110, 45},
		{"numlock", 69, 144},
		{"keypad 0", 82, 96},
		{"keypad 9", 73, 105},
		{"space", 57, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BrowserCode(tt.linux)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := BrowserCode(59) // F1
	assert.False(t, ok)
}

func TestBrowserCode_LettersAreContiguous(t *testing.T) {
	seen := map[int]bool{}
	for _, code := range browserCodes {
		if code >= 'A' && code <= 'Z' {
			seen[code] = true
		}
	}
	assert.Len(t, seen, 26)
}

func TestByteCode(t *testing.T) {
	assert.Equal(t, 'A', rune(ByteCode('a')))
	assert.Equal(t, 'I', rune(ByteCode('i')))
	assert.Equal(t, 'Z', rune(ByteCode('Z')))
	assert.Equal(t, '5', rune(ByteCode('5')))
	assert.Equal(t, 13, ByteCode('\r'))
	assert.Equal(t, 192, ByteCode('`'))
	assert.Equal(t, int('|'), ByteCode('|'))

	for b := 0; b < 256; b++ {
		code := ByteCode(byte(b))
		assert.False(t, code >= 96 && code <= 105, "byte %d maps into keypad range", b)
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "wiegand"})
	assert.Error(t, err)
}
