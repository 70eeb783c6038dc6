// file: internal/isbn/isbn_test.go
// version: 1.0.0
// guid: 6ef40308-64e7-4a41-b981-25c27c512bd9

package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"hyphenated isbn13", "978-0-13-468599-1", "9780134685991"},
		{"lowercase check digit", "0-306-40615-x", "030640615X"},
		{"surrounding whitespace", "  9780134685991\n", "9780134685991"},
		{"scanner prefix noise", "ISBN: 978 0 13 468599 1", "9780134685991"},
		{"letters dropped", "abc", ""},
		{"empty", "", ""},
		{"embedded x kept", "12x4", "12X4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{
		"9780134685991",
		"978-0-13-468599-1",
		"0-306-40615-x",
		"030640615X",
		"0306406152",
	}
	for _, raw := range valid {
		assert.True(t, IsValid(raw), "expected %q to be valid", raw)
	}

	invalid := []string{
		"",
		"12345",
		"97801346859",    // 11
		"978013468599",   // 12
		"97801346859912", // 14
		"03064X6152",     // X not final
		"X306406152",
		"978013468599X", // X on 13-char form
	}
	for _, raw := range invalid {
		assert.False(t, IsValid(raw), "expected %q to be invalid", raw)
	}
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("9780134685991"))
	assert.True(t, IsCanonical("030640615X"))
	assert.False(t, IsCanonical("978-0-13-468599-1"))
	assert.False(t, IsCanonical("030640615x"))
}

func TestCanonicalize(t *testing.T) {
	id, err := Canonicalize(" 0-306-40615-x ")
	require.NoError(t, err)
	assert.Equal(t, "030640615X", id)

	_, err = Canonicalize("not an isbn")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
