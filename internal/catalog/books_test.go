package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorren/selah/internal/entities"
)

func TestBooks_CanonicalOrder(t *testing.T) {
	books := Books()
	require.Len(t, books, 66)

	for i, book := range books {
		assert.Equal(t, i+1, book.Order, "book %s out of order", book.Code)
	}

	assert.Equal(t, "GEN", books[0].Code)
	assert.Equal(t, entities.TestamentOld, books[38].Testament) // Malachi, order 39
	assert.Equal(t, entities.TestamentNew, books[39].Testament) // Matthew, order 40
	assert.Equal(t, "REV", books[65].Code)
}

func TestBookByCode(t *testing.T) {
	book, ok := BookByCode("PSA")
	require.True(t, ok)
	assert.Equal(t, "Psalms", book.Name)
	assert.Equal(t, 19, book.Order)

	// Case-insensitive
	book, ok = BookByCode("psa")
	require.True(t, ok)
	assert.Equal(t, "Psalms", book.Name)

	_, ok = BookByCode("XYZ")
	assert.False(t, ok)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "GEN-001", FormatCode("GEN", 1))
	assert.Equal(t, "PSA-119", FormatCode("psa", 119))
	assert.Equal(t, "REV-1234", FormatCode("REV", 1234))
}

func TestParseCode(t *testing.T) {
	book, seq, err := ParseCode("GEN-001")
	require.NoError(t, err)
	assert.Equal(t, "GEN", book.Code)
	assert.Equal(t, 1, seq)

	book, seq, err = ParseCode(" psa-119 ")
	require.NoError(t, err)
	assert.Equal(t, "PSA", book.Code)
	assert.Equal(t, 119, seq)
}

func TestParseCode_Invalid(t *testing.T) {
	cases := []string{"", "GEN", "XYZ-001", "GEN-abc", "GEN-000", "GEN--1"}
	for _, code := range cases {
		_, _, err := ParseCode(code)
		assert.Error(t, err, "expected error for %q", code)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, book := range Books() {
		code := FormatCode(book.Code, 7)
		parsed, seq, err := ParseCode(code)
		require.NoError(t, err)
		assert.Equal(t, book.Code, parsed.Code)
		assert.Equal(t, 7, seq)
	}
}
