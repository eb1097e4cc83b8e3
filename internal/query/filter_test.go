package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter_Empty(t *testing.T) {
	f, err := ParseFilter(Params{})

	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
	assert.Empty(t, f.Months)
	assert.Empty(t, f.Years)
	assert.Nil(t, f.CategoryID)
	assert.Equal(t, "", f.Description)
}

func TestParseFilter_Lists(t *testing.T) {
	f, err := ParseFilter(Params{Months: "3, 1,,3,12", Years: "2024,2023"})

	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 12}, f.Months)
	assert.Equal(t, []int{2024, 2023}, f.Years)
	assert.False(t, f.IsEmpty())
}

func TestParseFilter_NonNumericToken(t *testing.T) {
	_, err := ParseFilter(Params{Months: "1,feb"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), `"feb"`)

	_, err = ParseFilter(Params{Years: "20x4"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseFilter_OutOfRange(t *testing.T) {
	for _, p := range []Params{
		{Months: "0"},
		{Months: "13"},
		{Years: "-1"},
		{Years: "10000"},
	} {
		_, err := ParseFilter(p)
		assert.ErrorIs(t, err, ErrInvalidFilter, "params %+v", p)
	}
}

func TestParseFilter_WhitespaceOnlyListIsNoRestriction(t *testing.T) {
	f, err := ParseFilter(Params{Months: "  ", Years: ","})

	require.NoError(t, err)
	assert.Empty(t, f.Months)
	assert.Empty(t, f.Years)
}

func TestParseFilter_PassThroughFields(t *testing.T) {
	f, err := ParseFilter(Params{CategoryID: "nonexistent", Description: "Mercado"})

	require.NoError(t, err)
	require.NotNil(t, f.CategoryID)
	assert.Equal(t, "nonexistent", *f.CategoryID)
	assert.Equal(t, "Mercado", f.Description)
}
