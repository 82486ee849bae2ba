package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureCSVParser_ValidFile(t *testing.T) {
	csvContent := `id,incomeValue,age,city,incomeValueCategory
1001,85000,34,Москва,50k_to_100k
1002,42000.5,27,Казань,below_50k`

	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures(csvContent)

	require.Empty(t, errors, "Expected no parse errors")
	require.Len(t, rows, 2, "Expected 2 rows")

	assert.Equal(t, int64(1001), rows[0].ID())
	assert.Equal(t, 85000.0, rows[0].NumericOr("incomeValue", 0))
	assert.Equal(t, 34.0, rows[0].NumericOr("age", 0))

	city, ok := rows[0].Categorical("city")
	assert.True(t, ok)
	assert.Equal(t, "Москва", city)

	assert.Equal(t, 42000.5, rows[1].NumericOr("incomeValue", 0))
}

func TestFeatureCSVParser_MissingTokensSkipped(t *testing.T) {
	csvContent := `id,incomeValue,city,ovrd_sum
1001,nan,,none`

	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures(csvContent)

	require.Empty(t, errors)
	require.Len(t, rows, 1)

	_, ok := rows[0].Numeric("incomeValue")
	assert.False(t, ok, "nan cell must be absent")
	_, ok = rows[0].Categorical("city")
	assert.False(t, ok, "empty cell must be absent")
	_, ok = rows[0].Numeric("ovrd_sum")
	assert.False(t, ok, "none cell must be absent")
}

func TestFeatureCSVParser_MissingIDColumn(t *testing.T) {
	csvContent := `incomeValue,age
85000,34`

	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures(csvContent)

	assert.Empty(t, rows)
	require.Len(t, errors, 1)
	assert.ErrorIs(t, errors[0], ErrMissingIDColumn)
}

func TestFeatureCSVParser_BadIDRowsReported(t *testing.T) {
	csvContent := `id,incomeValue
abc,85000
1002,60000`

	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures(csvContent)

	require.Len(t, rows, 1, "valid row survives the bad one")
	assert.Equal(t, int64(1002), rows[0].ID())
	assert.Len(t, errors, 1)
}

func TestFeatureCSVParser_EmptyFile(t *testing.T) {
	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures("")

	assert.Empty(t, rows)
	require.NotEmpty(t, errors)
	assert.ErrorIs(t, errors[0], ErrEmptyCSV)
}

func TestFeatureCSVParser_HeaderOnly(t *testing.T) {
	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures("id,incomeValue")

	assert.Empty(t, rows)
	require.NotEmpty(t, errors)
	assert.ErrorIs(t, errors[0], ErrNoDataRows)
}

func TestFeatureCSVParser_ThousandsSeparators(t *testing.T) {
	csvContent := `id,incomeValue
1001,"1,250,000"`

	parser := NewFeatureCSVParser()
	rows, errors := parser.ParseFeatures(csvContent)

	require.Empty(t, errors)
	require.Len(t, rows, 1)
	assert.Equal(t, 1250000.0, rows[0].NumericOr("incomeValue", 0))
}
