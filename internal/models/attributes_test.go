package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMissingValue(t *testing.T) {
	missing := []interface{}{
		nil,
		math.NaN(),
		float32(math.NaN()),
		"",
		"   ",
		"nan",
		"NaN",
		"none",
		"None",
	}
	for _, v := range missing {
		assert.True(t, IsMissingValue(v), "expected %#v to be missing", v)
	}

	present := []interface{}{
		0.0,
		42,
		"moscow",
		"0",
		false,
	}
	for _, v := range present {
		assert.False(t, IsMissingValue(v), "expected %#v to be present", v)
	}
}

func TestClientAttributes_Numeric(t *testing.T) {
	attrs := ClientAttributes{
		"float":   123.5,
		"int":     int(7),
		"int64":   int64(9),
		"string":  "85000",
		"missing": "nan",
	}

	v, ok := attrs.Numeric("float")
	assert.True(t, ok)
	assert.Equal(t, 123.5, v)

	v, ok = attrs.Numeric("int")
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)

	v, ok = attrs.Numeric("int64")
	assert.True(t, ok)
	assert.Equal(t, 9.0, v)

	// Numeric strings are not coerced: the CSV parser is responsible for
	// typing cells before storage.
	_, ok = attrs.Numeric("string")
	assert.False(t, ok)

	_, ok = attrs.Numeric("missing")
	assert.False(t, ok)

	_, ok = attrs.Numeric("absent")
	assert.False(t, ok)

	assert.Equal(t, 50000.0, attrs.NumericOr("absent", 50000))
}

func TestClientAttributes_Categorical(t *testing.T) {
	attrs := ClientAttributes{
		"city":    "  Москва ",
		"numeric": 42.0,
		"missing": "none",
	}

	v, ok := attrs.Categorical("city")
	assert.True(t, ok)
	assert.Equal(t, "Москва", v)

	_, ok = attrs.Categorical("numeric")
	assert.False(t, ok)

	_, ok = attrs.Categorical("missing")
	assert.False(t, ok)

	assert.Equal(t, "unknown", attrs.CategoricalOr("absent", "unknown"))
}

func TestClientAttributes_ID(t *testing.T) {
	assert.Equal(t, int64(1234), ClientAttributes{"id": int64(1234)}.ID())
	assert.Equal(t, int64(1234), ClientAttributes{"id": 1234.0}.ID())
	assert.Equal(t, int64(0), ClientAttributes{}.ID())
}

func TestClientAttributes_Sanitized(t *testing.T) {
	attrs := ClientAttributes{
		"incomeValue": 85000.0,
		"city":        "nan",
		"age":         math.NaN(),
	}

	clean := attrs.Sanitized()

	assert.Equal(t, 85000.0, clean["incomeValue"])
	assert.Nil(t, clean["city"])
	assert.Nil(t, clean["age"])

	// Original is untouched.
	assert.Equal(t, "nan", attrs["city"])
}
