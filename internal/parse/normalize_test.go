package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFloatArtifact(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "Timestamp ID as float", raw: "20240603090000.0", expected: "20240603090000"},
		{name: "Short number", raw: "1234.0", expected: "1234"},
		{name: "Already clean", raw: "1234", expected: "1234"},
		{name: "Surrounding spaces", raw: " 42.0 ", expected: "42"},
		{name: "Real fraction kept", raw: "12.5", expected: "12.5"},
		{name: "Text ending in .0 kept", raw: "v1.0", expected: "v1.0"},
		{name: "Empty", raw: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripFloatArtifact(tc.raw))
		})
	}
}

func TestPassword(t *testing.T) {
	assert.Equal(t, DefaultPassword, Password("0"))
	assert.Equal(t, DefaultPassword, Password("0.0"))
	assert.Equal(t, "1234", Password("1234.0"))
	assert.Equal(t, "00", Password("00"))
	assert.Equal(t, "secret", Password("secret"))
}

func TestID(t *testing.T) {
	assert.Equal(t, "20240603090000", ID("20240603090000.0"))
	assert.Equal(t, "20240603090000", ID("20240603090000"))
}

func TestPadTime(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"9:00", "09:00"},
		{"09:00", "09:00"},
		{"13:30:00", "13:30"},
		{" 7:30 ", "07:30"},
		{"noon", "noon"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, PadTime(tc.raw))
		})
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2024-06-03", Date("2024-06-03"))
	assert.Equal(t, "2024-06-03", Date(" 2024-06-03 00:00:00"))
	assert.Equal(t, "2024-06-03", Date("2024-06-03T00:00:00"))
}
