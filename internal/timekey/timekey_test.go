package timekey

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"10:30:45", 37845},
		{"00:00:00", 0},
		{"12:00:00", 43200},
		{"9:8:7", 32887},
		{"09:08:07", 32887},
		{"23:59:59", 86399},
		{"25:61:99", 25*3600 + 61*60 + 99},
		{"+1:00:00", 3600},
	}

	for _, tc := range tests {
		got, err := Parse(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.expected, got, "input %q", tc.input)
	}
}

func TestParse_NegativeComponentsAreNotRejected(t *testing.T) {
	got, err := Parse("-1:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(-3600), got)
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"10:30",
		"10:xx:45",
		"10:30:45::00",
		"",
		"10:30:",
		" 10:30:45",
		"10: 30:45",
		"10:30:45 ",
		"1.5:00:00",
	}

	for _, in := range inputs {
		_, err := Parse(in)
		require.Error(t, err, "input %q should fail", in)

		var tfe *TimeFormatError
		assert.True(t, errors.As(err, &tfe), "input %q should yield *TimeFormatError", in)
		assert.Equal(t, in, tfe.Input)
	}
}

func TestParse_Overflow(t *testing.T) {
	inputs := []string{
		"9223372036854775807:00:00",
		"99999999999999999:0:0",
		"-9223372036854775808:00:00",
		"0:9223372036854775807:0",
		"2562047788015215:30:08",
		"0:0:99999999999999999999",
	}

	for _, in := range inputs {
		_, err := Parse(in)
		require.Error(t, err, "input %q should fail", in)

		var tfe *TimeFormatError
		require.True(t, errors.As(err, &tfe), "input %q should yield *TimeFormatError", in)
		assert.Equal(t, in, tfe.Input)
	}
}

func TestParse_LargestKey(t *testing.T) {
	// 2562047788015215*3600 + 30*60 + 7 == math.MaxInt64
	got, err := Parse("2562047788015215:30:07")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	got, err = Parse("0:0:-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), got)
}

func TestParse_ErrorMessage(t *testing.T) {
	_, err := Parse("10:30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid time format")
	assert.Contains(t, err.Error(), "got 2")

	_, err = Parse("9223372036854775807:00:00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:00:00", Format(0))
	assert.Equal(t, "10:00:05", Format(36005))
	assert.Equal(t, "09:08:07", Format(32887))
	assert.Equal(t, "26:02:39", Format(25*3600+61*60+99))
	assert.Equal(t, "-01:00:00", Format(-3600))
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, sec := range []int64{0, 1, 59, 60, 3599, 3600, 36000, 86399} {
		got, err := Parse(Format(sec))
		require.NoError(t, err)
		assert.Equal(t, sec, got)
	}
}
