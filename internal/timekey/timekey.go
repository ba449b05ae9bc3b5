// Package timekey converts "HH:MM:SS" wall-clock text into the integer
// second keys used to index stored events.
package timekey

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeFormatError reports a timestamp that does not split into three
// integer components.
type TimeFormatError struct {
	Input  string
	Reason string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time format %q: %s", e.Input, e.Reason)
}

// Parse returns hours*3600 + minutes*60 + seconds for text of the form
// "H:M:S". Components are parsed as base-10 integers and are not range
// checked, so "25:61:99" is accepted. Whitespace is not trimmed. A result
// that does not fit in an int64 is a *TimeFormatError.
func Parse(text string) (int64, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return 0, &TimeFormatError{
			Input:  text,
			Reason: fmt.Sprintf("expected 3 colon-separated parts, got %d", len(parts)),
		}
	}

	var values [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, &TimeFormatError{
				Input:  text,
				Reason: fmt.Sprintf("component %q is not an integer", p),
			}
		}
		values[i] = n
	}

	h, okH := mulInt64(values[0], 3600)
	m, okM := mulInt64(values[1], 60)
	sum, okHM := addInt64(h, m)
	total, okS := addInt64(sum, values[2])
	if !okH || !okM || !okHM || !okS {
		return 0, &TimeFormatError{Input: text, Reason: "components overflow a 64-bit second count"}
	}
	return total, nil
}

func mulInt64(a, b int64) (int64, bool) {
	if a > math.MaxInt64/b || a < math.MinInt64/b {
		return 0, false
	}
	return a * b, true
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// Format renders a time-key as "HH:MM:SS". Hours are not wrapped at 24.
func Format(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
