package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber is the permissive numeric coercion applied to every data cell.
// Text that is not a finite decimal number yields ok == false. Go literal
// forms that strconv also accepts (hex floats, digit separators) are refused.
func parseNumber(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, '_') {
		return 0, false
	}
	if digits := strings.TrimLeft(s, "+-"); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseNumber exposes the coercion used for survey cells.
func ParseNumber(s string) (float64, bool) {
	return parseNumber(s)
}
