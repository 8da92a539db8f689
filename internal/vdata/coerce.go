package vdata

import (
	"math"
	"strconv"
	"strings"
)

// Coerce converts a raw token into a scalar. It never fails: anything that is
// not a boolean or a finite number comes back as a String.
func Coerce(raw string) Value {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ",")
	s = unquote(s)

	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	if n, ok := parseNumber(s); ok {
		return Number(n)
	}
	return String(s)
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// parseNumber accepts the whole string as a decimal number (optionally signed,
// with fraction and exponent) or an unsigned 0x/0o/0b integer literal.
// Empty text is not a number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if strings.ContainsRune(s, '_') {
				return 0, false
			}
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(u), true
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders n the way JavaScript's Number#toString does for the
// values found in data files.
func FormatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s := strconv.FormatFloat(n, 'e', -1, 64)
	// 1e-07 -> 1e-7
	if i := strings.IndexByte(s, 'e'); i >= 0 && len(s) >= i+4 && s[i+2] == '0' {
		s = s[:i+2] + s[i+3:]
	}
	return s
}
