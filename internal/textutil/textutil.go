package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Hash computes a SHA-256 hex hash of data for change detection.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var (
	lowerUpper     = regexp.MustCompile(`([a-z])([A-Z])`)
	upperUpperWord = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
	upper          = regexp.MustCompile(`([A-Z])`)
)

// SnakeCase converts CamelCase to snake_case, keeping acronyms together:
// "CooldownBetweenCharge" -> "cooldown_between_charge", "TechDPS" -> "tech_dps".
func SnakeCase(s string) string {
	s = lowerUpper.ReplaceAllString(s, "${1}_${2}")
	s = upperUpperWord.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// UnderscoreCase puts an underscore before every capital letter:
// "BonusHealthRegen" -> "bonus_health_regen", "TechDPS" -> "tech_d_p_s".
func UnderscoreCase(s string) string {
	s = upper.ReplaceAllString(s, "_${1}")
	return strings.TrimPrefix(strings.ToLower(s), "_")
}
