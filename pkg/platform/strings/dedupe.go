// Package strings normalizes the string lists carried by restrictions and
// compliance rules.
package strings

import (
	"strings"
)

// DedupeAndTrimLower drops empty and duplicate entries after trimming and
// lowercasing, keeping first-seen order. Used for restriction category names
// such as "gambling" or "crypto".
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(v string) string { return strings.ToLower(strings.TrimSpace(v)) })
}

// NormalizeCountryCodes trims, uppercases and dedupes ISO 3166-1 alpha-2
// codes:
//
//	NormalizeCountryCodes([]string{" us", "US", "de", ""})
//	// Returns: []string{"US", "DE"}
func NormalizeCountryCodes(values []string) []string {
	return dedupe(values, NormalizeCountryCode)
}

// NormalizeCountryCode canonicalizes a single country code.
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}

	return result
}
