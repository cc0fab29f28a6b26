// Package obfuscate substitutes special characters into a Base64 digest at
// positions derived from the digest's own digits.
package obfuscate

import "strings"

// SpecialChars is the substitution alphabet. Order is significant.
var SpecialChars = []byte{'@', '#', '$', '%', '^', '&', '*', '=', '+', '!', '?', ':', ';', '<', '>'}

// MaxDrivers caps how many digits of the digest drive substitutions.
const MaxDrivers = 10

var stripper = strings.NewReplacer("=", "", "+", "", "/", "")

// Strip removes Base64 padding and symbol characters.
func Strip(raw string) string {
	return stripper.Replace(raw)
}

// DriverSequence returns the first MaxDrivers decimal digits of s in order.
func DriverSequence(s string) []int {
	drivers := make([]int, 0, MaxDrivers)
	for i := 0; i < len(s) && len(drivers) < MaxDrivers; i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			drivers = append(drivers, int(c-'0'))
		}
	}
	return drivers
}

// Apply obfuscates an already stripped digest. The result has the same
// length as the input. Token lookups always read the unmodified input;
// writes go to a separate buffer, so a later driver may overwrite an
// earlier substitution but never reads it.
func Apply(stripped string) string {
	original := []byte(stripped)
	working := make([]byte, len(original))
	copy(working, original)

	for _, idx := range DriverSequence(stripped) {
		v, ok := parseBase36Prefix(token(original, idx))
		if !ok {
			// no numeric value: the reference implementation wrote to a
			// non-index property, which never showed up in the output
			continue
		}
		working[v%len(original)] = SpecialChars[v%len(SpecialChars)]
	}
	return string(working)
}

// Digest strips a raw Base64 digest and obfuscates it.
func Digest(raw string) string {
	return Apply(Strip(raw))
}

// token joins the characters at idx and idx+1; either side is empty when
// it falls outside buf.
func token(buf []byte, idx int) string {
	var b []byte
	if idx < len(buf) {
		b = append(b, buf[idx])
	}
	if idx+1 < len(buf) {
		b = append(b, buf[idx+1])
	}
	return string(b)
}

// parseBase36Prefix reads the longest case-insensitive base-36 prefix of s.
// It reports false when s does not start with a base-36 digit.
func parseBase36Prefix(s string) (int, bool) {
	v, n := 0, 0
	for i := 0; i < len(s); i++ {
		d := base36Digit(s[i])
		if d < 0 {
			break
		}
		v = v*36 + d
		n++
	}
	return v, n > 0
}

func base36Digit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return -1
	}
}
