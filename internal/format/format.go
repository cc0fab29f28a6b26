// Package format filters and groups hashes for display.
package format

import (
	"strings"

	"github.com/atinyakov/PassHash/internal/models"
)

// GroupSizes are the group sizes offered to users.
var GroupSizes = []int{1, 2, 4, 8}

// DefaultGroupSize is the grouping used when none is chosen.
const DefaultGroupSize = 4

// Format filters hash according to f and splits the result into
// space separated groups of groupSize characters. A groupSize of 1 or less
// disables grouping.
func Format(hash string, groupSize int, f models.DisplayFormat) string {
	filtered := Filter(hash, f)
	if groupSize <= 1 {
		return filtered
	}

	chars := []rune(filtered)
	groups := make([]string, 0, len(chars)/groupSize+1)
	for i := 0; i < len(chars); i += groupSize {
		end := min(i+groupSize, len(chars))
		groups = append(groups, string(chars[i:end]))
	}
	return strings.Join(groups, " ")
}

// Filter keeps the characters selected by f. FormatLetters keeps only a-f.
func Filter(hash string, f models.DisplayFormat) string {
	var keep func(c byte) bool
	switch f {
	case models.FormatLetters:
		keep = func(c byte) bool { return c >= 'a' && c <= 'f' }
	case models.FormatNumbers:
		keep = func(c byte) bool { return c >= '0' && c <= '9' }
	default:
		return hash
	}

	b := make([]byte, 0, len(hash))
	for i := 0; i < len(hash); i++ {
		if keep(hash[i]) {
			b = append(b, hash[i])
		}
	}
	return string(b)
}
