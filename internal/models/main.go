// Package models defines the core data structures for hash generation
// and saved configurations.
package models

import "strings"

// HashAlgorithm identifies the digest used to derive a hash.
type HashAlgorithm string

const (
	MD5       HashAlgorithm = "MD5"
	SHA1      HashAlgorithm = "SHA1"
	SHA256    HashAlgorithm = "SHA256"
	SHA224    HashAlgorithm = "SHA224"
	SHA512    HashAlgorithm = "SHA512"
	SHA384    HashAlgorithm = "SHA384"
	SHA3      HashAlgorithm = "SHA3"
	RIPEMD160 HashAlgorithm = "RIPEMD160"
)

// DefaultAlgorithm is used whenever an algorithm is not recognized.
const DefaultAlgorithm = SHA256

// HashAlgorithms lists the supported algorithms in display order.
var HashAlgorithms = []HashAlgorithm{MD5, SHA1, SHA256, SHA224, SHA512, SHA384, SHA3, RIPEMD160}

var algorithmLabels = map[HashAlgorithm]string{
	MD5:       "MD5",
	SHA1:      "SHA-1",
	SHA256:    "SHA-256",
	SHA224:    "SHA-224",
	SHA512:    "SHA-512",
	SHA384:    "SHA-384",
	SHA3:      "SHA-3",
	RIPEMD160: "RIPEMD-160",
}

// Label returns the human readable name of the algorithm.
func (a HashAlgorithm) Label() string {
	if l, ok := algorithmLabels[a]; ok {
		return l
	}
	return string(a)
}

// Valid reports whether a is one of the supported algorithms.
func (a HashAlgorithm) Valid() bool {
	_, ok := algorithmLabels[a]
	return ok
}

// ParseHashAlgorithm resolves a value or label (case-insensitive) to an
// algorithm. The second result is false when s names no known algorithm.
func ParseHashAlgorithm(s string) (HashAlgorithm, bool) {
	s = strings.TrimSpace(s)
	for _, a := range HashAlgorithms {
		if strings.EqualFold(s, string(a)) || strings.EqualFold(s, a.Label()) {
			return a, true
		}
	}
	return DefaultAlgorithm, false
}

// VisualizationMethod names the gesture widget that produced a secondary salt.
type VisualizationMethod string

const (
	Keypad         VisualizationMethod = "keypad"
	AndroidPattern VisualizationMethod = "androidPattern"
	BankVault      VisualizationMethod = "bankVault"
)

// Valid reports whether m is a known visualization method.
func (m VisualizationMethod) Valid() bool {
	switch m {
	case Keypad, AndroidPattern, BankVault:
		return true
	}
	return false
}

// DisplayFormat filters the characters of a hash before it is shown or copied.
type DisplayFormat string

const (
	// FormatAll keeps every character.
	FormatAll DisplayFormat = "all"
	// FormatLetters keeps only the lowercase letters a-f.
	FormatLetters DisplayFormat = "letters"
	// FormatNumbers keeps only decimal digits.
	FormatNumbers DisplayFormat = "numbers"
)

// ParseDisplayFormat maps user input to a DisplayFormat, defaulting to FormatAll.
func ParseDisplayFormat(s string) DisplayFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "letters", "letters_only":
		return FormatLetters
	case "numbers", "numbers_only":
		return FormatNumbers
	default:
		return FormatAll
	}
}

// SavedConfig is a named, salt-free hash configuration.
type SavedConfig struct {
	// ID is unique within a store and derived from the creation time.
	ID string `json:"id"`
	// Name is the user supplied label.
	Name string `json:"name"`
	// Text is the input text that gets hashed.
	Text string `json:"text"`
	// Algorithm is the digest used for this configuration.
	Algorithm HashAlgorithm `json:"algorithm"`
	// VisualizationMethod is the gesture widget used for the secondary salt.
	VisualizationMethod VisualizationMethod `json:"visualizationMethod"`
	// Timestamp is the creation time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewConfig holds the user supplied fields of a configuration to be saved.
type NewConfig struct {
	Name                string              `json:"name"`
	Text                string              `json:"text"`
	Algorithm           HashAlgorithm       `json:"algorithm"`
	VisualizationMethod VisualizationMethod `json:"visualizationMethod"`
}
