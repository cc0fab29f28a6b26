// Package service provides the business logic for hash derivation and for
// saving, listing and exchanging configurations, delegating persistence to
// a key-value repository.
package service

import (
	"github.com/atinyakov/PassHash/internal/digest"
	"github.com/atinyakov/PassHash/internal/format"
	"github.com/atinyakov/PassHash/internal/models"
	"github.com/atinyakov/PassHash/internal/obfuscate"
)

// HashRequest carries everything needed to derive and format a hash.
type HashRequest struct {
	Text          string               `json:"text"`
	Salt          string               `json:"salt"`
	SecondarySalt string               `json:"secondarySalt"`
	Algorithm     models.HashAlgorithm `json:"algorithm"`
	GroupSize     int                  `json:"groupSize"`
	Format        models.DisplayFormat `json:"format"`
}

// HashResult is the outcome of a derivation. Only Formatted is meant to be
// copied to the clipboard.
type HashResult struct {
	Hash      string `json:"hash"`
	Formatted string `json:"formatted"`
}

// HashService derives obfuscated hashes. It has no state; the zero value is
// ready to use.
type HashService struct{}

// NewHashService constructs a HashService.
func NewHashService() *HashService {
	return &HashService{}
}

// CombinedSalt joins the primary and secondary salt with a colon. An empty
// secondary salt adds nothing.
func CombinedSalt(primary, secondary string) string {
	if secondary == "" {
		return primary
	}
	return primary + ":" + secondary
}

// Generate returns the obfuscated hash of text with the combined salts.
// Identical inputs always produce identical output.
func (s *HashService) Generate(text, salt, secondarySalt string, alg models.HashAlgorithm) string {
	raw := digest.Sum(text+CombinedSalt(salt, secondarySalt), alg)
	return obfuscate.Digest(raw)
}

// Derive runs the whole pipeline and formats the result for display.
func (s *HashService) Derive(req HashRequest) HashResult {
	h := s.Generate(req.Text, req.Salt, req.SecondarySalt, req.Algorithm)
	return HashResult{
		Hash:      h,
		Formatted: format.Format(h, req.GroupSize, req.Format),
	}
}
