// Package digest computes Base64 encoded digests for the supported hash
// algorithms. Output must stay byte-identical to the reference algorithms:
// passwords already derived from it depend on every bit.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"

	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"

	"github.com/atinyakov/PassHash/internal/models"
)

// New returns a fresh hash.Hash for the algorithm. Unknown algorithms fall
// back to SHA-256.
//
// SHA3 is the original Keccak-512 (pre-FIPS padding), which is what the
// "SHA3" option has always produced.
func New(alg models.HashAlgorithm) hash.Hash {
	switch alg {
	case models.MD5:
		return md5.New()
	case models.SHA1:
		return sha1.New()
	case models.SHA224:
		return sha256.New224()
	case models.SHA256:
		return sha256.New()
	case models.SHA384:
		return sha512.New384()
	case models.SHA512:
		return sha512.New()
	case models.SHA3:
		return sha3.NewLegacyKeccak512()
	case models.RIPEMD160:
		return ripemd160.New()
	default:
		return sha256.New()
	}
}

// Sum hashes the UTF-8 bytes of message and returns the padded standard
// Base64 encoding of the digest.
func Sum(message string, alg models.HashAlgorithm) string {
	h := New(alg)
	_, _ = h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
