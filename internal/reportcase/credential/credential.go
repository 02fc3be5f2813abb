// Package credential generates and hashes reporter access credentials.
//
// The credential is the reporter's only proof of case ownership: no account,
// no login. It is returned exactly once at creation; the system keeps only a
// keyed hash, so a database compromise alone yields nothing usable, while an
// incoming candidate still resolves in one exact-match lookup.
package credential

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// credentialBytes is the raw entropy per credential: 128 bits, comfortably
// above the 96-bit floor.
const credentialBytes = 16

// crockfordAlphabet is Crockford base32: case-insensitive-safe, no I/L/O/U,
// so a credential read aloud or retyped from paper survives the round trip.
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var encoding = base32.NewEncoding(crockfordAlphabet).WithPadding(base32.NoPadding)

// Generate mints a fresh credential: 26 characters of Crockford base32.
func Generate() (string, error) {
	buf := make([]byte, credentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate credential: %w", err)
	}
	return encoding.EncodeToString(buf), nil
}

// Normalize canonicalizes user input before hashing: uppercase, ambiguous
// characters folded (O→0, I/L→1), separators dropped. Crockford decoding
// rules, applied so a credential typed back sloppily still matches.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		switch r {
		case '-', ' ':
			continue
		case 'O':
			b.WriteRune('0')
		case 'I', 'L':
			b.WriteRune('1')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Hasher computes the keyed credential hash. The key lives server-side;
// without it, stored hashes cannot be brute-forced offline against the
// credential space.
type Hasher struct {
	key []byte
}

// NewHasher creates a Hasher from the server-side secret key.
func NewHasher(key string) (*Hasher, error) {
	if key == "" {
		return nil, fmt.Errorf("credential hash key is required")
	}
	raw := []byte(key)
	if len(raw) > 64 {
		// BLAKE2b accepts at most 64 key bytes; fold longer keys down.
		sum := blake2b.Sum256(raw)
		raw = sum[:]
	}
	return &Hasher{key: raw}, nil
}

// Hash returns the hex-encoded keyed BLAKE2b-256 of a normalized credential.
// Deterministic by design: the hash is the lookup key.
func (h *Hasher) Hash(credentialValue string) string {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// Key length is validated in NewHasher; this cannot fail afterwards.
		panic(fmt.Sprintf("credential hasher misconfigured: %v", err))
	}
	mac.Write([]byte(Normalize(credentialValue)))
	return hex.EncodeToString(mac.Sum(nil))
}
