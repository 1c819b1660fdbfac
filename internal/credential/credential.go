// Package credential generates, hashes, and verifies opaque bearer
// credentials for data-source bindings.
//
// Secrets are URL-safe random tokens carrying at least 256 bits of entropy.
// Digests use argon2id in the standard PHC string format, so a digest is
// self-describing and verification needs no state beyond the digest itself.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/argon2"
)

// secretAlphabet is the 64-character URL-safe token alphabet.
const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// secretLength of 43 characters over a 64-symbol alphabet yields 258 bits.
const secretLength = 43

// Params are the argon2id cost parameters embedded in every digest.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams take tens of milliseconds per hash on commodity hardware.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// Manager generates and verifies binding credentials.
type Manager struct {
	params Params
}

// New returns a Manager with the given cost parameters.
func New(p Params) *Manager {
	return &Manager{params: p}
}

// Default returns a Manager with DefaultParams.
func Default() *Manager {
	return New(DefaultParams)
}

// Generate returns a new random secret. The caller receives the plaintext
// exactly once; only the digest is ever stored.
func (m *Manager) Generate() (string, error) {
	secret, err := nanoid.Generate(secretAlphabet, secretLength)
	if err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return secret, nil
}

// Hash derives a one-way digest of the secret. The output embeds the
// algorithm, cost parameters, and salt:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>
func (m *Manager) Hash(secret string) (string, error) {
	salt := make([]byte, m.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, m.params.Time, m.params.Memory, m.params.Threads, m.params.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		m.params.Memory, m.params.Time, m.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches digest. It returns false, never an
// error, on mismatch, malformed digest, or internal failure; callers cannot
// distinguish a wrong secret from a corrupt digest. The final comparison is
// constant time.
func (m *Manager) Verify(secret, digest string) bool {
	p, salt, key, err := parseDigest(digest)
	if err != nil {
		return false
	}
	derived := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// parseDigest splits a PHC argon2id string into its parameters, salt, and key.
func parseDigest(digest string) (Params, []byte, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("malformed digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return Params{}, nil, nil, fmt.Errorf("zero cost parameter")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed key: %w", err)
	}
	if len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("empty key")
	}
	return p, salt, key, nil
}
