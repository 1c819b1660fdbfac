// Package idgen derives entity IDs. Connector types and bindings use
// deterministic IDs hashed from their natural keys so that independent
// services computing an id for the same key always agree; peripheral
// entities use random nanoid-backed IDs.
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes identify the entity kind at a glance.
const (
	TypePrefix    = "ct-"
	BindingPrefix = "ds-"
	SchemaPrefix  = "cs-"
)

// Alphabet defines the character set used for random IDs.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// hashLen is the number of hex characters kept from the hash (10 bytes).
const hashLen = 20

// derive hashes the domain tag and key parts, NUL-separated so that no two
// distinct inputs can collide by concatenation.
func derive(prefix, tag string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return prefix + hex.EncodeToString(h.Sum(nil))[:hashLen]
}

// ConnectorTypeID returns the deterministic ID for a connector type name.
func ConnectorTypeID(typeName string) string {
	return derive(TypePrefix, "connector-type", typeName)
}

// BindingID returns the deterministic ID for an (account, connector type)
// pair. The same pair always yields the same ID, which is what enforces the
// one-binding-per-pair invariant at the storage layer.
func BindingID(accountID, typeID string) string {
	return derive(BindingPrefix, "data-source", accountID, typeID)
}

// NewSchemaID returns a new random config-schema ID.
func NewSchemaID() (string, error) {
	id, err := nanoid.Generate(Alphabet, 10)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return SchemaPrefix + id, nil
}
