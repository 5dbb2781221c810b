package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "<kind>:<digest>" where digest covers the JSON encoding of
// parts.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// keyType returns the kind of a key produced by a Keyer, skipping any
// ScopedKeyer prefix. Keys without a kind report "other".
func keyType(key string) string {
	head, _, ok := cutLast(key, ":")
	if !ok {
		return "other"
	}
	if _, kind, ok := cutLast(head, ":"); ok {
		head = kind
	}
	if head == "" {
		return "other"
	}
	return head
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
