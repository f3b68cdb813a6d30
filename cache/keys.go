package cache

import (
	"crypto/md5" // #nosec G501 -- used for key derivation, not security
	"encoding/hex"
	"regexp"
)

// Prefix selects the cached view of an identifier.
type Prefix string

// Cache views.
const (
	PrefixFull          Prefix = ""
	PrefixPartial       Prefix = "partial_"
	PrefixList          Prefix = "list_"
	PrefixListRecursive Prefix = "list_r_"
)

// MaxKeyLength bounds derived keys.
const MaxKeyLength = 200

var keyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_%\-&]`)

// Key derives the store key of identifier in the given view: the first ten
// hex digits of md5(identifier+prefix) followed by the identifier with
// unsafe characters replaced, truncated to MaxKeyLength.
func Key(identifier string, prefix Prefix) string {
	sum := md5.Sum([]byte(identifier + string(prefix))) // #nosec G401
	key := hex.EncodeToString(sum[:])[:10] + keyUnsafe.ReplaceAllString(identifier, "_")
	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
	}
	return key
}
