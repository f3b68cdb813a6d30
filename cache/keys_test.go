package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	k := Key("docs/report 2024.pdf", PrefixPartial)
	assert.Len(t, k, 10+len("docs/report 2024.pdf"))
	assert.Equal(t, "docs_report_2024_pdf", k[10:])

	// The view changes the hash, not the readable suffix.
	assert.NotEqual(t, Key("a", PrefixList), Key("a", PrefixListRecursive))
	assert.Equal(t, Key("a", PrefixList)[10:], Key("a", PrefixListRecursive)[10:])

	// Deterministic.
	assert.Equal(t, Key("a/b", PrefixFull), Key("a/b", PrefixFull))

	// Kept characters.
	assert.True(t, strings.HasSuffix(Key("a_b%c-d&e", PrefixFull), "a_b%c-d&e"))
}

func TestKey_Truncated(t *testing.T) {
	long := strings.Repeat("x", 500)
	assert.Len(t, Key(long, PrefixFull), MaxKeyLength)
	assert.NotEqual(t, Key(long, PrefixFull), Key(long, PrefixPartial))
}
