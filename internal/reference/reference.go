// Package reference generates transaction references shared between the
// initiation step and the webhook confirmation.
package reference

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultPrefix is the organisation tag prepended to every reference.
const DefaultPrefix = "TOEI"

// Generator produces references of the form PREFIX-<ULID>. The ULID embeds a
// millisecond timestamp followed by 80 bits from crypto/rand.
type Generator struct {
	prefix  string
	now     func() time.Time
	entropy *ulid.LockedMonotonicReader
}

// NewGenerator returns a generator for prefix, falling back to DefaultPrefix.
func NewGenerator(prefix string) *Generator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{
		prefix: prefix,
		now:    time.Now,
		entropy: &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rand.Reader, 0),
		},
	}
}

// New returns a fresh reference.
func (g *Generator) New() string {
	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	return g.prefix + "-" + id.String()
}

// Prefix returns the organisation tag.
func (g *Generator) Prefix() string { return g.prefix }
