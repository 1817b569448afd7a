package submission

import (
	"encoding/hex"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ReferenceLength is the number of characters in a generated reference.
const ReferenceLength = 9

// TokenGenerator produces submission reference identifiers.
type TokenGenerator interface {
	Token() string
}

// TokenFunc adapts a function to TokenGenerator.
type TokenFunc func() string

// Token calls f.
func (f TokenFunc) Token() string {
	return f()
}

// DefaultTokenHistory is how many recent references a UUIDTokens generator
// remembers when checking for repeats.
const DefaultTokenHistory = 4096

// UUIDTokens derives short uppercase references from random UUIDs and never
// repeats any of its last history references. Each controller gets its own
// generator unless WithTokens shares one.
type UUIDTokens struct {
	mu      sync.Mutex
	issued  map[string]struct{}
	order   []string
	next    int
	history int
	source  func() uuid.UUID
}

// TokenOption configures a UUIDTokens generator.
type TokenOption func(*UUIDTokens)

// WithTokenHistory bounds the remembered references to n. Values below one
// keep the default.
func WithTokenHistory(n int) TokenOption {
	return func(g *UUIDTokens) {
		if n > 0 {
			g.history = n
		}
	}
}

// NewUUIDTokens returns a generator backed by uuid.New.
func NewUUIDTokens(options ...TokenOption) *UUIDTokens {
	g := &UUIDTokens{source: uuid.New, history: DefaultTokenHistory}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	return g
}

// Token returns a fresh ReferenceLength character reference.
func (g *UUIDTokens) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.issued == nil {
		g.issued = make(map[string]struct{})
	}
	if g.source == nil {
		g.source = uuid.New
	}
	if g.history <= 0 {
		g.history = DefaultTokenHistory
	}
	for {
		id := g.source()
		// the leading bytes of a v4 UUID carry no version or variant bits
		token := strings.ToUpper(hex.EncodeToString(id[:])[:ReferenceLength])
		if _, dup := g.issued[token]; dup {
			continue
		}
		g.remember(token)
		return token
	}
}

// remember records token, evicting the oldest reference once the history is
// full.
func (g *UUIDTokens) remember(token string) {
	if len(g.order) < g.history {
		g.order = append(g.order, token)
	} else {
		delete(g.issued, g.order[g.next])
		g.order[g.next] = token
		g.next = (g.next + 1) % g.history
	}
	g.issued[token] = struct{}{}
}
