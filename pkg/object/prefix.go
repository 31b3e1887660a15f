package object

import (
	"fmt"
	"strings"
)

// MinPrefixHexLen is the shortest hex string accepted as an object prefix.
const MinPrefixHexLen = 4

// Prefix is a partial object name used to look up candidate objects.
// It is a lookup key only and is never persisted.
type Prefix struct {
	hex string
}

// NewPrefix validates hex as an object name prefix. The input is
// normalized to lowercase.
func NewPrefix(hex string) (Prefix, error) {
	hex = strings.ToLower(strings.TrimSpace(hex))
	if len(hex) < MinPrefixHexLen {
		return Prefix{}, fmt.Errorf("prefix %q: need at least %d hex characters", hex, MinPrefixHexLen)
	}
	if len(hex) > HexSize {
		return Prefix{}, fmt.Errorf("prefix %q: longer than %d hex characters", hex, HexSize)
	}
	if !isHex(hex) {
		return Prefix{}, fmt.Errorf("prefix %q: invalid hex", hex)
	}
	return Prefix{hex: hex}, nil
}

// MustPrefix is like NewPrefix but panics on invalid input.
func MustPrefix(hex string) Prefix {
	p, err := NewPrefix(hex)
	if err != nil {
		panic(err)
	}
	return p
}

// PrefixFromHash returns the full-length prefix for h.
func PrefixFromHash(h Hash) Prefix {
	return Prefix{hex: string(h)}
}

// HexLen returns the number of hex characters in the prefix.
func (p Prefix) HexLen() int { return len(p.hex) }

// Bits returns the number of significant bits in the prefix.
func (p Prefix) Bits() int { return len(p.hex) * 4 }

// IsFullLength reports whether the prefix spans a whole object name.
func (p Prefix) IsFullLength() bool { return len(p.hex) == HexSize }

// IsZero reports whether p is the zero Prefix.
func (p Prefix) IsZero() bool { return p.hex == "" }

// Matches reports whether h starts with the prefix.
func (p Prefix) Matches(h Hash) bool {
	return p.hex != "" && strings.HasPrefix(string(h), p.hex)
}

func (p Prefix) String() string { return p.hex }
