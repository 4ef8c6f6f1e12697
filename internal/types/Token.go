/*

This is the identity type for tokens. A token is either an atomic asset or the
liquidity share minted from a pair of atomic assets.

*/

package types

import (
	"strings"
)

// TokenKind distinguishes atomic assets from minted liquidity shares.
type TokenKind uint8

const (
	KindAtomic TokenKind = iota // base asset, e.g. "t0"
	KindMinted                  // LP share of a pair, e.g. "t0+t1"
)

// mintedSeparator joins the constituents of a minted token in its text form.
const mintedSeparator = "+"

// Token identifies a fungible asset. The zero value is not a valid token.
// Token is comparable and can be used as a map key.
type Token struct {
	kind TokenKind
	sym0 string
	sym1 string // empty for atomic tokens
}

// Atomic returns the base asset with the given symbol.
func Atomic(symbol string) Token {
	return Token{kind: KindAtomic, sym0: symbol}
}

// Mint returns the liquidity share token for the pair {a, b}.
// Both tokens must be atomic and distinct. The constituents are stored in
// canonical order, so Mint(a, b) and Mint(b, a) are the same token.
func Mint(a, b Token) (Token, error) {
	if !a.IsAtomic() || !b.IsAtomic() {
		return Token{}, ErrInvalidMint.Wrapf("cannot mint from non-atomic pair %s/%s", a, b)
	}
	if a == b {
		return Token{}, ErrInvalidMint.Wrapf("cannot mint from identical tokens %s", a)
	}
	if b.Less(a) {
		a, b = b, a
	}
	return Token{kind: KindMinted, sym0: a.sym0, sym1: b.sym0}, nil
}

// MustMint is like Mint but panics on an invalid pair. It is meant for
// fixed, known-good pairs in setup code.
func MustMint(a, b Token) Token {
	t, err := Mint(a, b)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Token) Kind() TokenKind { return t.kind }

func (t Token) IsAtomic() bool { return t.kind == KindAtomic && t.sym0 != "" }

func (t Token) IsMinted() bool { return t.kind == KindMinted }

// IsZero reports whether t is the zero Token.
func (t Token) IsZero() bool { return t == Token{} }

// Symbol returns the symbol of an atomic token, or the text form of a
// minted one.
func (t Token) Symbol() string {
	if t.kind == KindAtomic {
		return t.sym0
	}
	return t.String()
}

// Constituents returns the two atomic tokens a minted token was minted
// from. ok is false for atomic tokens.
func (t Token) Constituents() (t0, t1 Token, ok bool) {
	if t.kind != KindMinted {
		return Token{}, Token{}, false
	}
	return Atomic(t.sym0), Atomic(t.sym1), true
}

// Compare defines the total order over tokens: every atomic token sorts
// before every minted token, atomic tokens order by symbol, minted tokens
// order by (symbol0, symbol1). It returns -1, 0 or +1.
func (t Token) Compare(o Token) int {
	if t.kind != o.kind {
		if t.kind < o.kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(t.sym0, o.sym0); c != 0 {
		return c
	}
	return strings.Compare(t.sym1, o.sym1)
}

func (t Token) Less(o Token) bool { return t.Compare(o) < 0 }

// OrderPair returns a and b in canonical (ascending) order.
func OrderPair(a, b Token) (Token, Token) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

func (t Token) String() string {
	if t.kind == KindMinted {
		return t.sym0 + mintedSeparator + t.sym1
	}
	return t.sym0
}

// ParseToken parses the text form produced by String: "sym" for an atomic
// token and "sym0+sym1" for a minted one.
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Token{}, ErrInvalidToken.Wrap("empty token")
	}
	parts := strings.Split(s, mintedSeparator)
	switch len(parts) {
	case 1:
		return Atomic(parts[0]), nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Token{}, ErrInvalidToken.Wrapf("malformed minted token %q", s)
		}
		return Mint(Atomic(parts[0]), Atomic(parts[1]))
	default:
		return Token{}, ErrInvalidToken.Wrapf("malformed token %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Token) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return nil, ErrInvalidToken.Wrap("cannot marshal zero token")
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Token) UnmarshalText(text []byte) error {
	parsed, err := ParseToken(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
