// Package pointer implements RFC 6901 JSON Pointers as immutable token paths.
//
// A Path is an ordered sequence of reference tokens. The empty sequence
// addresses the whole document. Tokens are kept in their decoded form; the
// escaped form (~0 for '~', ~1 for '/') only exists in the rendered string.
package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentflare-ai/jsonpointer"
)

// AppendToken is the RFC 6902 "end of array" marker.
const AppendToken = "-"

// ErrSyntax is returned for strings that are not valid JSON Pointers.
var ErrSyntax = errors.New("invalid JSON pointer")

// ErrRoot is returned when asking the root path for its parent or last token.
var ErrRoot = errors.New("root path has no parent")

// Token is a single decoded reference token.
type Token struct {
	s string
}

// NewToken returns a token for the decoded string s.
func NewToken(s string) Token { return Token{s: s} }

// IndexToken returns the token addressing array position i.
func IndexToken(i int) Token { return Token{s: strconv.Itoa(i)} }

// Field returns the token as a document field name.
func (t Token) Field() string { return t.s }

// IsAppend reports whether t is the "-" marker.
func (t Token) IsAppend() bool { return t.s == AppendToken }

// IsArrayIndex reports whether t consists only of decimal digits.
func (t Token) IsArrayIndex() bool {
	if t.s == "" {
		return false
	}
	for i := 0; i < len(t.s); i++ {
		if t.s[i] < '0' || t.s[i] > '9' {
			return false
		}
	}
	return true
}

// Index returns the array index t denotes. Tokens with leading zeros, the
// append marker and non-numeric tokens are not indices.
func (t Token) Index() (int, bool) {
	if !t.IsArrayIndex() {
		return 0, false
	}
	idx, err := jsonpointer.ParseArrayIndex(t.s)
	if err != nil {
		return 0, false
	}
	if idx > uint64(maxInt) {
		return 0, false
	}
	return int(idx), true
}

const maxInt = int(^uint(0) >> 1)

// String returns the escaped form of t.
func (t Token) String() string { return escape(t.s) }

// Path is an immutable JSON Pointer. The zero value is the root.
type Path struct {
	toks []Token
}

// Root is the empty pointer.
var Root = Path{}

// New builds a path from decoded tokens.
func New(tokens ...string) Path {
	if len(tokens) == 0 {
		return Root
	}
	toks := make([]Token, len(tokens))
	for i, s := range tokens {
		toks[i] = Token{s: s}
	}
	return Path{toks: toks}
}

// Parse parses the RFC 6901 string form of a pointer.
func Parse(s string) (Path, error) {
	if s == "" {
		return Root, nil
	}
	if !strings.HasPrefix(s, "/") {
		return Root, fmt.Errorf("%w %q: must start with '/'", ErrSyntax, s)
	}
	if err := checkEscapes(s); err != nil {
		return Root, err
	}
	p, err := jsonpointer.New(s)
	if err != nil {
		return Root, fmt.Errorf("%w %q: %v", ErrSyntax, s, err)
	}
	toks := make([]Token, 0, len(p))
	for _, seg := range p {
		toks = append(toks, Token{s: string(seg)})
	}
	return Path{toks: toks}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func checkEscapes(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			continue
		}
		if i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1') {
			return fmt.Errorf("%w %q: bad escape at offset %d", ErrSyntax, s, i)
		}
	}
	return nil
}

func escape(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

// String renders p in RFC 6901 syntax. The root renders as "".
func (p Path) String() string {
	if len(p.toks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range p.toks {
		b.WriteByte('/')
		b.WriteString(escape(t.s))
	}
	return b.String()
}

// IsRoot reports whether p addresses the whole document.
func (p Path) IsRoot() bool { return len(p.toks) == 0 }

// Len returns the number of tokens.
func (p Path) Len() int { return len(p.toks) }

// Get returns the i'th token.
func (p Path) Get(i int) Token { return p.toks[i] }

// Tokens returns a copy of the tokens of p.
func (p Path) Tokens() []Token {
	out := make([]Token, len(p.toks))
	copy(out, p.toks)
	return out
}

// Append returns p extended by the decoded token s.
func (p Path) Append(s string) Path {
	return p.with(Token{s: s})
}

// AppendIndex returns p extended by an array index.
func (p Path) AppendIndex(i int) Path {
	return p.with(IndexToken(i))
}

// AppendToken returns p extended by t.
func (p Path) AppendToken(t Token) Path {
	return p.with(t)
}

func (p Path) with(t Token) Path {
	toks := make([]Token, len(p.toks)+1)
	copy(toks, p.toks)
	toks[len(p.toks)] = t
	return Path{toks: toks}
}

// WithToken returns a copy of p whose i'th token is replaced by t.
func (p Path) WithToken(i int, t Token) Path {
	toks := p.Tokens()
	toks[i] = t
	return Path{toks: toks}
}

// Parent returns p without its last token.
func (p Path) Parent() (Path, error) {
	if p.IsRoot() {
		return Root, ErrRoot
	}
	return Path{toks: p.toks[:len(p.toks)-1:len(p.toks)-1]}, nil
}

// Last returns the final token of p.
func (p Path) Last() (Token, error) {
	if p.IsRoot() {
		return Token{}, ErrRoot
	}
	return p.toks[len(p.toks)-1], nil
}

// Equal reports whether p and q have the same tokens.
func (p Path) Equal(q Path) bool {
	if len(p.toks) != len(q.toks) {
		return false
	}
	for i := range p.toks {
		if p.toks[i] != q.toks[i] {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(b []byte) error {
	q, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = q
	return nil
}
