// Package syntax builds a location-accurate syntax tree from raw ATIP
// document text. Every node retains its exact byte extent in the original
// text so downstream consumers (diagnostics, the fix composer) can address
// and patch the document without re-parsing.
//
// The tree is rebuilt fresh for each lint pass and is read-only afterwards.
package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Kind identifies the JSON value kind of a node.
type Kind uint8

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	}
	return "invalid"
}

// Member is one ordered key/value pair of an object node.
type Member struct {
	Key     string
	KeyNode *Node // extent of the key string literal, including quotes
	Value   *Node
}

// Node is a single node of the syntax tree. Offset and Length describe the
// half-open byte extent [Offset, Offset+Length) in the source text.
type Node struct {
	Kind   Kind
	Offset int
	Length int

	Members []Member // objects, in declaration order
	Elems   []*Node  // arrays, in declaration order

	Str  string  // KindString
	Num  float64 // KindNumber
	Bool bool    // KindBool
}

// End returns the byte offset one past the node's last byte.
func (n *Node) End() int { return n.Offset + n.Length }

// Member returns the value node for key, or nil when the key is absent.
// Later duplicates win, matching encoding/json object semantics.
func (n *Node) Member(key string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	var found *Node
	for _, m := range n.Members {
		if m.Key == key {
			found = m.Value
		}
	}
	return found
}

// Lookup resolves a structural path (string keys and int indices) against
// the subtree rooted at n. Returns nil when any step does not resolve.
func (n *Node) Lookup(path ...any) *Node {
	cur := n
	for _, step := range path {
		if cur == nil {
			return nil
		}
		switch s := step.(type) {
		case string:
			cur = cur.Member(s)
		case int:
			if cur.Kind != KindArray || s < 0 || s >= len(cur.Elems) {
				return nil
			}
			cur = cur.Elems[s]
		default:
			return nil
		}
	}
	return cur
}

// ParseError is a malformed-document failure. It is fatal for the file:
// nothing downstream runs when Parse returns one.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %s", e.Offset, e.Msg)
}

// Parse scans text into a syntax tree. The root must be a single JSON value
// followed only by whitespace.
func Parse(text string) (*Node, error) {
	s := &scanner{src: text}
	s.skipSpace()
	root, err := s.value()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if s.pos != len(s.src) {
		return nil, s.errf("unexpected trailing content")
	}
	return root, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) errf(format string, args ...any) *ParseError {
	return &ParseError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) peek() (byte, bool) {
	if s.pos >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos], true
}

func (s *scanner) value() (*Node, error) {
	c, ok := s.peek()
	if !ok {
		return nil, s.errf("unexpected end of input")
	}
	switch {
	case c == '{':
		return s.object()
	case c == '[':
		return s.array()
	case c == '"':
		return s.stringLit()
	case c == 't' || c == 'f':
		return s.boolLit()
	case c == 'n':
		return s.nullLit()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.numberLit()
	}
	return nil, s.errf("unexpected character %q", c)
}

func (s *scanner) object() (*Node, error) {
	start := s.pos
	s.pos++ // '{'
	node := &Node{Kind: KindObject, Offset: start}
	s.skipSpace()
	if c, ok := s.peek(); ok && c == '}' {
		s.pos++
		node.Length = s.pos - start
		return node, nil
	}
	for {
		s.skipSpace()
		if c, ok := s.peek(); !ok || c != '"' {
			return nil, s.errf("expected object key")
		}
		keyNode, err := s.stringLit()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if c, ok := s.peek(); !ok || c != ':' {
			return nil, s.errf("expected ':' after object key")
		}
		s.pos++
		s.skipSpace()
		val, err := s.value()
		if err != nil {
			return nil, err
		}
		node.Members = append(node.Members, Member{Key: keyNode.Str, KeyNode: keyNode, Value: val})
		s.skipSpace()
		c, ok := s.peek()
		if !ok {
			return nil, s.errf("unterminated object")
		}
		if c == ',' {
			s.pos++
			continue
		}
		if c == '}' {
			s.pos++
			node.Length = s.pos - start
			return node, nil
		}
		return nil, s.errf("expected ',' or '}' in object")
	}
}

func (s *scanner) array() (*Node, error) {
	start := s.pos
	s.pos++ // '['
	node := &Node{Kind: KindArray, Offset: start}
	s.skipSpace()
	if c, ok := s.peek(); ok && c == ']' {
		s.pos++
		node.Length = s.pos - start
		return node, nil
	}
	for {
		s.skipSpace()
		el, err := s.value()
		if err != nil {
			return nil, err
		}
		node.Elems = append(node.Elems, el)
		s.skipSpace()
		c, ok := s.peek()
		if !ok {
			return nil, s.errf("unterminated array")
		}
		if c == ',' {
			s.pos++
			continue
		}
		if c == ']' {
			s.pos++
			node.Length = s.pos - start
			return node, nil
		}
		return nil, s.errf("expected ',' or ']' in array")
	}
}

func (s *scanner) stringLit() (*Node, error) {
	start := s.pos
	s.pos++ // opening quote
	var b strings.Builder
	for {
		if s.pos >= len(s.src) {
			return nil, s.errf("unterminated string")
		}
		c := s.src[s.pos]
		switch {
		case c == '"':
			s.pos++
			return &Node{Kind: KindString, Offset: start, Length: s.pos - start, Str: b.String()}, nil
		case c == '\\':
			r, err := s.escape()
			if err != nil {
				return nil, err
			}
			b.WriteRune(r)
		case c < 0x20:
			return nil, s.errf("control character in string")
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
}

func (s *scanner) escape() (rune, error) {
	s.pos++ // backslash
	if s.pos >= len(s.src) {
		return 0, s.errf("unterminated escape")
	}
	c := s.src[s.pos]
	s.pos++
	switch c {
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case '/':
		return '/', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		hi, err := s.hex4()
		if err != nil {
			return 0, err
		}
		if utf16.IsSurrogate(rune(hi)) && s.pos+1 < len(s.src) && s.src[s.pos] == '\\' && s.src[s.pos+1] == 'u' {
			s.pos += 2
			lo, err := s.hex4()
			if err != nil {
				return 0, err
			}
			return utf16.DecodeRune(rune(hi), rune(lo)), nil
		}
		return rune(hi), nil
	}
	return 0, s.errf("invalid escape character %q", c)
}

func (s *scanner) hex4() (uint16, error) {
	if s.pos+4 > len(s.src) {
		return 0, s.errf("truncated unicode escape")
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+4], 16, 16)
	if err != nil {
		return 0, s.errf("invalid unicode escape")
	}
	s.pos += 4
	return uint16(v), nil
}

func (s *scanner) boolLit() (*Node, error) {
	start := s.pos
	if strings.HasPrefix(s.src[s.pos:], "true") {
		s.pos += 4
		return &Node{Kind: KindBool, Offset: start, Length: 4, Bool: true}, nil
	}
	if strings.HasPrefix(s.src[s.pos:], "false") {
		s.pos += 5
		return &Node{Kind: KindBool, Offset: start, Length: 5, Bool: false}, nil
	}
	return nil, s.errf("invalid literal")
}

func (s *scanner) nullLit() (*Node, error) {
	start := s.pos
	if strings.HasPrefix(s.src[s.pos:], "null") {
		s.pos += 4
		return &Node{Kind: KindNull, Offset: start, Length: 4}, nil
	}
	return nil, s.errf("invalid literal")
}

func (s *scanner) numberLit() (*Node, error) {
	start := s.pos
	if c, _ := s.peek(); c == '-' {
		s.pos++
	}
	intStart := s.pos
	digits := 0
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
		digits++
	}
	if digits == 0 {
		return nil, s.errf("invalid number")
	}
	if digits > 1 && s.src[intStart] == '0' {
		return nil, s.errf("invalid number")
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		frac := 0
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
			frac++
		}
		if frac == 0 {
			return nil, s.errf("invalid number")
		}
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		exp := 0
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
			exp++
		}
		if exp == 0 {
			return nil, s.errf("invalid number")
		}
	}
	lit := s.src[start:s.pos]
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, &ParseError{Offset: start, Msg: "invalid number"}
	}
	return &Node{Kind: KindNumber, Offset: start, Length: s.pos - start, Num: f}, nil
}
