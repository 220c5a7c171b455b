// Package tokenizer turns raw text into the normalised terms the index is
// keyed by. The rules mirror the offline builder exactly: markup, CSS blocks
// and entities are consumed silently, while hyperlinks, e-mail local parts,
// numbers and words become tokens. Any change here must be matched by the
// builder or lookups will silently miss.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token by the rule that produced it.
type Kind int

const (
	KindNone Kind = iota
	KindHyperlink
	KindEmail
	KindNumber
	KindWord
)

func (k Kind) String() string {
	switch k {
	case KindHyperlink:
		return "hyperlink"
	case KindEmail:
		return "email"
	case KindNumber:
		return "number"
	case KindWord:
		return "word"
	default:
		return "none"
	}
}

// Token represents a single normalised term and where it was found in the
// original text.
type Token struct {
	Term     string
	Kind     Kind
	Position int
	Offset   int
	Line     int
}

// Lexer yields tokens lazily. A Lexer is single-use; create a new one to
// restart the sequence.
type Lexer struct {
	text  string
	pos   int
	line  int
	count int
}

// New returns a Lexer positioned at the start of text.
func New(text string) *Lexer {
	return &Lexer{text: text, line: 1}
}

// Next returns the next token, or false once the input is exhausted.
func (l *Lexer) Next() (Token, bool) {
	for l.pos < len(l.text) {
		consumed, tok, emit := scan(l.text, l.pos)
		start := l.pos
		l.pos += consumed
		if !emit {
			if l.text[start] == '\n' {
				l.line += consumed
			}
			continue
		}
		tok.Line = l.line
		tok.Position = l.count
		l.count++
		return tok, true
	}
	return Token{}, false
}

// Line returns the current 1-based line number.
func (l *Lexer) Line() int {
	return l.line
}

// Tokenize drains a fresh Lexer over text.
func Tokenize(text string) []Token {
	lx := New(text)
	tokens := make([]Token, 0, len(text)/8)
	for {
		tok, ok := lx.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Terms returns the distinct terms of text in first-occurrence order.
func Terms(text string) []string {
	lx := New(text)
	seen := make(map[string]struct{})
	terms := make([]string, 0)
	for {
		tok, ok := lx.Next()
		if !ok {
			return terms
		}
		if _, dup := seen[tok.Term]; dup {
			continue
		}
		seen[tok.Term] = struct{}{}
		terms = append(terms, tok.Term)
	}
}

// scan applies the first matching rule at pos. It always consumes at least
// one byte, so repeated calls make progress on any input.
func scan(text string, pos int) (consumed int, tok Token, emit bool) {
	r, w := runeAt(text, pos)
	if isIgnored(r) {
		return w, Token{}, false
	}
	for _, rl := range rules {
		n := rl.match(text, pos)
		if n == 0 {
			continue
		}
		if rl.kind == KindNone {
			return n, Token{}, false
		}
		term := rl.normalize(text[pos : pos+n])
		if term == "" {
			return n, Token{}, false
		}
		return n, Token{Term: term, Kind: rl.kind, Offset: pos}, true
	}
	return w, Token{}, false
}

// ignored characters are skipped before any rule is tried.
const ignored = " []+$|=%*{}/0-\"#>();:!?.,\t\u00a0\u0085\u00e2\x00"

func isIgnored(r rune) bool {
	return strings.ContainsRune(ignored, r)
}

func runeAt(s string, i int) (rune, int) {
	if s[i] < utf8.RuneSelf {
		return rune(s[i]), 1
	}
	return utf8.DecodeRuneInString(s[i:])
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, w := runeAt(s, i)
		if !isSpace(r) {
			break
		}
		i += w
	}
	return i
}

func skipWord(s string, i int) int {
	for i < len(s) {
		r, w := runeAt(s, i)
		if !isWordRune(r) {
			break
		}
		i += w
	}
	return i
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !isSpace(r) {
			n++
		}
	}
	return n
}

func endsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return isSpace(r)
}

// closeAngle returns the index of the first '>' after open, provided at
// least one character sits between them.
func closeAngle(s string, open int) (int, bool) {
	k := strings.IndexByte(s[open+1:], '>')
	if k <= 0 {
		return 0, false
	}
	return open + 1 + k, true
}
