package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// rule is one lexical rule. match returns the number of bytes the rule
// consumes at pos, or 0 when it does not apply. Rules without a kind consume
// their match silently.
type rule struct {
	name      string
	kind      Kind
	match     func(text string, pos int) int
	normalize func(raw string) string
}

// rules are tried in order at every scan position; the first match wins.
var rules = []rule{
	{name: "css", match: matchCSS},
	{name: "html_tag", match: matchTag},
	{name: "hyperlink", kind: KindHyperlink, match: matchHyperlink, normalize: normalizeHyperlink},
	{name: "email", kind: KindEmail, match: matchEmail, normalize: normalizeEmail},
	{name: "number", kind: KindNumber, match: matchNumber, normalize: normalizeNumber},
	{name: "html_entity", match: matchEntity},
	{name: "word", kind: KindWord, match: matchWord, normalize: normalizeWord},
	{name: "newline", match: matchNewlines},
}

// matchCSS recognises "sel1, sel2 { ... }". The selector list is a run of
// non-space text in which whitespace may only follow a comma; the block
// needs at least one character between its braces.
func matchCSS(s string, pos int) int {
	if r, _ := runeAt(s, pos); isSpace(r) {
		return 0
	}
	afterComma := false
	i := pos
	for i < len(s) {
		r, w := runeAt(s, i)
		if isSpace(r) {
			j := skipSpace(s, i)
			if j < len(s) && s[j] == '{' {
				if end, ok := closeBlock(s, j); ok {
					return end - pos
				}
			}
			if !afterComma {
				return 0
			}
			afterComma = false
			i = j
			continue
		}
		if r == '{' && i > pos {
			if end, ok := closeBlock(s, i); ok {
				return end - pos
			}
		}
		afterComma = r == ','
		i += w
	}
	return 0
}

func closeBlock(s string, open int) (int, bool) {
	k := strings.IndexByte(s[open+1:], '}')
	if k <= 0 {
		return 0, false
	}
	return open + 1 + k + 1, true
}

// matchTag recognises comments and doctypes ("<!...>") and start or end tags
// whose attributes have the shape name=value.
func matchTag(s string, pos int) int {
	if s[pos] != '<' {
		return 0
	}
	i := pos + 1
	if i < len(s) && s[i] == '!' {
		gt, ok := closeAngle(s, i)
		if !ok {
			return 0
		}
		return gt + 1 - pos
	}
	if i < len(s) && s[i] == '/' {
		i++
	}
	nameStart := i
	i = skipWord(s, i)
	if i == nameStart {
		return 0
	}
	k := strings.IndexByte(s[i:], '>')
	if k < 0 {
		return 0
	}
	if !attrsMatch(s[nameStart:i], s[i:i+k]) {
		return 0
	}
	return i + k + 1 - pos
}

// attrsMatch reports whether attrs is a sequence of name=value pairs, each
// side a non-empty run of characters other than whitespace, '=' and '>'
// (whitespace may precede any of them), optionally closed by "/".
func attrsMatch(name, attrs string) bool {
	segs := strings.Split(attrs, "=")
	if len(segs) == 1 {
		rest := strings.TrimLeftFunc(attrs, isSpace)
		return rest == "" || rest == "/"
	}
	first := segs[0]
	if countNonSpace(first) == 0 {
		// "<ab=c>" reads as tag "a" with attribute "b".
		if first != "" || utf8.RuneCountInString(name) < 2 {
			return false
		}
	} else if endsWithSpace(first) {
		return false
	}
	for _, mid := range segs[1 : len(segs)-1] {
		if countNonSpace(mid) < 2 || endsWithSpace(mid) {
			return false
		}
	}
	return countNonSpace(segs[len(segs)-1]) > 0
}

// matchHyperlink recognises text starting with http://, https:// or "www"
// plus any one character other than a newline, and running to the next
// whitespace or tag. The builder indexes "wwwfoo" as "foo", so the dot after
// www is not required.
func matchHyperlink(s string, pos int) int {
	rest := s[pos:]
	var i int
	switch {
	case strings.HasPrefix(rest, "https://"):
		i = pos + len("https://")
	case strings.HasPrefix(rest, "http://"):
		i = pos + len("http://")
	case strings.HasPrefix(rest, "www") && len(rest) > len("www"):
		r, w := runeAt(s, pos+len("www"))
		if r == '\n' {
			return 0
		}
		i = pos + len("www") + w
	default:
		return 0
	}
	j := i
	for j < len(s) {
		r, w := runeAt(s, j)
		if isSpace(r) || r == '<' {
			break
		}
		j += w
	}
	if j == i {
		return 0
	}
	return j - pos
}

var hyperlinkScrubber = strings.NewReplacer("https://", "", "http://", "", "www", "", ".", "")

func normalizeHyperlink(raw string) string {
	return hyperlinkScrubber.Replace(strings.ToLower(raw))
}

// matchEmail recognises local@domain.suffix inside a single run of
// non-space text. Candidates are tried from the right so the match is as
// long as possible.
func matchEmail(s string, pos int) int {
	end := pos
	for end < len(s) {
		r, w := runeAt(s, end)
		if isSpace(r) {
			break
		}
		end += w
	}
	run := s[pos:end]
	for at := strings.LastIndexByte(run, '@'); at > 0; at = strings.LastIndexByte(run[:at], '@') {
		for dot := strings.LastIndexByte(run, '.'); dot >= at+2; dot = strings.LastIndexByte(run[:dot], '.') {
			if n := emailSuffixLen(run[dot+1:]); n > 0 {
				return dot + 1 + n
			}
		}
	}
	return 0
}

func emailSuffixLen(s string) int {
	n := 0
	for n < len(s) {
		r, w := runeAt(s, n)
		if isSpace(r) || strings.ContainsRune("<,?!.", r) {
			break
		}
		n += w
	}
	return n
}

// normalizeEmail keeps the local part: markup is dropped and everything from
// the first '@' on is cut.
func normalizeEmail(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); {
		switch raw[i] {
		case '@':
			return b.String()
		case '<':
			if gt, ok := closeAngle(raw, i); ok {
				i = gt + 1
				continue
			}
		}
		b.WriteByte(raw[i])
		i++
	}
	return b.String()
}

// matchNumber recognises a non-zero digit followed by digits, commas,
// periods and hyphens.
func matchNumber(s string, pos int) int {
	if s[pos] < '1' || s[pos] > '9' {
		return 0
	}
	i := pos + 1
	for i < len(s) {
		r, w := runeAt(s, i)
		if !unicode.IsDigit(r) && r != ',' && r != '.' && r != '-' {
			break
		}
		i += w
	}
	return i - pos
}

// normalizeNumber drops separators and any decimal part.
func normalizeNumber(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ',', '-':
		case '.':
			return b.String()
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func matchEntity(s string, pos int) int {
	if s[pos] != '&' {
		return 0
	}
	end := skipWord(s, pos+1)
	if end == pos+1 {
		return 0
	}
	return end - pos
}

// matchWord recognises a letter followed by word characters, apostrophes,
// hyphens, inline tags ("<b>E</b>lephants") and abbreviation periods
// ("Ph.D"). The leading class is the ASCII range A-z, which also admits
// "_", "^", "`" and "\".
func matchWord(s string, pos int) int {
	if s[pos] < 'A' || s[pos] > 'z' {
		return 0
	}
	i := pos + 1
	for i < len(s) {
		r, w := runeAt(s, i)
		switch {
		case isWordRune(r) || r == '\'' || r == '-':
			i += w
		case r == '.':
			if i+1 >= len(s) {
				return i - pos
			}
			next, nw := runeAt(s, i+1)
			if !isWordRune(next) {
				return i - pos
			}
			i += 1 + nw
		case r == '<':
			gt, ok := closeAngle(s, i)
			if !ok {
				return i - pos
			}
			i = gt + 1
		default:
			return i - pos
		}
	}
	return i - pos
}

func normalizeWord(raw string) string {
	lower := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); {
		switch lower[i] {
		case '.', '-', '\'':
			i++
			continue
		case '<':
			if gt, ok := closeAngle(lower, i); ok {
				i = gt + 1
				continue
			}
		}
		b.WriteByte(lower[i])
		i++
	}
	return b.String()
}

func matchNewlines(s string, pos int) int {
	i := pos
	for i < len(s) && s[i] == '\n' {
		i++
	}
	return i - pos
}
