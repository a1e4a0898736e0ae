package query

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/aidanlsb/spotql/internal/value"
)

// closers maps each group opener to the rune that closes it. Groups do not nest.
var closers = map[rune]rune{
	'(': ')',
	'"': '"',
	'[': ']',
}

// rawGroup is one whitespace-separated lexical group before classification:
// an identifier optionally followed by delimited content.
type rawGroup struct {
	text     string
	ident    string
	open     rune // 0 when there is no delimited content
	content  string
	trailing string // text after the closing delimiter
}

// Tokenize lexes one semicolon-terminated statement.
func Tokenize(input string) ([]Token, error) {
	groups, err := splitGroups(input)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(groups))
	for _, g := range groups {
		tok, err := g.classify()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// splitGroups scans left to right. Whitespace separates groups unless a
// delimiter group is open; a comma outside a group is dropped; a semicolon
// ends the scan.
func splitGroups(input string) ([]rawGroup, error) {
	var groups []rawGroup
	var buf strings.Builder
	var closeOn rune
	inGroup := false

	flush := func() {
		if buf.Len() > 0 {
			groups = append(groups, newRawGroup(buf.String()))
			buf.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == ';':
			if inGroup {
				return nil, lexErrorf("unclosed %q in %q", closeOn, buf.String())
			}
			flush()
			return groups, nil
		case inGroup:
			buf.WriteRune(r)
			if r == closeOn {
				inGroup = false
			}
		case unicode.IsSpace(r):
			flush()
		case r == ',':
			// Outside a group commas only separate attribute names.
		default:
			if c, ok := closers[r]; ok {
				inGroup = true
				closeOn = c
			}
			buf.WriteRune(r)
		}
	}

	return nil, lexErrorf("statement not terminated, input must end with ';'")
}

func newRawGroup(text string) rawGroup {
	g := rawGroup{text: text, ident: text}
	for i, r := range text {
		closer, ok := closers[r]
		if !ok {
			continue
		}
		g.ident = text[:i]
		g.open = r
		rest := text[i+len(string(r)):]
		if end := strings.IndexRune(rest, closer); end >= 0 {
			g.content = rest[:end]
			g.trailing = rest[end+len(string(closer)):]
		} else {
			g.content = rest
		}
		break
	}
	return g
}

func (g rawGroup) unknown() error {
	return lexErrorf("found unknown token %q in input", g.text)
}

// classify turns a raw group into a token. Keywords are case-insensitive.
func (g rawGroup) classify() (Token, error) {
	if g.trailing != "" {
		return Token{}, g.unknown()
	}
	if g.open == 0 {
		return g.classifyWord()
	}

	upper := strings.ToUpper(g.ident)
	switch {
	case g.open == '(' && (upper == "COUNT" || upper == "AVERAGE"):
		targets, err := splitTargets(upper, g.content)
		if err != nil {
			return Token{}, err
		}
		if upper == "COUNT" {
			return Token{Type: TokenCount, Targets: targets}, nil
		}
		return Token{Type: TokenAverage, Targets: targets}, nil

	case g.open == '(' && (upper == "PLAYLIST" || upper == "ALBUM"):
		name := unquote(strings.TrimSpace(g.content))
		if name == "" {
			return Token{}, lexErrorf("%s needs a name, e.g. %s(\"Road Trip\")", upper, upper)
		}
		if upper == "PLAYLIST" {
			return Token{Type: TokenSource, Source: PlaylistSource(name)}, nil
		}
		return Token{Type: TokenSource, Source: SavedAlbumSource(name)}, nil

	case g.ident == "" && g.open == '"':
		return Token{Type: TokenValue, Value: value.Str(g.content)}, nil

	case g.ident == "" && g.open == '[':
		list, err := parseList(g.content)
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenValue, Value: list}, nil
	}

	return Token{}, g.unknown()
}

func (g rawGroup) classifyWord() (Token, error) {
	switch strings.ToUpper(g.ident) {
	case "SELECT":
		return Token{Type: TokenSelect}, nil
	case "FROM":
		return Token{Type: TokenFrom}, nil
	case "WHERE":
		return Token{Type: TokenWhere}, nil
	case "*":
		return Token{Type: TokenWildcard}, nil
	case "AND":
		return Token{Type: TokenLogical, Logical: And}, nil
	case "OR":
		return Token{Type: TokenLogical, Logical: Or}, nil
	case "==":
		return Token{Type: TokenOperator, Op: value.Equals}, nil
	case "!=":
		return Token{Type: TokenOperator, Op: value.NotEquals}, nil
	case "<":
		return Token{Type: TokenOperator, Op: value.Less}, nil
	case "<=":
		return Token{Type: TokenOperator, Op: value.LessEqual}, nil
	case ">":
		return Token{Type: TokenOperator, Op: value.Greater}, nil
	case ">=":
		return Token{Type: TokenOperator, Op: value.GreaterEqual}, nil
	case "LIKE":
		return Token{Type: TokenOperator, Op: value.Like}, nil
	case "IN":
		return Token{Type: TokenOperator, Op: value.In}, nil
	case "NOT":
		// NOT is only legal before IN; the parser checks the IN follows.
		return Token{Type: TokenOperator, Op: value.NotIn}, nil
	case "PLAYLISTS":
		return Token{Type: TokenSource, Source: PlaylistsSource()}, nil
	case "ALBUMS":
		return Token{Type: TokenSource, Source: SavedAlbumsSource()}, nil
	}

	word := g.ident
	switch {
	case word == "true" || word == "false":
		return Token{Type: TokenValue, Value: value.Bool(word == "true")}, nil
	case isInteger(word):
		n, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			return Token{}, lexErrorf("could not parse %s into an integer: %v", word, err)
		}
		return Token{Type: TokenValue, Value: value.Int(n)}, nil
	case isFloat(word):
		f, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return Token{}, lexErrorf("could not parse %s into a float: %v", word, err)
		}
		return Token{Type: TokenValue, Value: value.Float(f)}, nil
	case isBareWord(word):
		return Token{Type: TokenAttribute, Attribute: word}, nil
	}

	return Token{}, g.unknown()
}

// splitTargets splits the attribute list of COUNT(...) or AVERAGE(...).
func splitTargets(fn, content string) ([]string, error) {
	parts := strings.Split(content, ",")
	targets := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, lexErrorf("%s needs a comma-separated attribute list, got %q", fn, content)
		}
		if !isBareWord(name) {
			return nil, lexErrorf("invalid attribute %q in %s", name, fn)
		}
		targets = append(targets, name)
	}
	return targets, nil
}

// parseList parses the content of a [...] literal. Elements are all quoted
// strings, all integers or all floats.
func parseList(content string) (value.Value, error) {
	if strings.TrimSpace(content) == "" {
		return value.List(), nil
	}

	var items []value.Value
	for _, raw := range splitListItems(content) {
		item := strings.TrimSpace(raw)
		var v value.Value
		switch {
		case len(item) >= 2 && item[0] == '"' && item[len(item)-1] == '"':
			v = value.Str(item[1 : len(item)-1])
		case isInteger(item):
			n, err := strconv.ParseInt(item, 10, 64)
			if err != nil {
				return value.Value{}, lexErrorf("could not parse %s into an integer: %v", item, err)
			}
			v = value.Int(n)
		case isFloat(item):
			f, err := strconv.ParseFloat(item, 64)
			if err != nil {
				return value.Value{}, lexErrorf("could not parse %s into a float: %v", item, err)
			}
			v = value.Float(f)
		case item == "":
			return value.Value{}, lexErrorf("empty element in list [%s]", content)
		default:
			return value.Value{}, lexErrorf("invalid list element %q, lists hold quoted strings, integers or floats", item)
		}

		if len(items) > 0 && items[0].Kind() != v.Kind() {
			return value.Value{}, lexErrorf("list [%s] mixes %s and %s elements", content, items[0].Kind(), v.Kind())
		}
		items = append(items, v)
	}
	return value.List(items...), nil
}

// splitListItems splits on commas that are not inside double quotes.
func splitListItems(content string) []string {
	var items []string
	var buf strings.Builder
	quoted := false
	for _, r := range content {
		switch {
		case r == '"':
			quoted = !quoted
			buf.WriteRune(r)
		case r == ',' && !quoted:
			items = append(items, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	return append(items, buf.String())
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// isInteger matches -?[0-9]+.
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return s != "" && allDigits(s)
}

// isFloat matches -?[0-9]+\.[0-9]+.
func isFloat(s string) bool {
	s = strings.TrimPrefix(s, "-")
	whole, frac, ok := strings.Cut(s, ".")
	return ok && whole != "" && frac != "" && allDigits(whole) && allDigits(frac)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isBareWord reports whether s is made of letters, digits and underscores.
func isBareWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
