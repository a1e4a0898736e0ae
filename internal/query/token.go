package query

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/spotql/internal/value"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenSelect    TokenType = iota
	TokenFrom                // FROM
	TokenWhere               // WHERE
	TokenWildcard            // *
	TokenCount               // COUNT(a, b)
	TokenAverage             // AVERAGE(a, b)
	TokenAttribute           // bare attribute name
	TokenOperator            // == != < <= > >= LIKE IN NOT
	TokenLogical             // AND OR
	TokenSource              // PLAYLIST(x) PLAYLISTS ALBUM(x) ALBUMS
	TokenValue               // literal
)

// Token represents a classified lexical group.
type Token struct {
	Type      TokenType
	Attribute string         // TokenAttribute
	Targets   []string       // TokenCount, TokenAverage
	Op        value.Operator // TokenOperator; NOT lexes as NotIn
	Logical   Logical        // TokenLogical
	Source    DataSource     // TokenSource
	Value     value.Value    // TokenValue
}

// String returns the textual form used in error messages.
func (t Token) String() string {
	switch t.Type {
	case TokenSelect:
		return "SELECT"
	case TokenFrom:
		return "FROM"
	case TokenWhere:
		return "WHERE"
	case TokenWildcard:
		return "AllAttributes"
	case TokenCount:
		return fmt.Sprintf("COUNT(%s)", strings.Join(t.Targets, ", "))
	case TokenAverage:
		return fmt.Sprintf("AVERAGE(%s)", strings.Join(t.Targets, ", "))
	case TokenAttribute:
		return fmt.Sprintf("Attribute(%s)", t.Attribute)
	case TokenOperator:
		return fmt.Sprintf("Operator(%s)", t.Op)
	case TokenLogical:
		return fmt.Sprintf("Logical(%s)", t.Logical)
	case TokenSource:
		return fmt.Sprintf("Source(%s)", t.Source)
	case TokenValue:
		return fmt.Sprintf("Value(%s)", t.Value.Literal())
	}
	return "Unknown"
}

// isOperator reports whether t is an operator token with the given operator.
func (t Token) isOperator(op value.Operator) bool {
	return t.Type == TokenOperator && t.Op == op
}
