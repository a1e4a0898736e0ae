package query

import (
	"github.com/aidanlsb/spotql/internal/value"
)

// minTokens is the shortest statement: SELECT <target> FROM <source>.
const minTokens = 4

// Parser consumes a token sequence produced by Tokenize.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse lexes and parses a statement string.
func Parse(input string) (*SelectStatement, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens builds a SelectStatement from tokens.
func ParseTokens(tokens []Token) (*SelectStatement, error) {
	if len(tokens) < minTokens {
		return nil, &SyntaxError{Message: `a statement needs at least 4 tokens, e.g. SELECT name FROM PLAYLIST("Road Trip");`}
	}
	p := &Parser{tokens: tokens}
	return p.parseSelect()
}

func (p *Parser) next() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

// mustNext returns the next token or an incomplete-statement error.
func (p *Parser) mustNext() (Token, error) {
	tok, ok := p.next()
	if !ok {
		return Token{}, &SyntaxError{Message: "incomplete statement"}
	}
	return tok, nil
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	first, _ := p.next()
	if first.Type != TokenSelect {
		return nil, &SyntaxError{Message: "invalid token", Token: first.String()}
	}

	stmt := &SelectStatement{}
	reachedFrom := false

targets:
	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenCount, TokenAverage:
			if len(stmt.Targets) != 0 {
				return nil, &SyntaxError{Message: "cannot mix aggregated attributes and non-aggregated attributes", Token: tok.String()}
			}
			stmt.Targets = append([]string(nil), tok.Targets...)
			stmt.Aggregation = AggregateCount
			if tok.Type == TokenAverage {
				stmt.Aggregation = AggregateAverage
			}
			break targets
		case TokenAttribute:
			stmt.Targets = append(stmt.Targets, tok.Attribute)
		case TokenWildcard:
			if len(stmt.Targets) != 0 {
				return nil, &SyntaxError{Message: "cannot mix wildcard with specific attributes", Token: tok.String()}
			}
			// Targets are filled in once the source is known.
			stmt.Wildcard = true
			break targets
		case TokenFrom:
			reachedFrom = true
			break targets
		default:
			return nil, &SyntaxError{Message: "invalid token", Token: tok.String()}
		}
	}

	if len(stmt.Targets) == 0 && !stmt.Wildcard {
		return nil, &SyntaxError{Message: "no attributes defined after SELECT"}
	}

	if !reachedFrom {
		tok, err := p.mustNext()
		if err != nil {
			return nil, err
		}
		if tok.Type != TokenFrom {
			if tok.Type == TokenAttribute && stmt.Wildcard {
				return nil, &SyntaxError{Message: "cannot mix wildcard with specific attributes", Token: tok.String()}
			}
			return nil, &SyntaxError{Message: "token should be FROM", Token: tok.String()}
		}
	}

	src, err := p.mustNext()
	if err != nil {
		return nil, err
	}
	if src.Type != TokenSource {
		return nil, &SyntaxError{Message: `token should be a data source, e.g. PLAYLIST("name")`, Token: src.String()}
	}
	stmt.Source = src.Source

	if stmt.Wildcard {
		stmt.Targets = stmt.Source.Attributes()
	}

	where, ok := p.next()
	if !ok || where.Type != TokenWhere {
		return stmt, nil
	}

	conds, err := p.parseConditions()
	if err != nil {
		return nil, err
	}
	stmt.Conditions = conds
	return stmt, nil
}

// parseConditions reads triples joined by AND/OR until the tokens run out.
func (p *Parser) parseConditions() (*Conditions, error) {
	var conds *Conditions
	connective := Or

	for {
		cmp, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if conds == nil {
			conds = NewConditions(cmp)
		} else {
			conds.Add(connective, cmp)
		}

		tok, ok := p.next()
		if !ok {
			return conds, nil
		}
		if tok.Type != TokenLogical {
			return nil, &SyntaxError{Message: "only a logical operator (AND, OR) can come after a condition", Token: tok.String()}
		}
		connective = tok.Logical
	}
}

// parseComparison reads "attribute op value" or "value op attribute".
func (p *Parser) parseComparison() (Comparison, error) {
	incomplete := &SyntaxError{Message: "conditions should consist of an attribute, an operator and a value"}

	lead, ok := p.next()
	if !ok {
		return Comparison{}, incomplete
	}

	var cmp Comparison
	switch lead.Type {
	case TokenAttribute:
		cmp.Attribute = lead.Attribute
	case TokenValue:
		cmp.Value = lead.Value
		cmp.ValueFirst = true
	default:
		return Comparison{}, &SyntaxError{Message: "condition is missing attribute", Token: lead.String()}
	}

	opTok, ok := p.next()
	if !ok {
		return Comparison{}, incomplete
	}
	if opTok.Type != TokenOperator {
		return Comparison{}, &SyntaxError{Message: "condition is missing operator", Token: opTok.String()}
	}
	cmp.Op = opTok.Op

	if cmp.Op == value.NotIn {
		in, ok := p.next()
		if !ok || !in.isOperator(value.In) {
			msg := &SyntaxError{Message: "NOT can only be used to negate an IN operation"}
			if ok {
				msg.Token = in.String()
			}
			return Comparison{}, msg
		}
	}

	tail, ok := p.next()
	if !ok {
		return Comparison{}, incomplete
	}
	if cmp.ValueFirst {
		if tail.Type != TokenAttribute {
			return Comparison{}, &SyntaxError{Message: "condition is missing attribute", Token: tail.String()}
		}
		cmp.Attribute = tail.Attribute
	} else {
		if tail.Type != TokenValue {
			return Comparison{}, &SyntaxError{Message: "condition is missing value", Token: tail.String()}
		}
		cmp.Value = tail.Value
	}
	return cmp, nil
}
