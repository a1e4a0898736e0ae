package query

import (
	"errors"
	"fmt"

	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/value"
)

// Error codes returned by Classify. These are stable and shown to scripts.
const (
	CodeLex       = "LEX_ERROR"
	CodeSyntax    = "SYNTAX_ERROR"
	CodeAttribute = "ATTRIBUTE_ERROR"
	CodeType      = "TYPE_ERROR"
	CodeSource    = "SOURCE_ERROR"
	CodeNoRows    = "NO_ROWS"
	CodeInternal  = "INTERNAL_ERROR"
)

// LexError reports input the lexer could not split or classify.
type LexError struct {
	Message string
}

func (e *LexError) Error() string { return "lex error: " + e.Message }

func lexErrorf(format string, args ...interface{}) error {
	return &LexError{Message: fmt.Sprintf(format, args...)}
}

// SyntaxError reports a token in a position the grammar does not allow.
type SyntaxError struct {
	Message string
	Token   string // textual form of the offending token, if any
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("syntax error: %s at %s", e.Message, e.Token)
	}
	return "syntax error: " + e.Message
}

// SourceError reports a data source with no usable backing collection.
type SourceError struct {
	Source  DataSource
	Message string
	Err     error // fetch failure behind the message, if any
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Err)
	}
	return e.Message
}

func (e *SourceError) Unwrap() error { return e.Err }

// Classify maps an engine error onto its error code.
func Classify(err error) string {
	var lexErr *LexError
	var syntaxErr *SyntaxError
	var attrErr *catalog.AttributeError
	var typeErr *value.TypeError
	var sourceErr *SourceError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &lexErr):
		return CodeLex
	case errors.As(err, &syntaxErr):
		return CodeSyntax
	case errors.As(err, &attrErr):
		return CodeAttribute
	case errors.As(err, &typeErr):
		return CodeType
	case errors.As(err, &sourceErr):
		return CodeSource
	case errors.Is(err, ErrNoRowsToAverage):
		return CodeNoRows
	default:
		return CodeInternal
	}
}
