package cli

import (
	"errors"

	"github.com/aidanlsb/spotql/internal/api"
	"github.com/aidanlsb/spotql/internal/config"
	"github.com/aidanlsb/spotql/internal/query"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Configuration errors
	ErrConfigInvalid = "CONFIG_INVALID"
	ErrConfigExists  = "CONFIG_EXISTS"

	// Auth errors
	ErrNotLoggedIn = "NOT_LOGGED_IN"
	ErrAuthFailed  = "AUTH_FAILED"

	// Remote and storage errors
	ErrFetchFailed   = "FETCH_FAILED"
	ErrDatabaseError = "DATABASE_ERROR"

	// Statement errors, as reported by the query engine
	ErrLex       = query.CodeLex
	ErrSyntax    = query.CodeSyntax
	ErrAttribute = query.CodeAttribute
	ErrType      = query.CodeType
	ErrSource    = query.CodeSource
	ErrNoRows    = query.CodeNoRows

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnStaleData      = "STALE_DATA"
	WarnCacheRebuilt   = "CACHE_REBUILT"
	WarnHistoryFailure = "HISTORY_NOT_RECORDED"
)

// statementErrorCode classifies a statement failure, distinguishing auth
// problems behind a source error.
func statementErrorCode(err error) string {
	switch {
	case errors.Is(err, config.ErrNotLoggedIn), errors.Is(err, api.ErrUnauthorized):
		return ErrNotLoggedIn
	}
	return query.Classify(err)
}

// suggestionFor returns a hint for an error code.
func suggestionFor(code string) string {
	switch code {
	case ErrNotLoggedIn:
		return "Run 'spotql login' to authorize access to your library"
	case ErrLex, ErrSyntax:
		return "Run 'spotql docs' for the statement grammar"
	case ErrAttribute:
		return "Use SELECT * to list the attributes of a source"
	case ErrSource:
		return "Check your connection, or run 'spotql cache status'"
	}
	return ""
}
