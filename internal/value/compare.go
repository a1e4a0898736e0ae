package value

import (
	"fmt"
	"strings"
)

// Operator is a comparison operator usable in a WHERE clause.
type Operator int

const (
	Equals Operator = iota
	NotEquals
	Like
	In
	NotIn
	Less
	LessEqual
	Greater
	GreaterEqual
)

func (op Operator) String() string {
	switch op {
	case NotEquals:
		return "NotEquals"
	case Like:
		return "Like"
	case In:
		return "In"
	case NotIn:
		return "NotIn"
	case Less:
		return "LessThan"
	case LessEqual:
		return "LessThanOrEqual"
	case Greater:
		return "GreaterThan"
	case GreaterEqual:
		return "GreaterThanOrEqual"
	default:
		return "Equals"
	}
}

// Symbol returns the operator as written in a statement.
func (op Operator) Symbol() string {
	switch op {
	case NotEquals:
		return "!="
	case Like:
		return "LIKE"
	case In:
		return "IN"
	case NotIn:
		return "NOT IN"
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	default:
		return "=="
	}
}

// TypeError reports values of the wrong kind for an operation.
type TypeError struct {
	Operator string // operator symbol, empty when no operator was involved
	Message  string
}

func (e *TypeError) Error() string {
	return "type error: " + e.Message
}

// NewTypeError builds a TypeError that is not tied to an operator.
func NewTypeError(format string, args ...interface{}) error {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

func typeErrorf(op Operator, format string, args ...interface{}) error {
	return &TypeError{Operator: op.Symbol(), Message: fmt.Sprintf(format, args...)}
}

// Compare applies op with v on the left and rhs on the right.
func (v Value) Compare(rhs Value, op Operator) (bool, error) {
	switch op {
	case Equals:
		return v.Equal(rhs), nil
	case NotEquals:
		return !v.Equal(rhs), nil
	case Like:
		return v.like(rhs)
	case In:
		return v.inList(rhs, op)
	case NotIn:
		found, err := v.inList(rhs, op)
		if err != nil {
			return false, err
		}
		return !found, nil
	case Less, LessEqual, Greater, GreaterEqual:
		return v.ordered(rhs, op)
	}
	return false, typeErrorf(op, "unsupported operator %d", int(op))
}

// like lowercases only the left operand; the pattern is matched as written.
func (v Value) like(rhs Value) (bool, error) {
	left, lok := v.AsString()
	right, rok := rhs.AsString()
	if !lok || !rok {
		return false, typeErrorf(Like, "you can only use the LIKE operator on strings (got %s and %s)", v.kind, rhs.kind)
	}
	return strings.Contains(strings.ToLower(left), right), nil
}

func (v Value) inList(rhs Value, op Operator) (bool, error) {
	var list, probe Value
	switch {
	case v.kind == KindList && rhs.kind == KindList:
		return false, typeErrorf(op, "%s needs exactly one list operand, got two lists", op.Symbol())
	case v.kind == KindList:
		list, probe = v, rhs
	case rhs.kind == KindList:
		list, probe = rhs, v
	default:
		return false, typeErrorf(op, "%s needs a list operand (got %s and %s)", op.Symbol(), v.kind, rhs.kind)
	}

	if len(list.list) == 0 {
		return false, nil
	}
	if list.list[0].kind != probe.kind {
		return false, typeErrorf(op, "mismatched types in %s condition: %s against a list of %s",
			op.Symbol(), probe.kind, list.list[0].kind)
	}
	for _, item := range list.list {
		if item.Equal(probe) {
			return true, nil
		}
	}
	return false, nil
}

// ordered compares numerically; the inclusive forms are strict-or-equal,
// so Int(5) <= Float(5) is false.
func (v Value) ordered(rhs Value, op Operator) (bool, error) {
	lhs, lok := v.Number()
	r, rok := rhs.Number()
	if !lok || !rok {
		return false, typeErrorf(op, "left and right hand sides of %s operation must be numeric", op.Symbol())
	}
	switch op {
	case Less:
		return lhs < r, nil
	case LessEqual:
		return lhs < r || v.Equal(rhs), nil
	case Greater:
		return lhs > r, nil
	default:
		return lhs > r || v.Equal(rhs), nil
	}
}
