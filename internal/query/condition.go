package query

import (
	"github.com/aidanlsb/spotql/internal/catalog"
)

// collapseOrder is the order of the reduction passes: every adjacent OR pair
// is merged first, then every adjacent AND pair.
var collapseOrder = []Logical{Or, And}

// Evaluate reports whether rec satisfies the condition chain. The first
// attribute or comparison error aborts evaluation.
func Evaluate(rec catalog.KeyAccess, conds *Conditions) (bool, error) {
	results := make([]bool, len(conds.Leaves))
	for i, leaf := range conds.Leaves {
		attr, err := rec.Access(leaf.Attribute)
		if err != nil {
			return false, err
		}
		ok, err := attr.Compare(leaf.Value, leaf.Op)
		if err != nil {
			return false, err
		}
		results[i] = ok
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return collapse(results, conds.Connectives), nil
}

// collapse reduces a boolean chain to one value. vals[i] and vals[i+1] are
// joined by ops[i].
//
// This is not AND-before-OR precedence. For each connective in collapseOrder
// one left-to-right pass merges non-overlapping adjacent pairs joined by that
// connective; the merged node keeps the connective that followed its right
// half. Only the head pair of what remains is combined; values after it are
// dropped.
func collapse(vals []bool, ops []Logical) bool {
	for _, op := range collapseOrder {
		vals, ops = reducePass(vals, ops, op)
	}

	if len(ops) > 0 {
		return ops[0].Eval(vals[0], vals[1])
	}
	return vals[0]
}

func reducePass(vals []bool, ops []Logical, op Logical) ([]bool, []Logical) {
	outVals := make([]bool, 0, len(vals))
	outOps := make([]Logical, 0, len(ops))

	i := 0
	for i < len(vals) {
		if i > 0 {
			outOps = append(outOps, ops[i-1])
		}
		if i+1 < len(vals) && ops[i] == op {
			outVals = append(outVals, op.Eval(vals[i], vals[i+1]))
			i += 2
			continue
		}
		outVals = append(outVals, vals[i])
		i++
	}
	return outVals, outOps
}
