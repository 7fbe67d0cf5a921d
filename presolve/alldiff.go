// Copyright 2024 The CP-Expand Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package presolve

import "github.com/constraintkit/cpexpand/cpmodel"

// usageScan summarizes how the rest of the working model refers to an
// all-different's expressions, per spec.md §4.9.
type usageScan struct {
	wantsExpand bool // some variable's individual value equalities are used elsewhere
	wantsKeep   bool // some variable's bounds are used elsewhere (lin_max, interval, large linear)
}

// ScanModelAndDecideAllDiffExpansion inspects every constraint referencing
// one of `exprs`'s variables (other than `self`) to decide whether expanding
// the all-different to value-cardinality constraints is useful, whether
// keeping the high-level form is useful, or both.
func ScanModelAndDecideAllDiffExpansion(ctx *Context, self cpmodel.ConstrIndex, exprs []cpmodel.LinearExpr) usageScan {
	var scan usageScan
	for _, e := range exprs {
		if len(e.Vars) != 1 {
			continue
		}
		v := cpmodel.PositiveRef(e.Vars[0])
		for _, idx := range ctx.VarToConstraints(v) {
			if idx == self {
				continue
			}
			ct := ctx.WorkingModel().Constraints[idx]
			switch ct.Kind {
			case cpmodel.KindTable, cpmodel.KindAutomaton, cpmodel.KindElement, cpmodel.KindInverse:
				scan.wantsExpand = true
			case cpmodel.KindLinMax, cpmodel.KindInterval:
				scan.wantsKeep = true
			case cpmodel.KindLinear:
				if ct.Linear != nil && len(ct.Linear.Expr.Vars) >= 3 {
					scan.wantsKeep = true
				} else if ct.Linear != nil && ct.Linear.Domain.IsFixed() {
					scan.wantsExpand = true
				}
			}
		}
	}
	return scan
}

// sizeSuggestsExpand reports whether the all-different's value-union size is
// small enough, relative to the number of variables, to make expansion cheap.
func sizeSuggestsExpand(ctx *Context, exprs []cpmodel.LinearExpr, union cpmodel.Domain) bool {
	n := int64(len(exprs))
	size := union.Size()
	if size <= 32 || size <= 2*n {
		return true
	}
	allEncoded := true
	for _, e := range exprs {
		if !ctx.IsFullyEncoded(e) {
			allEncoded = false
			break
		}
	}
	return allEncoded && size < 256
}

// MaybeExpandAllDiff decides, per spec.md §4.9's decision table, whether to
// expand an all-different constraint to value-cardinality constraints, keep
// the high-level form, or both, and performs the expansion if applicable.
func MaybeExpandAllDiff(ctx *Context, idx cpmodel.ConstrIndex, a *cpmodel.AllDiffConstraint, enforcement []cpmodel.VarRef) {
	union := cpmodel.NewEmptyDomain()
	for _, e := range a.Exprs {
		union = union.UnionWith(ctx.DomainSupersetOf(e))
	}

	scan := ScanModelAndDecideAllDiffExpansion(ctx, idx, a.Exprs)
	suggestsExpand := sizeSuggestsExpand(ctx, a.Exprs, union)
	expand := ctx.Params().ExpandAlldiffConstraints ||
		(suggestsExpand && (scan.wantsExpand || !scan.wantsKeep))
	keep := !expand || scan.wantsKeep

	if !expand {
		return
	}

	values := union.Values()
	fixedCount := make(map[int64]int)
	for _, e := range a.Exprs {
		if ctx.IsFixed(e) {
			fixedCount[ctx.FixedValue(e)]++
		}
	}
	for v, count := range fixedCount {
		if count > 1 {
			ctx.NotifyThatModelIsUnsat("all_diff: two expressions fixed to the same value")
			ctx.UpdateRuleStats(RuleAllDiffUnsatDoubleFixed)
			return
		}
		for _, e := range a.Exprs {
			if ctx.IsFixed(e) && ctx.FixedValue(e) == v {
				continue
			}
			if len(e.Vars) == 1 && e.Coeffs[0] == 1 && e.Offset == 0 {
				ctx.IntersectDomainWith(e.Vars[0], cpmodel.NewSingleDomain(v).Complement(), nil)
			}
		}
	}

	for _, v := range values {
		var supporters []cpmodel.VarRef
		for _, e := range a.Exprs {
			if !ctx.DomainSupersetOf(e).Contains(v) {
				continue
			}
			lit, ok := ctx.ExpressionIsALiteral(e)
			if ok {
				supporters = append(supporters, ctx.GetOrCreateAffineValueEncoding(cpmodel.SingleVar(lit), v))
				continue
			}
			supporters = append(supporters, ctx.GetOrCreateAffineValueEncoding(e, v))
		}
		if len(supporters) == 0 {
			continue
		}
		kind := cpmodel.KindAtMostOne
		if int64(len(a.Exprs)) == union.Size() {
			kind = cpmodel.KindExactlyOne
		}
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:         kind,
			BoolArgument: &cpmodel.BoolArgument{Literals: supporters},
		})
	}

	ctx.UpdateRuleStats(RuleAllDiffExpanded)
	if !keep {
		ctx.WorkingModel().Constraints[idx].Clear()
	}
	_ = enforcement
}
