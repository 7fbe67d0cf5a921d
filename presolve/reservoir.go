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

// allLevelChangesFixed reports whether every level change in `r` is fixed,
// which is the structural-skip condition in ExpandReservoir: a non-fixed
// level change is left for a later pass.
func allLevelChangesFixed(ctx *Context, r *cpmodel.ReservoirConstraint) bool {
	for _, d := range r.LevelChanges {
		if !ctx.IsFixed(d) {
			return false
		}
	}
	return true
}

// ExpandReservoir rewrites a reservoir constraint into linear constraints,
// per spec.md §4.2. It requires every level change to be fixed; callers
// should check allLevelChangesFixed (or rely on the driver's dispatch
// condition) first.
func ExpandReservoir(ctx *Context, idx cpmodel.ConstrIndex, r *cpmodel.ReservoirConstraint, enforcement []cpmodel.VarRef) {
	n := len(r.TimeExprs)
	if r.MinLevel > r.MaxLevel {
		ctx.NotifyThatModelIsUnsat("reservoir: empty level window")
		ctx.UpdateRuleStats(RuleReservoirUnsatWindow)
		return
	}

	hasActiveLiterals := len(r.ActiveLiterals) == n
	actives := make([]cpmodel.VarRef, n)
	for i := range actives {
		if hasActiveLiterals {
			actives[i] = r.ActiveLiterals[i]
		} else {
			actives[i] = ctx.GetTrueLiteral()
		}
	}

	fixedDeltas := make([]int64, n)
	for i, d := range r.LevelChanges {
		fixedDeltas[i] = ctx.FixedValue(d)
	}

	if sameSignOrZero(fixedDeltas) {
		vars := make([]cpmodel.VarRef, n)
		coeffs := make([]int64, n)
		for i := range actives {
			vars[i] = actives[i]
			coeffs[i] = fixedDeltas[i]
		}
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: enforcement,
			Linear: &cpmodel.LinearConstraint{
				Expr:   cpmodel.NewLinearExpr(vars, coeffs, 0),
				Domain: cpmodel.NewDomain(r.MinLevel, r.MaxLevel),
			},
		})
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleReservoirExpanded)
		return
	}

	for i := 0; i < n; i++ {
		var vars []cpmodel.VarRef
		var coeffs []int64
		var offset int64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			p := ctx.GetOrCreateReifiedPrecedenceLiteral(r.TimeExprs[j], r.TimeExprs[i], actives[j], actives[i])
			coeff := fixedDeltas[j]
			if cpmodel.RefIsPositive(p) {
				vars = append(vars, p)
				coeffs = append(coeffs, coeff)
			} else {
				// d_j * (1 - p') = d_j - d_j * p'.
				offset = cpmodel.CapAdd(offset, coeff)
				vars = append(vars, cpmodel.PositiveRef(p))
				coeffs = append(coeffs, -coeff)
			}
		}
		expr := cpmodel.NewLinearExpr(vars, coeffs, offset)
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: append(append([]cpmodel.VarRef{}, enforcement...), actives[i]),
			Linear: &cpmodel.LinearConstraint{
				Expr:   expr,
				Domain: cpmodel.NewDomain(r.MinLevel-fixedDeltas[i], r.MaxLevel-fixedDeltas[i]),
			},
		})
	}
	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleReservoirExpanded)
}

func sameSignOrZero(deltas []int64) bool {
	sawPositive, sawNegative := false, false
	for _, d := range deltas {
		if d > 0 {
			sawPositive = true
		} else if d < 0 {
			sawNegative = true
		}
	}
	return !(sawPositive && sawNegative)
}
