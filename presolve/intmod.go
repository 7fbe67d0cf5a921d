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

// ExpandIntMod rewrites `target = expr mod modulus` into a quotient
// variable, a product variable, and a linear equation, per spec.md §4.3. The
// modulus must be a single-variable expression; if it is fixed, this
// function does nothing (the driver leaves it for a later pass).
func ExpandIntMod(ctx *Context, idx cpmodel.ConstrIndex, target, expr, modulus cpmodel.LinearExpr, enforcement []cpmodel.VarRef) {
	if ctx.IsFixed(modulus) {
		return
	}

	exprDomain := ctx.DomainSupersetOf(expr)
	modulusDomain := ctx.DomainSupersetOf(modulus)

	q := ctx.NewIntVar(exprDomain.PositiveDivisionBySuperset(modulusDomain))
	rDomain := exprDomain.ContinuousMultiplicationBy(modulusDomain).
		IntersectionWith(exprDomain.AdditionWith(ctx.DomainSupersetOf(target).Negation()))
	r := ctx.NewIntVar(rDomain)

	targetDomain := exprDomain.PositiveModuloBySuperset(modulusDomain)
	var changed bool
	if !ctx.IntersectDomainWith(target.Vars[0], targetDomain, &changed) {
		return
	}

	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindIntDiv,
		Enforcement: enforcement,
		LinearArg:   &cpmodel.LinearArgument{Target: cpmodel.SingleVar(q), Exprs: []cpmodel.LinearExpr{expr, modulus}},
	})
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindIntProd,
		Enforcement: enforcement,
		LinearArg:   &cpmodel.LinearArgument{Target: cpmodel.SingleVar(r), Exprs: []cpmodel.LinearExpr{cpmodel.SingleVar(q), modulus}},
	})
	diff := combineLinear(expr, negateLinear(combineLinear(cpmodel.SingleVar(r), target)))
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindLinear,
		Enforcement: enforcement,
		Linear:      &cpmodel.LinearConstraint{Expr: diff, Domain: cpmodel.NewSingleDomain(0)},
	})

	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleIntModExpanded)
}
