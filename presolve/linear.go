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

// IsComplexDomain reports whether `d`'s admissible set is more than two
// intervals, the structural trigger for the complex-linear rewrite.
func IsComplexDomain(d cpmodel.Domain) bool {
	return len(d.Intervals()) > 2
}

// ExpandComplexLinearConstraint rewrites a linear constraint whose domain is
// a union of more than two intervals, per spec.md §4.10.
func ExpandComplexLinearConstraint(ctx *Context, idx cpmodel.ConstrIndex, expr cpmodel.LinearExpr, domain cpmodel.Domain, enforcement []cpmodel.VarRef) {
	if ctx.Params().EncodeComplexLinearConstraintWithInteger {
		s := ctx.NewIntVar(domain)
		diff := combineLinear(expr, negateLinear(cpmodel.SingleVar(s)))
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: enforcement,
			Linear:      &cpmodel.LinearConstraint{Expr: diff, Domain: cpmodel.NewSingleDomain(0)},
		})
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleComplexLinearSlack)
		return
	}

	intervals := domain.Intervals()

	if len(intervals) == 2 && len(enforcement) == 0 {
		b := ctx.NewBoolVar()
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: []cpmodel.VarRef{b},
			Linear:      &cpmodel.LinearConstraint{Expr: expr, Domain: cpmodel.NewDomain(intervals[0].Start, intervals[0].End)},
		})
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: []cpmodel.VarRef{cpmodel.NegatedRef(b)},
			Linear:      &cpmodel.LinearConstraint{Expr: expr, Domain: cpmodel.NewDomain(intervals[1].Start, intervals[1].End)},
		})
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleComplexLinearDisjunction)
		return
	}

	gate := cpmodel.VarRef(-1)
	if ctx.Params().EnumerateAllSolutions && len(enforcement) > 0 {
		gate = ctx.NewBoolVar()
		for _, e := range enforcement {
			ctx.AddImplication(gate, e)
		}
	}

	ds := make([]cpmodel.VarRef, len(intervals))
	disjunction := []cpmodel.VarRef{}
	for k, it := range intervals {
		ds[k] = ctx.NewBoolVar()
		disjunction = append(disjunction, ds[k])
		gated := append(append([]cpmodel.VarRef{}, enforcement...), ds[k])
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: gated,
			Linear:      &cpmodel.LinearConstraint{Expr: expr, Domain: cpmodel.NewDomain(it.Start, it.End)},
		})
	}
	clause := disjunction
	if gate >= 0 {
		clause = append(clause, cpmodel.NegatedRef(gate))
	} else {
		for _, e := range enforcement {
			clause = append(clause, cpmodel.NegatedRef(e))
		}
	}
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:         cpmodel.KindBoolOr,
		BoolArgument: &cpmodel.BoolArgument{Literals: clause},
	})

	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleComplexLinearDisjunction)
}

// extendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a,b).
func extendedGCD(a, b int64) (g, x, y int64) {
	if b == 0 {
		return a, 1, 0
	}
	g1, x1, y1 := extendedGCD(b, a%b)
	return g1, y1, x1 - (a/b)*y1
}

// ExpandSomeLinearOfSizeTwo rewrites a size-2 linear `a*x + b*y in D` whose
// complement intersects the reachable sum in exactly one value `c`, per
// spec.md §4.11: solve the Diophantine equation, parameterize solutions, and
// if few enough and already encoded, forbid them with one clause each.
func ExpandSomeLinearOfSizeTwo(ctx *Context, idx cpmodel.ConstrIndex, x, y cpmodel.VarRef, a, b int64, domain cpmodel.Domain, enforcement []cpmodel.VarRef) {
	reachable := ctx.DomainOf(x).MultiplicationBy(a).AdditionWith(ctx.DomainOf(y).MultiplicationBy(b))
	complement := reachable.IntersectionWith(domain.Complement()).RelaxIfTooComplex()
	if complement.IsEmpty() {
		// No reachable sum falls outside domain: the constraint is trivially
		// satisfied and can be dropped outright.
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleSmallLinearDisequality)
		return
	}
	if !complement.IsFixed() {
		return
	}
	c := complement.FixedValue()

	g, x0, y0 := extendedGCD(a, b)
	if c%g != 0 {
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleSmallLinearDisequality)
		return
	}
	scale := c / g
	baseX, baseY := x0*scale, y0*scale
	stepX, stepY := b/g, -a/g

	xDomain := ctx.DomainOf(x)
	yDomain := ctx.DomainOf(y)
	if xDomain.Size() == 2 || yDomain.Size() == 2 {
		return
	}

	var zValues []int64
	for _, z := range smallZRange(baseX, stepX, xDomain, baseY, stepY, yDomain) {
		zValues = append(zValues, z)
	}
	if len(zValues) > 16 {
		return
	}

	// Every forbidden value must already be encoded before we commit to
	// rewriting the constraint: if even one is missing, nothing is emitted
	// and the high-level constraint is left untouched.
	for _, z := range zValues {
		vx := baseX + stepX*z
		vy := baseY + stepY*z
		if _, ok := ctx.HasVarValueEncoding(x, vx); !ok {
			return
		}
		if _, ok := ctx.HasVarValueEncoding(y, vy); !ok {
			return
		}
	}

	for _, z := range zValues {
		vx := baseX + stepX*z
		vy := baseY + stepY*z
		xLit, _ := ctx.HasVarValueEncoding(x, vx)
		yLit, _ := ctx.HasVarValueEncoding(y, vy)
		clause := append(append([]cpmodel.VarRef{}, negatedEnforcement(enforcement)...),
			cpmodel.NegatedRef(xLit), cpmodel.NegatedRef(yLit))
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:         cpmodel.KindBoolOr,
			BoolArgument: &cpmodel.BoolArgument{Literals: clause},
		})
	}
	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleSmallLinearDisequality)
}

// smallZRange enumerates the integer parameters z for which both
// baseX+stepX*z lies in xDomain and baseY+stepY*z lies in yDomain, bounded by
// a small cap since callers only care when the result has at most 16 values.
func smallZRange(baseX, stepX int64, xDomain cpmodel.Domain, baseY, stepY int64, yDomain cpmodel.Domain) []int64 {
	if stepX == 0 && stepY == 0 {
		return nil
	}
	var out []int64
	const bound = 10000
	for z := int64(-bound); z <= bound; z++ {
		if !xDomain.Contains(baseX + stepX*z) {
			continue
		}
		if !yDomain.Contains(baseY + stepY*z) {
			continue
		}
		out = append(out, z)
		if len(out) > 16 {
			break
		}
	}
	return out
}
