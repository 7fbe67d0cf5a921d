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

import (
	"testing"

	"github.com/constraintkit/cpexpand/cpmodel"
)

func TestIsComplexDomain(t *testing.T) {
	simple := cpmodel.NewDomain(0, 10)
	if IsComplexDomain(simple) {
		t.Error("a single-interval domain should not be complex")
	}
	complex3 := cpmodel.NewSingleDomain(1).UnionWith(cpmodel.NewSingleDomain(5)).UnionWith(cpmodel.NewSingleDomain(10))
	if !IsComplexDomain(complex3) {
		t.Error("a three-interval domain should be complex")
	}
}

func TestExpandComplexLinearConstraintBooleanDisjunction(t *testing.T) {
	ctx, _ := newTestContext()
	x := ctx.NewIntVar(cpmodel.NewDomain(0, 20))
	domain := cpmodel.NewSingleDomain(1).UnionWith(cpmodel.NewSingleDomain(5)).UnionWith(cpmodel.NewSingleDomain(10))
	ct := cpmodel.Constraint{
		Kind:   cpmodel.KindLinear,
		Linear: &cpmodel.LinearConstraint{Expr: cpmodel.SingleVar(x), Domain: domain},
	}
	idx := ctx.WorkingModel().AddConstraint(ct)
	before := len(ctx.WorkingModel().Constraints)

	ExpandComplexLinearConstraint(ctx, idx, ct.Linear.Expr, ct.Linear.Domain, nil)

	after := len(ctx.WorkingModel().Constraints)
	if after-before != 4 {
		t.Errorf("ExpandComplexLinearConstraint emitted %d constraints, want 4 (3 per-interval linear + 1 disjunction clause)", after-before)
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("original complex linear constraint should be cleared")
	}
}

func TestExpandComplexLinearConstraintIntegerSlack(t *testing.T) {
	ctx, _ := newTestContext()
	ctx.params.EncodeComplexLinearConstraintWithInteger = true
	x := ctx.NewIntVar(cpmodel.NewDomain(0, 20))
	domain := cpmodel.NewSingleDomain(1).UnionWith(cpmodel.NewSingleDomain(5)).UnionWith(cpmodel.NewSingleDomain(10))
	ct := cpmodel.Constraint{
		Kind:   cpmodel.KindLinear,
		Linear: &cpmodel.LinearConstraint{Expr: cpmodel.SingleVar(x), Domain: domain},
	}
	idx := ctx.WorkingModel().AddConstraint(ct)
	before := len(ctx.WorkingModel().Constraints)

	ExpandComplexLinearConstraint(ctx, idx, ct.Linear.Expr, ct.Linear.Domain, nil)

	if after := len(ctx.WorkingModel().Constraints); after-before != 1 {
		t.Errorf("the integer-slack encoding should emit exactly one linear constraint, got %d", after-before)
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("original complex linear constraint should be cleared")
	}
}

// TestExpandSomeLinearOfSizeTwoForbidsEncodedSolution exercises spec.md
// §4.11 and the concrete scenario from spec.md §8: a size-2 linear
// disequality (3x+5y in Z minus a single excluded reachable value, modeled
// here as 1*x+2*y != 1) whose unique Diophantine solution is already
// value-encoded gets forbidden by a single clause.
func TestExpandSomeLinearOfSizeTwoForbidsEncodedSolution(t *testing.T) {
	ctx, _ := newTestContext()
	x := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	y := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	xLit := ctx.GetOrCreateVarValueEncoding(x, 1)
	yLit := ctx.GetOrCreateVarValueEncoding(y, 0)

	domain := cpmodel.NewSingleDomain(1).Complement()
	expr := cpmodel.NewLinearExpr([]cpmodel.VarRef{x, y}, []int64{1, 2}, 0)
	ct := cpmodel.Constraint{
		Kind:   cpmodel.KindLinear,
		Linear: &cpmodel.LinearConstraint{Expr: expr, Domain: domain},
	}
	idx := ctx.WorkingModel().AddConstraint(ct)
	before := len(ctx.WorkingModel().Constraints)

	ExpandSomeLinearOfSizeTwo(ctx, idx, x, y, 1, 2, domain, nil)

	var found bool
	for i := before; i < len(ctx.WorkingModel().Constraints); i++ {
		c := ctx.WorkingModel().Constraints[i]
		if c.Kind != cpmodel.KindBoolOr || c.BoolArgument == nil {
			continue
		}
		lits := c.BoolArgument.Literals
		if len(lits) == 2 &&
			((lits[0] == cpmodel.NegatedRef(xLit) && lits[1] == cpmodel.NegatedRef(yLit)) ||
				(lits[1] == cpmodel.NegatedRef(xLit) && lits[0] == cpmodel.NegatedRef(yLit))) {
			found = true
		}
	}
	if !found {
		t.Error("expected a clause forbidding x=1 and y=0 simultaneously")
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("original size-2 linear constraint should be cleared once it has been expanded into clauses")
	}
}

func TestExpandSomeLinearOfSizeTwoNoOpWithoutEncoding(t *testing.T) {
	ctx, _ := newTestContext()
	x := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	y := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	domain := cpmodel.NewSingleDomain(1).Complement()
	expr := cpmodel.NewLinearExpr([]cpmodel.VarRef{x, y}, []int64{1, 2}, 0)
	ct := cpmodel.Constraint{
		Kind:   cpmodel.KindLinear,
		Linear: &cpmodel.LinearConstraint{Expr: expr, Domain: domain},
	}
	idx := ctx.WorkingModel().AddConstraint(ct)
	before := len(ctx.WorkingModel().Constraints)

	ExpandSomeLinearOfSizeTwo(ctx, idx, x, y, 1, 2, domain, nil)

	if len(ctx.WorkingModel().Constraints) != before {
		t.Error("without a pre-existing value encoding for the forbidden solution, no clause should be emitted")
	}
}
