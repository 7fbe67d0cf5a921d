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

// TestExpandInverseBoundsAndLinks exercises the concrete scenario from
// spec.md §8: inverse([a,b,c],[d,e,f]) over a 3-element domain, checking that
// out-of-range values are pruned and the symmetric value-encoding link is
// established (querying it through GetOrCreateVarValueEncoding's cache).
func TestExpandInverseBoundsAndLinks(t *testing.T) {
	ctx, _ := newTestContext()
	a := ctx.NewIntVar(cpmodel.NewDomain(-5, 10))
	b := ctx.NewIntVar(cpmodel.NewDomain(-5, 10))
	c := ctx.NewIntVar(cpmodel.NewDomain(-5, 10))
	d := ctx.NewIntVar(cpmodel.NewDomain(-5, 10))
	e := ctx.NewIntVar(cpmodel.NewDomain(-5, 10))
	f := ctx.NewIntVar(cpmodel.NewDomain(-5, 10))

	f1 := []cpmodel.VarRef{a, b, c}
	g1 := []cpmodel.VarRef{d, e, f}
	ct := cpmodel.Constraint{
		Kind:    cpmodel.KindInverse,
		Inverse: &cpmodel.InverseConstraint{FDirect: f1, FInverse: g1},
	}
	idx := ctx.WorkingModel().AddConstraint(ct)

	ExpandInverse(ctx, idx, f1, g1, nil)

	if ctx.ModelIsUnsat() {
		t.Fatal("inverse expansion should not be unsat")
	}
	for _, v := range append(append([]cpmodel.VarRef{}, f1...), g1...) {
		lo, _ := ctx.DomainOf(v).Min()
		hi, _ := ctx.DomainOf(v).Max()
		if lo < 0 || hi > 2 {
			t.Errorf("variable domain after bounding = [%d,%d], want within [0,2]", lo, hi)
		}
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("original inverse constraint should be cleared")
	}

	// a=0 is linked to d=0 through implications between two distinct
	// literals, not through one shared literal.
	aLit := ctx.GetOrCreateVarValueEncoding(a, 0)
	dLit := ctx.GetOrCreateVarValueEncoding(d, 0)
	if aLit == dLit {
		t.Error("distinct variables should not share the same value-encoding literal; the link must be via implications")
	}
}

func TestExpandInverseMismatchedLengthIsUnsat(t *testing.T) {
	ctx, _ := newTestContext()
	a := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	d := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	e := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	ct := cpmodel.Constraint{
		Kind:    cpmodel.KindInverse,
		Inverse: &cpmodel.InverseConstraint{FDirect: []cpmodel.VarRef{a}, FInverse: []cpmodel.VarRef{d, e}},
	}
	idx := ctx.WorkingModel().AddConstraint(ct)
	ExpandInverse(ctx, idx, []cpmodel.VarRef{a}, []cpmodel.VarRef{d, e}, nil)
	if !ctx.ModelIsUnsat() {
		t.Error("inverse with mismatched array lengths should notify unsat")
	}
}
