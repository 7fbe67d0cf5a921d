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

// TestMaybeExpandAllDiffSmallDomainExpands exercises the concrete scenario
// from spec.md §8: all-different over three variables whose value union is
// small gets expanded into per-value exactly-one constraints.
func TestMaybeExpandAllDiffSmallDomainExpands(t *testing.T) {
	ctx, _ := newTestContext()
	a := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	b := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	c := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	exprs := []cpmodel.LinearExpr{cpmodel.SingleVar(a), cpmodel.SingleVar(b), cpmodel.SingleVar(c)}
	alldiff := &cpmodel.AllDiffConstraint{Exprs: exprs}
	idx := ctx.WorkingModel().AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindAllDiff, AllDiff: alldiff})

	MaybeExpandAllDiff(ctx, idx, alldiff, nil)

	if ctx.ModelIsUnsat() {
		t.Fatal("all_diff expansion should not be unsat")
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("a small all_diff with no outside usage preferring bounds reasoning should be cleared after expansion")
	}
	stats := ctx.RuleStats()
	if stats[RuleAllDiffExpanded] != 1 {
		t.Errorf("RuleAllDiffExpanded fired %d times, want 1", stats[RuleAllDiffExpanded])
	}
}

// TestMaybeExpandAllDiffTableUsageStillExpands exercises the concrete
// scenario from spec.md §8: a variable shared with a table constraint pushes
// the usage scanner toward expansion.
func TestMaybeExpandAllDiffTableUsageStillExpands(t *testing.T) {
	ctx, _ := newTestContext()
	a := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	b := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	c := ctx.NewIntVar(cpmodel.NewDomain(0, 2))
	exprs := []cpmodel.LinearExpr{cpmodel.SingleVar(a), cpmodel.SingleVar(b), cpmodel.SingleVar(c)}
	alldiff := &cpmodel.AllDiffConstraint{Exprs: exprs}
	idx := ctx.WorkingModel().AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindAllDiff, AllDiff: alldiff})
	ctx.WorkingModel().AddConstraint(cpmodel.Constraint{
		Kind:  cpmodel.KindTable,
		Table: &cpmodel.TableConstraint{Vars: []cpmodel.VarRef{a}, Values: [][]int64{{0}, {1}, {2}}},
	})
	ctx.InitializeNewDomains()
	ctx.UpdateNewConstraintsVariableUsage(0)

	MaybeExpandAllDiff(ctx, idx, alldiff, nil)

	if ctx.ModelIsUnsat() {
		t.Fatal("all_diff expansion should not be unsat")
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("all_diff whose variable is also used by a table constraint should still expand (and drop the high-level form)")
	}
}

// TestMaybeExpandAllDiffLargeDomainWithIntervalUsageKeepsHighLevelForm
// exercises spec.md §4.9's decision table: a large value union combined with
// interval-constraint usage elsewhere should keep the high-level form instead
// of expanding to per-value constraints.
func TestMaybeExpandAllDiffLargeDomainWithIntervalUsageKeepsHighLevelForm(t *testing.T) {
	ctx, _ := newTestContext()
	a := ctx.NewIntVar(cpmodel.NewDomain(0, 1000))
	b := ctx.NewIntVar(cpmodel.NewDomain(0, 1000))
	exprs := []cpmodel.LinearExpr{cpmodel.SingleVar(a), cpmodel.SingleVar(b)}
	alldiff := &cpmodel.AllDiffConstraint{Exprs: exprs}
	idx := ctx.WorkingModel().AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindAllDiff, AllDiff: alldiff})
	ctx.WorkingModel().AddConstraint(cpmodel.Constraint{
		Kind:     cpmodel.KindInterval,
		Interval: &cpmodel.IntervalConstraint{Start: cpmodel.SingleVar(a), Size: cpmodel.Constant(5), End: cpmodel.SingleVar(a)},
	})
	ctx.InitializeNewDomains()
	ctx.UpdateNewConstraintsVariableUsage(0)

	MaybeExpandAllDiff(ctx, idx, alldiff, nil)

	if ctx.WorkingModel().Constraints[idx].Kind == cpmodel.KindDummy {
		t.Error("all_diff with a large value union and interval usage elsewhere should keep its high-level form, not be cleared")
	}
}
