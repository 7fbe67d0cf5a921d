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

// ababAutomaton builds a 3-state automaton accepting exactly the sequence
// (a b)+ of a given length, with label 1 standing for 'a' and 2 for 'b'.
func ababAutomaton() (startingState int64, finalStates []int64, transitions []cpmodel.AutomatonTransition) {
	return 0, []int64{2}, []cpmodel.AutomatonTransition{
		{Tail: 0, Label: 1, Head: 1},
		{Tail: 1, Label: 2, Head: 2},
		{Tail: 2, Label: 1, Head: 1},
	}
}

// TestExpandAutomatonUniquePathFixesAllVars exercises the concrete scenario
// from spec.md §8: an automaton over x_0..x_3 accepting only "abab" forces
// every variable to its unique accepting label.
func TestExpandAutomatonUniquePathFixesAllVars(t *testing.T) {
	ctx, _ := newTestContext()
	start, final, transitions := ababAutomaton()
	vars := []cpmodel.VarRef{
		ctx.NewIntVar(cpmodel.NewDomain(0, 2)),
		ctx.NewIntVar(cpmodel.NewDomain(0, 2)),
		ctx.NewIntVar(cpmodel.NewDomain(0, 2)),
		ctx.NewIntVar(cpmodel.NewDomain(0, 2)),
	}
	a := &cpmodel.AutomatonConstraint{
		Vars: vars, StartingState: start, FinalStates: final, Transitions: transitions,
	}
	idx := ctx.WorkingModel().AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindAutomaton, Automaton: a})

	ExpandAutomaton(ctx, idx, a, nil)

	if ctx.ModelIsUnsat() {
		t.Fatal("automaton expansion should not be unsat")
	}
	want := []int64{1, 2, 1, 2}
	for i, v := range vars {
		d := ctx.DomainOf(v)
		if !d.IsFixed() || d.FixedValue() != want[i] {
			t.Errorf("var %d domain = %s, want fixed to %d", i, d.String(), want[i])
		}
	}
	if ctx.WorkingModel().Constraints[idx].Kind != cpmodel.KindDummy {
		t.Error("original automaton constraint should be cleared")
	}
}

func TestExpandAutomatonNoReachableFinalIsUnsat(t *testing.T) {
	ctx, _ := newTestContext()
	start, _, transitions := ababAutomaton()
	vars := []cpmodel.VarRef{
		ctx.NewIntVar(cpmodel.NewSingleDomain(99)), // never matches any transition label
	}
	a := &cpmodel.AutomatonConstraint{
		Vars: vars, StartingState: start, FinalStates: []int64{2}, Transitions: transitions,
	}
	idx := ctx.WorkingModel().AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindAutomaton, Automaton: a})

	ExpandAutomaton(ctx, idx, a, nil)

	if !ctx.ModelIsUnsat() {
		t.Error("automaton with no reachable final state should notify unsat")
	}
}
