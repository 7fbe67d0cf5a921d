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

package cpmodel

import "testing"

func TestNewVarAndNewBoolVar(t *testing.T) {
	var m Model
	x := m.NewVar(NewDomain(0, 10), "x")
	b := m.NewBoolVar("b")
	if x != 0 || b != 1 {
		t.Errorf("got refs x=%d b=%d, want 0,1", x, b)
	}
	if got := m.Variables[b].Domain.FlattenedIntervals(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("bool var domain = %v, want [0,1]", got)
	}
}

func TestVarDomainNegation(t *testing.T) {
	var m Model
	b := m.NewBoolVar("b")
	neg := NegatedRef(b)
	got := m.VarDomain(neg).FlattenedIntervals()
	want := []int64{0, 1}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("VarDomain(NegatedRef(b)) = %v, want %v", got, want)
	}
}

func TestAddConstraintAndClear(t *testing.T) {
	var m Model
	b := m.NewBoolVar("b")
	idx := m.AddConstraint(Constraint{
		Kind:         KindBoolOr,
		BoolArgument: &BoolArgument{Literals: []VarRef{b}},
	})
	if m.Constraints[idx].Kind != KindBoolOr {
		t.Fatalf("Constraints[%d].Kind = %v, want KindBoolOr", idx, m.Constraints[idx].Kind)
	}
	m.Constraints[idx].Clear()
	if m.Constraints[idx].Kind != KindDummy {
		t.Errorf("after Clear, Kind = %v, want KindDummy", m.Constraints[idx].Kind)
	}
	if m.Constraints[idx].BoolArgument != nil {
		t.Errorf("after Clear, BoolArgument = %v, want nil", m.Constraints[idx].BoolArgument)
	}
}

func TestSingleTermAndConstant(t *testing.T) {
	e := SingleTerm(3, 5)
	if len(e.Vars) != 1 || e.Vars[0] != 3 || e.Coeffs[0] != 5 {
		t.Errorf("SingleTerm(3,5) = %+v", e)
	}
	c := Constant(7)
	if len(c.Vars) != 0 || c.Offset != 7 {
		t.Errorf("Constant(7) = %+v", c)
	}
}
