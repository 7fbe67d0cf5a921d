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
	"bytes"
	"testing"

	"github.com/constraintkit/cpexpand/cpmodel"
)

func newTestContext() (*Context, cpmodel.VarRef) {
	working := &cpmodel.Model{}
	mapping := &cpmodel.Model{}
	ctx := NewContext(working, mapping, DefaultParams())
	v := ctx.NewIntVar(cpmodel.NewDomain(0, 5))
	ctx.InitializeNewDomains()
	return ctx, v
}

func TestValueEncodingCacheIsCanonical(t *testing.T) {
	ctx, v := newTestContext()
	l1 := ctx.GetOrCreateVarValueEncoding(v, 3)
	l2 := ctx.GetOrCreateVarValueEncoding(v, 3)
	if l1 != l2 {
		t.Errorf("GetOrCreateVarValueEncoding(v,3) returned different literals on repeated calls: %d vs %d", l1, l2)
	}
	l3 := ctx.GetOrCreateVarValueEncoding(v, 4)
	if l1 == l3 {
		t.Errorf("GetOrCreateVarValueEncoding returned the same literal for two different values")
	}
}

func TestInsertVarValueEncodingBindsExisting(t *testing.T) {
	ctx, v := newTestContext()
	existing := ctx.NewBoolVar()
	ctx.InsertVarValueEncoding(existing, v, 2)
	got, ok := ctx.HasVarValueEncoding(v, 2)
	if !ok || got != existing {
		t.Errorf("HasVarValueEncoding(v,2) = (%d,%v), want (%d,true)", got, ok, existing)
	}
}

func TestGetOrCreateVarValueEncodingOutsideDomainIsFalse(t *testing.T) {
	ctx, v := newTestContext()
	lit := ctx.GetOrCreateVarValueEncoding(v, 100)
	if lit != ctx.GetFalseLiteral() {
		t.Errorf("GetOrCreateVarValueEncoding(v,100) = %d, want the false literal", lit)
	}
}

func TestIntersectDomainWithDetectsUnsat(t *testing.T) {
	ctx, v := newTestContext()
	ok := ctx.IntersectDomainWith(v, cpmodel.NewDomain(10, 20), nil)
	if ok {
		t.Error("IntersectDomainWith with a disjoint domain returned true, want false")
	}
	if !ctx.ModelIsUnsat() {
		t.Error("IntersectDomainWith with a disjoint domain should notify unsat")
	}
}

func TestReifiedPrecedenceCacheIsCanonical(t *testing.T) {
	ctx, v := newTestContext()
	a := ctx.GetTrueLiteral()
	e1 := cpmodel.SingleVar(v)
	e2 := cpmodel.Constant(3)
	p1 := ctx.GetOrCreateReifiedPrecedenceLiteral(e1, e2, a, a)
	p2 := ctx.GetOrCreateReifiedPrecedenceLiteral(e1, e2, a, a)
	if p1 != p2 {
		t.Errorf("GetOrCreateReifiedPrecedenceLiteral returned different literals for the same key: %d vs %d", p1, p2)
	}
}

// TestReifiedPrecedenceCacheEmitsBothDirections exercises the full
// reification contract P <-> (ai && aj && ei <= ej): both the forward
// enforced constraint under {p, ai, aj} and the converse under {!p, ai, aj}
// must be present, or a solver could set p=0 while ei<=ej still holds.
func TestReifiedPrecedenceCacheEmitsBothDirections(t *testing.T) {
	ctx, v := newTestContext()
	ai := ctx.NewBoolVar()
	aj := ctx.NewBoolVar()
	e1 := cpmodel.SingleVar(v)
	e2 := cpmodel.Constant(3)
	before := len(ctx.WorkingModel().Constraints)

	p := ctx.GetOrCreateReifiedPrecedenceLiteral(e1, e2, ai, aj)

	var forward, backward bool
	for i := before; i < len(ctx.WorkingModel().Constraints); i++ {
		c := ctx.WorkingModel().Constraints[i]
		if c.Kind != cpmodel.KindLinear || len(c.Enforcement) != 3 {
			continue
		}
		for _, e := range c.Enforcement {
			if e == p {
				forward = true
			}
			if e == cpmodel.NegatedRef(p) {
				backward = true
			}
		}
	}
	if !forward {
		t.Error("expected an enforced constraint under {p, ai, aj} forcing ei <= ej")
	}
	if !backward {
		t.Error("expected an enforced constraint under {!p, ai, aj} forcing ei > ej")
	}
}

func TestRuleStatsAndDump(t *testing.T) {
	ctx, _ := newTestContext()
	ctx.UpdateRuleStats(RuleElementExpanded)
	ctx.UpdateRuleStats(RuleElementExpanded)
	stats := ctx.RuleStats()
	if stats[RuleElementExpanded] != 2 {
		t.Errorf("RuleStats()[%q] = %d, want 2", RuleElementExpanded, stats[RuleElementExpanded])
	}
	var buf bytes.Buffer
	ctx.DumpRuleStats(&buf)
	if got, want := buf.String(), RuleElementExpanded+": 2\n"; got != want {
		t.Errorf("DumpRuleStats wrote %q, want %q", got, want)
	}
}

func TestModelIsExpandedOneShot(t *testing.T) {
	ctx, _ := newTestContext()
	if ctx.ModelIsExpanded() {
		t.Fatal("fresh context reports ModelIsExpanded() = true")
	}
	ctx.NotifyThatModelIsExpanded()
	if !ctx.ModelIsExpanded() {
		t.Error("after NotifyThatModelIsExpanded, ModelIsExpanded() = false")
	}
}
