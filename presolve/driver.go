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
	log "github.com/golang/glog"

	"github.com/constraintkit/cpexpand/cpmodel"
)

// Expand runs the two-pass constraint-expansion driver over ctx's working
// model, per spec.md §4.12. It is a no-op if expansion is disabled by
// configuration or the model has already been expanded.
func Expand(ctx *Context) {
	if ctx.Params().DisableConstraintExpansion {
		return
	}
	if ctx.ModelIsExpanded() {
		log.V(1).Info("Expand called on an already-expanded model, skipping")
		return
	}

	ctx.InitializeNewDomains()
	ctx.ClearPrecedenceCache()

	runPass(ctx, dispatchPass1)
	if ctx.ModelIsUnsat() {
		flushDomainsAndMarkExpanded(ctx)
		return
	}
	runPass(ctx, dispatchPass2)

	flushDomainsAndMarkExpanded(ctx)
}

func flushDomainsAndMarkExpanded(ctx *Context) {
	ctx.NotifyThatModelIsExpanded()
}

// runPass walks the working model's constraint list once (snapshotting its
// length up front, since expanders only append after the current position)
// and dispatches each non-cleared constraint to `dispatch`. After each
// successfully expanded constraint it reconciles variable/constraint
// incidence and checks for early unsat abort.
func runPass(ctx *Context, dispatch func(*Context, cpmodel.ConstrIndex)) {
	n := len(ctx.WorkingModel().Constraints)
	for i := 0; i < n; i++ {
		idx := cpmodel.ConstrIndex(i)
		ct := ctx.WorkingModel().Constraints[idx]
		if ct.Kind == cpmodel.KindDummy {
			continue
		}
		before := cpmodel.ConstrIndex(len(ctx.WorkingModel().Constraints))
		dispatch(ctx, idx)
		ctx.UpdateNewConstraintsVariableUsage(before)
		ctx.UpdateConstraintVariableUsage(idx)
		if ctx.ModelIsUnsat() {
			return
		}
	}
}

// dispatchPass1 implements the first driver pass: Reservoir (when all level
// changes are fixed), IntMod, IntProd, Element, Inverse, Automaton, Table,
// and Linear only when its domain is complex and main presolve is disabled
// (cp_model_presolve == false); AllDiff is deferred to pass 2.
func dispatchPass1(ctx *Context, idx cpmodel.ConstrIndex) {
	ct := ctx.WorkingModel().Constraints[idx]
	switch ct.Kind {
	case cpmodel.KindReservoir:
		if !ctx.Params().ExpandReservoirConstraints {
			return
		}
		if !allLevelChangesFixed(ctx, ct.Reservoir) {
			return
		}
		ExpandReservoir(ctx, idx, ct.Reservoir, ct.Enforcement)
	case cpmodel.KindIntMod:
		if len(ct.LinearArg.Exprs) != 2 {
			return
		}
		ExpandIntMod(ctx, idx, ct.LinearArg.Target, ct.LinearArg.Exprs[0], ct.LinearArg.Exprs[1], ct.Enforcement)
	case cpmodel.KindIntProd:
		ExpandIntProd(ctx, idx, ct.LinearArg.Target, ct.LinearArg.Exprs, ct.Enforcement)
	case cpmodel.KindElement:
		ExpandElement(ctx, idx, ct.Element.Index, ct.Element.Target, ct.Element.Vars, ct.Enforcement)
	case cpmodel.KindInverse:
		ExpandInverse(ctx, idx, ct.Inverse.FDirect, ct.Inverse.FInverse, ct.Enforcement)
	case cpmodel.KindAutomaton:
		ExpandAutomaton(ctx, idx, ct.Automaton, ct.Enforcement)
	case cpmodel.KindTable:
		if ct.Table.Negated {
			ExpandNegativeTable(ctx, idx, ct.Table.Vars, ct.Table.Values, ct.Enforcement)
		} else {
			ExpandPositiveTable(ctx, idx, ct.Table.Vars, ct.Table.Values, ct.Enforcement)
		}
	case cpmodel.KindLinear:
		if !ctx.Params().CpModelPresolve && IsComplexDomain(ct.Linear.Domain) {
			ExpandComplexLinearConstraint(ctx, idx, ct.Linear.Expr, ct.Linear.Domain, ct.Enforcement)
		}
	}
}

// dispatchPass2 implements the second driver pass: AllDiff (with the usage
// scanner) and Linear's small-disequality path (and, when deferred from pass
// 1, the complex-domain rewrite).
func dispatchPass2(ctx *Context, idx cpmodel.ConstrIndex) {
	ct := ctx.WorkingModel().Constraints[idx]
	switch ct.Kind {
	case cpmodel.KindAllDiff:
		MaybeExpandAllDiff(ctx, idx, ct.AllDiff, ct.Enforcement)
	case cpmodel.KindLinear:
		if ctx.Params().CpModelPresolve && IsComplexDomain(ct.Linear.Domain) {
			ExpandComplexLinearConstraint(ctx, idx, ct.Linear.Expr, ct.Linear.Domain, ct.Enforcement)
			return
		}
		if len(ct.Linear.Expr.Vars) == 2 && ct.Linear.Expr.Coeffs[0] != 0 && ct.Linear.Expr.Coeffs[1] != 0 {
			ExpandSomeLinearOfSizeTwo(ctx, idx, ct.Linear.Expr.Vars[0], ct.Linear.Expr.Vars[1],
				ct.Linear.Expr.Coeffs[0], ct.Linear.Expr.Coeffs[1], ct.Linear.Domain, ct.Enforcement)
		}
	}
}
