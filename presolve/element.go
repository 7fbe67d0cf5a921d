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

// ExpandElement rewrites `element(index, target, a[])` (a[index] == target)
// per spec.md §4.6.
func ExpandElement(ctx *Context, idx cpmodel.ConstrIndex, index, target cpmodel.VarRef, a []cpmodel.VarRef, enforcement []cpmodel.VarRef) {
	n := int64(len(a))
	if ok := ctx.IntersectDomainWith(index, cpmodel.NewDomain(0, n-1), nil); !ok {
		return
	}

	if index == target || samePositiveVar(index, target) {
		restricted := cpmodel.NewEmptyDomain()
		for _, v := range ctx.DomainOf(index).Values() {
			if v < 0 || v >= n {
				continue
			}
			if ctx.DomainOf(a[v]).Contains(v) {
				restricted = restricted.UnionWith(cpmodel.NewSingleDomain(v))
			}
		}
		if ok := ctx.IntersectDomainWith(index, restricted, nil); !ok {
			return
		}
		for _, v := range ctx.DomainOf(index).Values() {
			lit := ctx.GetOrCreateVarValueEncoding(index, v)
			ctx.AddImplyInDomain(lit, a[v], cpmodel.NewSingleDomain(v))
		}
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleElementIndexEqTarget)
		return
	}

	restricted := cpmodel.NewEmptyDomain()
	targetUnion := cpmodel.NewEmptyDomain()
	for _, v := range ctx.DomainOf(index).Values() {
		if v < 0 || v >= n {
			continue
		}
		if !ctx.DomainOf(a[v]).IntersectionWith(ctx.DomainOf(target)).IsEmpty() {
			restricted = restricted.UnionWith(cpmodel.NewSingleDomain(v))
			targetUnion = targetUnion.UnionWith(ctx.DomainOf(a[v]))
		}
	}
	if ok := ctx.IntersectDomainWith(index, restricted, nil); !ok {
		return
	}
	if ok := ctx.IntersectDomainWith(target, targetUnion, nil); !ok {
		return
	}

	allFixed := true
	for _, v := range ctx.DomainOf(index).Values() {
		if !ctx.DomainOf(a[v]).IsFixed() {
			allFixed = false
			break
		}
	}

	if allFixed {
		supporters := make(map[int64][]cpmodel.VarRef)
		for _, v := range ctx.DomainOf(index).Values() {
			c := ctx.DomainOf(a[v]).FixedValue()
			supporters[c] = append(supporters[c], ctx.GetOrCreateVarValueEncoding(index, v))
		}
		indexLits := make([]cpmodel.VarRef, 0)
		for _, v := range ctx.DomainOf(index).Values() {
			indexLits = append(indexLits, ctx.GetOrCreateVarValueEncoding(index, v))
		}
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:         cpmodel.KindExactlyOne,
			BoolArgument: &cpmodel.BoolArgument{Literals: indexLits},
		})
		for _, v := range ctx.DomainOf(index).Values() {
			c := ctx.DomainOf(a[v]).FixedValue()
			indexLit := ctx.GetOrCreateVarValueEncoding(index, v)
			targetLit := ctx.GetOrCreateVarValueEncoding(target, c)
			ctx.AddImplication(indexLit, targetLit)
		}
		for _, c := range sortedSupporterKeys(supporters) {
			lits := supporters[c]
			targetLit := ctx.GetOrCreateVarValueEncoding(target, c)
			if len(lits) == 1 {
				ctx.StoreBooleanEqualityRelation(targetLit, lits[0])
				continue
			}
			clause := append([]cpmodel.VarRef{cpmodel.NegatedRef(targetLit)}, lits...)
			ctx.working.AddConstraint(cpmodel.Constraint{
				Kind:         cpmodel.KindBoolOr,
				BoolArgument: &cpmodel.BoolArgument{Literals: clause},
			})
		}
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleElementExpanded)
		return
	}

	indexLits := make([]cpmodel.VarRef, 0)
	for _, v := range ctx.DomainOf(index).Values() {
		indexLits = append(indexLits, ctx.GetOrCreateVarValueEncoding(index, v))
	}
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:         cpmodel.KindExactlyOne,
		BoolArgument: &cpmodel.BoolArgument{Literals: indexLits},
	})
	for _, v := range ctx.DomainOf(index).Values() {
		indexLit := ctx.GetOrCreateVarValueEncoding(index, v)
		if ctx.DomainOf(a[v]).IsFixed() {
			ctx.AddImplyInDomain(indexLit, target, ctx.DomainOf(a[v]))
			continue
		}
		diff := combineLinear(cpmodel.SingleVar(a[v]), negateLinear(cpmodel.SingleVar(target)))
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:        cpmodel.KindLinear,
			Enforcement: append(append([]cpmodel.VarRef{}, enforcement...), indexLit),
			Linear:      &cpmodel.LinearConstraint{Expr: diff, Domain: cpmodel.NewSingleDomain(0)},
		})
	}
	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleElementExpanded)
}

func samePositiveVar(a, b cpmodel.VarRef) bool {
	return cpmodel.PositiveRef(a) == cpmodel.PositiveRef(b)
}
