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

// ExpandInverse rewrites `inverse(f, g)` (f[i] == j iff g[j] == i, for all i,
// j in [0,n)) per spec.md §4.5: bound both arrays to [0,n-1], check that a
// variable repeated within one array has at least as many values as
// occurrences, run two rounds of a two-direction domain filter, then
// symmetrically link value encodings.
func ExpandInverse(ctx *Context, idx cpmodel.ConstrIndex, f, g []cpmodel.VarRef, enforcement []cpmodel.VarRef) {
	n := int64(len(f))
	if len(g) != int(n) {
		ctx.NotifyThatModelIsUnsat("inverse: f and g must have the same length")
		return
	}
	bounds := cpmodel.NewDomain(0, n-1)
	for _, v := range f {
		if ok := ctx.IntersectDomainWith(v, bounds, nil); !ok {
			return
		}
	}
	for _, v := range g {
		if ok := ctx.IntersectDomainWith(v, bounds, nil); !ok {
			return
		}
	}

	// A VarRef repeated within f (or within g) must have at least as many
	// values as occurrences; no value is removed from its domain here.
	excludeDuplicatePositions(ctx, f)
	excludeDuplicatePositions(ctx, g)
	if ctx.ModelIsUnsat() {
		return
	}

	for pass := 0; pass < 2; pass++ {
		for i, fi := range f {
			allowed := cpmodel.NewEmptyDomain()
			for _, j := range ctx.DomainOf(fi).Values() {
				if j < 0 || j >= n {
					continue
				}
				if ctx.DomainOf(g[j]).Contains(int64(i)) {
					allowed = allowed.UnionWith(cpmodel.NewSingleDomain(j))
				}
			}
			if ok := ctx.IntersectDomainWith(fi, allowed, nil); !ok {
				return
			}
		}
		for j, gj := range g {
			allowed := cpmodel.NewEmptyDomain()
			for _, i := range ctx.DomainOf(gj).Values() {
				if i < 0 || i >= n {
					continue
				}
				if ctx.DomainOf(f[i]).Contains(int64(j)) {
					allowed = allowed.UnionWith(cpmodel.NewSingleDomain(i))
				}
			}
			if ok := ctx.IntersectDomainWith(gj, allowed, nil); !ok {
				return
			}
		}
	}

	for i, fi := range f {
		for _, j := range ctx.DomainOf(fi).Values() {
			fLit := ctx.GetOrCreateVarValueEncoding(fi, j)
			gLit := ctx.GetOrCreateVarValueEncoding(g[j], int64(i))
			ctx.StoreBooleanEqualityRelation(fLit, gLit)
		}
	}

	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleInverseExpanded)
}

// excludeDuplicatePositions notifies unsat when a VarRef occurring at k > 1
// positions of `arr` has fewer than k values in its domain. It removes no
// value from any domain, and a VarRef shared between f and g is not examined,
// since each array is checked on its own.
func excludeDuplicatePositions(ctx *Context, arr []cpmodel.VarRef) {
	positions := make(map[cpmodel.VarRef][]int)
	for i, v := range arr {
		positions[v] = append(positions[v], i)
	}
	for v, idxs := range positions {
		if len(idxs) <= 1 {
			continue
		}
		if ctx.DomainOf(v).Size() < int64(len(idxs)) {
			ctx.NotifyThatModelIsUnsat("inverse: duplicated variable has too small a domain for its occurrences")
			return
		}
	}
}
