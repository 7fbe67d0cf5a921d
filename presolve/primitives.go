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
	"sort"

	"github.com/constraintkit/cpexpand/cpmodel"
)

// ExpandIntProdWithBool emits the product-with-Boolean fragment:
// `b -> (x - p = 0)` and `!b -> (p = 0)`, each additionally gated by
// `enforcement`. b must be a Boolean literal; x and p are linear expressions.
func ExpandIntProdWithBool(ctx *Context, b cpmodel.VarRef, x, p cpmodel.LinearExpr, enforcement ...cpmodel.VarRef) {
	diff := combineLinear(x, negateLinear(p))
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindLinear,
		Enforcement: append(append([]cpmodel.VarRef{}, enforcement...), b),
		Linear:      &cpmodel.LinearConstraint{Expr: diff, Domain: cpmodel.NewSingleDomain(0)},
	})
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindLinear,
		Enforcement: append(append([]cpmodel.VarRef{}, enforcement...), cpmodel.NegatedRef(b)),
		Linear:      &cpmodel.LinearConstraint{Expr: p, Domain: cpmodel.NewSingleDomain(0)},
	})
}

// Link implements link-literals-and-values: given tuple literals `lits[i]`
// each associated with value `values[i]`, and a fully-encoded variable's
// value-literal map `enc`, emits the constraints that equate "tuple i
// selected" with "value values[i] selected" for every value that appears.
func Link(ctx *Context, lits []cpmodel.VarRef, values []int64, enc map[int64]cpmodel.VarRef) {
	byValue := make(map[int64][]cpmodel.VarRef)
	for i, v := range values {
		byValue[v] = append(byValue[v], lits[i])
	}
	sortedValues := make([]int64, 0, len(byValue))
	for v := range byValue {
		sortedValues = append(sortedValues, v)
	}
	sort.Slice(sortedValues, func(i, j int) bool { return sortedValues[i] < sortedValues[j] })

	for _, v := range sortedValues {
		encLit, ok := enc[v]
		if !ok {
			continue
		}
		supporters := byValue[v]
		if len(supporters) == 1 {
			ctx.StoreBooleanEqualityRelation(encLit, supporters[0])
			continue
		}
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind: cpmodel.KindBoolOr,
			BoolArgument: &cpmodel.BoolArgument{
				Literals: append([]cpmodel.VarRef{cpmodel.NegatedRef(encLit)}, supporters...),
			},
		})
		for _, l := range supporters {
			ctx.AddImplication(l, encLit)
		}
	}
}

// ImplyInReachableValues implements imply-in-reachable-values: emits the
// smaller of the two equivalent encodings of `lit -> v in reachable`, given
// that enc fully encodes v.
func ImplyInReachableValues(ctx *Context, lit cpmodel.VarRef, reachable map[int64]bool, enc map[int64]cpmodel.VarRef) {
	if len(reachable) == len(enc) {
		return
	}
	if len(reachable) <= len(enc)/2 {
		lits := []cpmodel.VarRef{cpmodel.NegatedRef(lit)}
		values := sortedKeys(reachable)
		for _, v := range values {
			if l, ok := enc[v]; ok {
				lits = append(lits, l)
			}
		}
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:         cpmodel.KindBoolOr,
			BoolArgument: &cpmodel.BoolArgument{Literals: lits},
		})
		return
	}
	for _, v := range sortedEncKeys(enc) {
		if !reachable[v] {
			ctx.AddImplication(lit, cpmodel.NegatedRef(enc[v]))
		}
	}
}

func sortedEncKeys(enc map[int64]cpmodel.VarRef) []int64 {
	out := make([]int64, 0, len(enc))
	for k := range enc {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
