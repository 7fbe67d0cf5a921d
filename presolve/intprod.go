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

// isBooleanLiteral reports whether `e` is exactly one literal whose domain is
// a subset of {0,1}.
func isBooleanLiteral(ctx *Context, e cpmodel.LinearExpr) (cpmodel.VarRef, bool) {
	lit, ok := ctx.ExpressionIsALiteral(e)
	if !ok {
		return 0, false
	}
	d := ctx.DomainOf(lit)
	lo, _ := d.Min()
	hi, _ := d.Max()
	if lo < 0 || hi > 1 {
		return 0, false
	}
	return lit, true
}

// ExpandIntProd rewrites a binary integer product into the
// product-with-Boolean fragment when exactly one factor is a Boolean
// literal, per spec.md §4.4. With zero or two non-Boolean factors, the
// constraint is left unchanged for a later pass (or for the actual solver,
// since general integer products are out of scope here).
func ExpandIntProd(ctx *Context, idx cpmodel.ConstrIndex, target cpmodel.LinearExpr, factors []cpmodel.LinearExpr, enforcement []cpmodel.VarRef) {
	if len(factors) != 2 {
		return
	}
	bLit, firstIsBool := isBooleanLiteral(ctx, factors[0])
	other := factors[1]
	if !firstIsBool {
		bLit, firstIsBool = isBooleanLiteral(ctx, factors[1])
		other = factors[0]
	}
	if !firstIsBool {
		return
	}
	if _, secondIsBool := isBooleanLiteral(ctx, other); secondIsBool {
		// Both factors Boolean: leave for the general Boolean-product
		// handling elsewhere, not this fragment.
		return
	}

	ExpandIntProdWithBool(ctx, bLit, other, target, enforcement...)
	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleIntProdWithBoolExpanded)
}
