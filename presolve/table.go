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
	"fmt"
	"sort"

	"github.com/constraintkit/cpexpand/cpmodel"
)

// ExpandNegativeTable rewrites a `vars not-in tuples` constraint: one clause
// per surviving (deduplicated) tuple, per spec.md §4.8.
func ExpandNegativeTable(ctx *Context, idx cpmodel.ConstrIndex, vars []cpmodel.VarRef, tuples [][]int64, enforcement []cpmodel.VarRef) {
	seen := make(map[string]bool)
	for _, row := range tuples {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		clause := append([]cpmodel.VarRef{}, negatedEnforcement(enforcement)...)
		for i, v := range row {
			clause = append(clause, cpmodel.NegatedRef(ctx.GetOrCreateVarValueEncoding(vars[i], v)))
		}
		ctx.working.AddConstraint(cpmodel.Constraint{
			Kind:         cpmodel.KindBoolOr,
			BoolArgument: &cpmodel.BoolArgument{Literals: clause},
		})
	}
	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleTableNegativeExpanded)
}

func negatedEnforcement(enforcement []cpmodel.VarRef) []cpmodel.VarRef {
	out := make([]cpmodel.VarRef, len(enforcement))
	for i, e := range enforcement {
		out[i] = cpmodel.NegatedRef(e)
	}
	return out
}

func rowKey(row []int64) string {
	s := ""
	for _, v := range row {
		s += fmt.Sprintf("%d,", v)
	}
	return s
}

// pruneTableRows drops rows with a value outside the corresponding column's
// domain and returns the surviving rows plus, per column, the set of values
// that still occur in some surviving row.
func pruneTableRows(ctx *Context, vars []cpmodel.VarRef, tuples [][]int64) ([][]int64, []map[int64]bool) {
	cols := make([]map[int64]bool, len(vars))
	for i := range cols {
		cols[i] = make(map[int64]bool)
	}
	var kept [][]int64
	for _, row := range tuples {
		ok := true
		for i, v := range row {
			if !ctx.DomainOf(vars[i]).Contains(v) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		kept = append(kept, row)
		for i, v := range row {
			cols[i][v] = true
		}
	}
	return kept, cols
}

// ExpandPositiveTable rewrites a `vars in tuples` constraint per spec.md
// §4.8: domain pruning, an optional size-2 fast path, optional WCSP cost
// reduction, wildcard/full compression, and a per-tuple-literal encoding
// with exactly-one and per-column linking.
func ExpandPositiveTable(ctx *Context, idx cpmodel.ConstrIndex, vars []cpmodel.VarRef, tuples [][]int64, enforcement []cpmodel.VarRef) {
	kept, cols := pruneTableRows(ctx, vars, tuples)
	if len(kept) == 0 {
		ctx.NotifyThatModelIsUnsat("table: no tuple survives domain pruning")
		ctx.UpdateRuleStats(RuleTableUnsat)
		return
	}
	for i, v := range vars {
		values := make([]int64, 0, len(cols[i]))
		for val := range cols[i] {
			values = append(values, val)
		}
		if ok := ctx.IntersectDomainWith(v, cpmodel.FromValues(values), nil); !ok {
			return
		}
	}

	freeCols := 0
	for _, c := range cols {
		if len(c) > 1 {
			freeCols++
		}
	}
	if freeCols <= 1 {
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleTablePositiveExpanded)
		return
	}

	if ctx.Params().DetectTableWithCost && len(vars) > 2 {
		if costCol := len(vars) - 1; ctx.VariableWithCostIsUniqueAndRemovable(vars[costCol]) {
			expandTableWithCostColumn(ctx, vars, kept, costCol)
			ctx.MarkVariableAsRemoved(vars[costCol])
			ctx.WorkingModel().Constraints[idx].Clear()
			ctx.UpdateRuleStats(RuleTableCostColumnFolded)
			return
		}
	}

	if len(vars) == 2 && !ctx.Params().DetectTableWithCost {
		expandSizeTwoTable(ctx, vars, kept, enforcement)
		ctx.WorkingModel().Constraints[idx].Clear()
		ctx.UpdateRuleStats(RuleTablePositiveExpanded)
		return
	}

	compressed := compressTableRows(kept, cols, ctx.Params().TableCompressionLevel)

	tupleLits := make([]cpmodel.VarRef, len(compressed))
	for i := range compressed {
		tupleLits[i] = ctx.NewBoolVar()
	}
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:         cpmodel.KindExactlyOne,
		BoolArgument: &cpmodel.BoolArgument{Literals: tupleLits},
	})

	for col := range vars {
		if len(cols[col]) <= 1 {
			continue
		}
		supporters := make(map[int64][]cpmodel.VarRef)
		for r, row := range compressed {
			cell := row[col]
			if cell == nil {
				// Wildcard: this tuple supports every value of the column.
				for _, v := range sortedKeysMap(cols[col]) {
					supporters[v] = append(supporters[v], tupleLits[r])
				}
				continue
			}
			clause := append([]cpmodel.VarRef{cpmodel.NegatedRef(tupleLits[r])}, valueLits(ctx, vars[col], cell)...)
			ctx.working.AddConstraint(cpmodel.Constraint{
				Kind:         cpmodel.KindBoolOr,
				BoolArgument: &cpmodel.BoolArgument{Literals: clause},
			})
			for _, v := range cell {
				supporters[v] = append(supporters[v], tupleLits[r])
			}
		}
		for _, v := range sortedSupporterKeys(supporters) {
			valueLit := ctx.GetOrCreateVarValueEncoding(vars[col], v)
			clause := append([]cpmodel.VarRef{cpmodel.NegatedRef(valueLit)}, supporters[v]...)
			ctx.working.AddConstraint(cpmodel.Constraint{
				Kind:         cpmodel.KindBoolOr,
				BoolArgument: &cpmodel.BoolArgument{Literals: clause},
			})
		}
	}

	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleTablePositiveExpanded)
}

// sortedSupporterKeys returns a per-value supporters map's keys in
// ascending order, so emitted clauses have a deterministic order.
func sortedSupporterKeys(supporters map[int64][]cpmodel.VarRef) []int64 {
	out := make([]int64, 0, len(supporters))
	for v := range supporters {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// expandTableWithCostColumn handles the WCSP-style table where the last
// column is a cost variable used nowhere else in the model. Per spec.md
// §4.8 step 3, such a column does not need its own value encoding: every
// row's cost contribution is fixed once a tuple is chosen, so the column
// collapses to a single linear equality over the tuple-selector literals
// instead of the usual per-value support clauses.
func expandTableWithCostColumn(ctx *Context, vars []cpmodel.VarRef, rows [][]int64, costCol int) {
	tupleLits := make([]cpmodel.VarRef, len(rows))
	for i := range rows {
		tupleLits[i] = ctx.NewBoolVar()
	}
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind:         cpmodel.KindExactlyOne,
		BoolArgument: &cpmodel.BoolArgument{Literals: tupleLits},
	})

	for col, v := range vars {
		if col == costCol {
			continue
		}
		supporters := make(map[int64][]cpmodel.VarRef)
		for r, row := range rows {
			supporters[row[col]] = append(supporters[row[col]], tupleLits[r])
		}
		for _, val := range sortedSupporterKeys(supporters) {
			valueLit := ctx.GetOrCreateVarValueEncoding(v, val)
			clause := append([]cpmodel.VarRef{cpmodel.NegatedRef(valueLit)}, supporters[val]...)
			ctx.working.AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindBoolOr, BoolArgument: &cpmodel.BoolArgument{Literals: clause}})
		}
		for r, row := range rows {
			clause := []cpmodel.VarRef{cpmodel.NegatedRef(tupleLits[r]), ctx.GetOrCreateVarValueEncoding(v, row[col])}
			ctx.working.AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindBoolOr, BoolArgument: &cpmodel.BoolArgument{Literals: clause}})
		}
	}

	terms := make([]cpmodel.VarRef, 0, len(rows)+1)
	coeffs := make([]int64, 0, len(rows)+1)
	for r, row := range rows {
		terms = append(terms, tupleLits[r])
		coeffs = append(coeffs, row[costCol])
	}
	terms = append(terms, vars[costCol])
	coeffs = append(coeffs, -1)
	ctx.working.AddConstraint(cpmodel.Constraint{
		Kind: cpmodel.KindLinear,
		Linear: &cpmodel.LinearConstraint{
			Expr:   cpmodel.NewLinearExpr(terms, coeffs, 0),
			Domain: cpmodel.NewSingleDomain(0),
		},
	})
}

func valueLits(ctx *Context, v cpmodel.VarRef, values []int64) []cpmodel.VarRef {
	out := make([]cpmodel.VarRef, len(values))
	for i, val := range values {
		out[i] = ctx.GetOrCreateVarValueEncoding(v, val)
	}
	return out
}

// expandSizeTwoTable implements the size-2 fast path: bipartite support maps
// emitted as implications between the two variables' value literals.
func expandSizeTwoTable(ctx *Context, vars []cpmodel.VarRef, tuples [][]int64, enforcement []cpmodel.VarRef) {
	support1to2 := make(map[int64]map[int64]bool)
	support2to1 := make(map[int64]map[int64]bool)
	for _, row := range tuples {
		a, b := row[0], row[1]
		if support1to2[a] == nil {
			support1to2[a] = make(map[int64]bool)
		}
		support1to2[a][b] = true
		if support2to1[b] == nil {
			support2to1[b] = make(map[int64]bool)
		}
		support2to1[b][a] = true
	}
	d1 := ctx.DomainOf(vars[0]).Values()
	d2 := ctx.DomainOf(vars[1]).Values()
	for _, a := range d1 {
		if len(support1to2[a]) == len(d2) {
			continue // fully supported, no clause needed
		}
		lits := []cpmodel.VarRef{cpmodel.NegatedRef(ctx.GetOrCreateVarValueEncoding(vars[0], a))}
		for _, b := range sortedKeysMap(support1to2[a]) {
			lits = append(lits, ctx.GetOrCreateVarValueEncoding(vars[1], b))
		}
		ctx.working.AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindBoolOr, BoolArgument: &cpmodel.BoolArgument{Literals: lits}})
	}
	for _, b := range d2 {
		if len(support2to1[b]) == len(d1) {
			continue
		}
		lits := []cpmodel.VarRef{cpmodel.NegatedRef(ctx.GetOrCreateVarValueEncoding(vars[1], b))}
		for _, a := range sortedKeysMap(support2to1[b]) {
			lits = append(lits, ctx.GetOrCreateVarValueEncoding(vars[0], a))
		}
		ctx.working.AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindBoolOr, BoolArgument: &cpmodel.BoolArgument{Literals: lits}})
	}
	_ = enforcement
}

func sortedKeysMap(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// compressedRow represents one compressed table row: for each column, either
// an explicit list of admissible values (`[]int64` of length 1 for a fixed
// cell, more for full compression) or nil for a wildcard covering the whole
// column domain.
type compressedRow [][]int64

// compressTableRows merges rows that differ in exactly one column into
// wildcard rows (level >= 1), and additionally merges same-pattern rows into
// explicit value lists (level >= 2, when the table is large, or level 3
// always), per spec.md §4.8 step 4.
func compressTableRows(rows [][]int64, cols []map[int64]bool, level int) []compressedRow {
	out := make([]compressedRow, len(rows))
	for r, row := range rows {
		cr := make(compressedRow, len(row))
		for i, v := range row {
			cr[i] = []int64{v}
		}
		out[r] = cr
	}
	if level == 0 {
		return out
	}

	// Level 2's full (non-wildcard) merging only kicks in above 1000 rows per
	// spec.md §6; below that threshold it behaves like level 1. Level 3 always
	// merges fully.
	effectiveLevel := level
	if level == 2 && len(rows) <= 1000 {
		effectiveLevel = 1
	}

	changed := true
	for changed {
		changed = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if diffCol, ok := singleColumnDiff(out[i], out[j]); ok {
					merged, mergeable := mergeRows(out[i], out[j], diffCol, cols[diffCol], effectiveLevel)
					if !mergeable {
						continue
					}
					out[i] = merged
					out = append(out[:j], out[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return out
}

func singleColumnDiff(a, b compressedRow) (int, bool) {
	diff := -1
	for i := range a {
		if !sameCell(a[i], b[i]) {
			if diff != -1 {
				return 0, false
			}
			diff = i
		}
	}
	if diff == -1 {
		return 0, false
	}
	return diff, true
}

func sameCell(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mergeRows merges two rows differing only in column col, per spec.md §4.8
// step 4's compression levels: level 1 only ever produces a wildcard (and
// leaves the rows unmerged otherwise), level 2+ also merges into an explicit
// multi-value cell when the union does not cover the whole column domain.
func mergeRows(a, b compressedRow, col int, domain map[int64]bool, level int) (compressedRow, bool) {
	union := dedupInt64s(append(append([]int64{}, a[col]...), b[col]...))
	wildcard := a[col] == nil || b[col] == nil || len(union) >= len(domain)

	if !wildcard && level < 2 {
		return nil, false
	}

	merged := make(compressedRow, len(a))
	copy(merged, a)
	if wildcard {
		merged[col] = nil // wildcard
	} else {
		merged[col] = union
	}
	return merged, true
}

func dedupInt64s(vs []int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, v := range vs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
