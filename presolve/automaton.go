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

// transitionsByTail indexes an automaton's transitions by tail state for
// forward propagation and lookup during per-step encoding.
type transitionsByTail map[int64][]cpmodel.AutomatonTransition

func indexByTail(transitions []cpmodel.AutomatonTransition) transitionsByTail {
	out := make(transitionsByTail)
	for _, t := range transitions {
		out[t.Tail] = append(out[t.Tail], t)
	}
	return out
}

// PropagateAutomaton computes, for every time step 0..n, the set of
// reachable states, via a forward pass from the starting state restricted on
// the last step to transitions leading to a final state, followed by a
// backward pass removing states that cannot reach a final state. Returns
// per-step reachable-state sets; an empty set at step 0 or at the final step
// means no automaton path survives (automaton: unsat).
func PropagateAutomaton(vars []cpmodel.VarRef, domains func(cpmodel.VarRef) cpmodel.Domain, startingState int64, finalStates []int64, transitions []cpmodel.AutomatonTransition) []map[int64]bool {
	n := len(vars)
	byTail := indexByTail(transitions)
	finalSet := toSet(finalStates)

	states := make([]map[int64]bool, n+1)
	states[0] = map[int64]bool{startingState: true}
	for t := 0; t < n; t++ {
		next := make(map[int64]bool)
		dom := domains(vars[t])
		for s := range states[t] {
			for _, tr := range byTail[s] {
				if !dom.Contains(tr.Label) {
					continue
				}
				if t == n-1 && !finalSet[tr.Head] {
					continue
				}
				next[tr.Head] = true
			}
		}
		states[t+1] = next
	}

	// Backward pass: a state at step t survives only if some transition out
	// of it leads to a state that survived the forward pass (and any later
	// backward pruning) at step t+1.
	for t := n - 1; t >= 0; t-- {
		keep := make(map[int64]bool)
		for s := range states[t] {
			for _, tr := range byTail[s] {
				if states[t+1][tr.Head] {
					keep[s] = true
					break
				}
			}
		}
		states[t] = keep
	}
	return states
}

func toSet(vals []int64) map[int64]bool {
	out := make(map[int64]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}

// ExpandAutomaton rewrites an automaton constraint per spec.md §4.7: forward/
// backward reachability propagation followed by a per-step light or heavy
// encoding.
func ExpandAutomaton(ctx *Context, idx cpmodel.ConstrIndex, a *cpmodel.AutomatonConstraint, enforcement []cpmodel.VarRef) {
	n := len(a.Vars)
	domains := func(v cpmodel.VarRef) cpmodel.Domain { return ctx.DomainOf(v) }
	states := PropagateAutomaton(a.Vars, domains, a.StartingState, a.FinalStates, a.Transitions)

	if n == 0 {
		if toSet(a.FinalStates)[a.StartingState] {
			ctx.WorkingModel().Constraints[idx].Clear()
			ctx.UpdateRuleStats(RuleAutomatonExpanded)
			return
		}
		ctx.NotifyThatModelIsUnsat("automaton: empty sequence does not end in a final state")
		ctx.UpdateRuleStats(RuleAutomatonEmptyUnsat)
		return
	}
	if len(states[0]) == 0 || len(states[n]) == 0 {
		ctx.NotifyThatModelIsUnsat("automaton: no reachable final state")
		ctx.UpdateRuleStats(RuleAutomatonEmptyUnsat)
		return
	}

	byTail := indexByTail(a.Transitions)
	var inEncoding map[int64]cpmodel.VarRef // state -> literal "currently in this state"
	// Step 0: fix the lone starting state if it is the only reachable one.
	inEncoding = map[int64]cpmodel.VarRef{a.StartingState: ctx.GetTrueLiteral()}

	for t := 0; t < n; t++ {
		type survivor struct {
			tail, label, head int64
		}
		var survivors []survivor
		for s := range states[t] {
			for _, tr := range byTail[s] {
				if !states[t+1][tr.Head] {
					continue
				}
				if !ctx.DomainOf(a.Vars[t]).Contains(tr.Label) {
					continue
				}
				survivors = append(survivors, survivor{s, tr.Label, tr.Head})
			}
		}
		sort.Slice(survivors, func(i, j int) bool {
			if survivors[i].tail != survivors[j].tail {
				return survivors[i].tail < survivors[j].tail
			}
			if survivors[i].label != survivors[j].label {
				return survivors[i].label < survivors[j].label
			}
			return survivors[i].head < survivors[j].head
		})

		if len(survivors) == 0 {
			ctx.NotifyThatModelIsUnsat("automaton: no surviving transition at a time step")
			ctx.UpdateRuleStats(RuleAutomatonEmptyUnsat)
			return
		}

		if len(survivors) == 1 {
			sv := survivors[0]
			ctx.IntersectDomainWith(a.Vars[t], cpmodel.NewSingleDomain(sv.label), nil)
			for _, s := range sortedEncKeys(inEncoding) {
				if s != sv.tail {
					ctx.SetLiteralToFalse(inEncoding[s])
				}
			}
			inEncoding = map[int64]cpmodel.VarRef{sv.head: ctx.GetTrueLiteral()}
			continue
		}

		labelValues := make(map[int64]bool)
		for _, sv := range survivors {
			labelValues[sv.label] = true
		}
		labelEnc := make(map[int64]cpmodel.VarRef)
		for _, v := range sortedKeys(labelValues) {
			labelEnc[v] = ctx.GetOrCreateVarValueEncoding(a.Vars[t], v)
		}

		heads := make(map[int64]bool)
		for _, sv := range survivors {
			heads[sv.head] = true
		}
		outEncoding := make(map[int64]cpmodel.VarRef)
		if t == n-1 {
			outEncoding[0] = ctx.GetTrueLiteral()
		} else if len(heads) <= 2 {
			headList := sortedKeys(heads)
			b := ctx.NewBoolVar()
			if len(headList) == 1 {
				outEncoding[headList[0]] = ctx.GetTrueLiteral()
			} else {
				outEncoding[headList[0]] = b
				outEncoding[headList[1]] = cpmodel.NegatedRef(b)
			}
		} else {
			for _, h := range sortedKeys(heads) {
				outEncoding[h] = ctx.NewBoolVar()
			}
		}

		numTuples := len(survivors)
		encodingSize := len(inEncoding) + len(labelEnc) + len(outEncoding)
		if numTuples > encodingSize {
			// Light encoding: per in-state and per-transition clauses.
			bySource := make(map[int64][]survivor)
			for _, sv := range survivors {
				bySource[sv.tail] = append(bySource[sv.tail], sv)
			}
			for _, s := range sortedEncKeys(inEncoding) {
				lit := inEncoding[s]
				group := bySource[s]
				if len(group) == 0 {
					continue
				}
				labelClause := []cpmodel.VarRef{cpmodel.NegatedRef(lit)}
				outClause := []cpmodel.VarRef{cpmodel.NegatedRef(lit)}
				seenLabel := map[int64]bool{}
				seenOut := map[int64]bool{}
				for _, sv := range group {
					if !seenLabel[sv.label] {
						labelClause = append(labelClause, labelEnc[sv.label])
						seenLabel[sv.label] = true
					}
					if !seenOut[sv.head] {
						outClause = append(outClause, outEncoding[sv.head])
						seenOut[sv.head] = true
					}
				}
				ctx.working.AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindBoolOr, BoolArgument: &cpmodel.BoolArgument{Literals: labelClause}})
				ctx.working.AddConstraint(cpmodel.Constraint{Kind: cpmodel.KindBoolOr, BoolArgument: &cpmodel.BoolArgument{Literals: outClause}})
			}
			for _, sv := range survivors {
				inLit, ok := inEncoding[sv.tail]
				if !ok {
					continue
				}
				ctx.working.AddConstraint(cpmodel.Constraint{
					Kind: cpmodel.KindBoolOr,
					BoolArgument: &cpmodel.BoolArgument{Literals: []cpmodel.VarRef{
						cpmodel.NegatedRef(inLit), cpmodel.NegatedRef(labelEnc[sv.label]), outEncoding[sv.head],
					}},
				})
			}
		} else {
			// Heavy encoding: one tuple literal per transition, linked against
			// all three encodings (in-state, label, out-state) so a literal
			// flowing one way necessarily implies the matching literal the
			// other way; an unlinked out-state literal would otherwise let the
			// next step pick up a head state that this step never selected.
			tupleLits := make([]cpmodel.VarRef, len(survivors))
			tupleValues := make([]int64, len(survivors))
			tupleTails := make([]int64, len(survivors))
			tupleHeads := make([]int64, len(survivors))
			for i, sv := range survivors {
				tupleLits[i] = ctx.NewBoolVar()
				tupleValues[i] = sv.label
				tupleTails[i] = sv.tail
				tupleHeads[i] = sv.head
			}
			ctx.working.AddConstraint(cpmodel.Constraint{
				Kind:         cpmodel.KindExactlyOne,
				BoolArgument: &cpmodel.BoolArgument{Literals: tupleLits},
			})
			Link(ctx, tupleLits, tupleTails, inEncoding)
			Link(ctx, tupleLits, tupleValues, labelEnc)
			Link(ctx, tupleLits, tupleHeads, outEncoding)
		}

		inEncoding = outEncoding
	}

	ctx.WorkingModel().Constraints[idx].Clear()
	ctx.UpdateRuleStats(RuleAutomatonExpanded)
}
