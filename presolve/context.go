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
	"io"
	"math"
	"sort"

	log "github.com/golang/glog"

	"github.com/constraintkit/cpexpand/cpmodel"
)

// Rule-stat names, lifted verbatim from the rewrite call sites they
// instrument so the counters in a dump can be traced back to the expander
// that incremented them.
const (
	RuleReservoirExpanded          = "reservoir: expanded"
	RuleReservoirUnsatWindow       = "reservoir: infeasible level window"
	RuleIntModExpanded             = "int_mod: expanded"
	RuleIntProdWithBoolExpanded    = "int_prod: expanded with Boolean"
	RuleInverseExpanded            = "inverse: expanded"
	RuleElementExpanded            = "element: expanded"
	RuleElementIndexEqTarget       = "element: index == target rewrite"
	RuleAutomatonExpanded          = "automaton: expanded"
	RuleAutomatonEmptyUnsat        = "automaton: no reachable final state"
	RuleTableNegativeExpanded      = "table: expanded negative constraint"
	RuleTablePositiveExpanded      = "table: expanded positive constraint"
	RuleTableUnsat                 = "table: no tuple survives domain pruning"
	RuleTableCostColumnFolded      = "table: cost column folded into linear equality"
	RuleAllDiffExpanded            = "all_diff: expanded"
	RuleAllDiffUnsatDoubleFixed    = "all_diff: two expressions fixed to the same value"
	RuleComplexLinearSlack         = "linear: expanded complex domain with integer slack"
	RuleComplexLinearDisjunction   = "linear: expanded complex domain with Boolean disjunction"
	RuleSmallLinearDisequality     = "linear: expanded small linear disequality"
)

// precedenceKey identifies one entry of the reified-precedence cache: two
// linear expressions under two activity literals.
type precedenceKey struct {
	ei, ej string
	ai, aj cpmodel.VarRef
}

// Context owns the working model, the mapping (postsolve) model, the
// objective, and the value-encoding and reified-precedence caches. It is the
// single mutator of the working model during expansion, mirroring the
// exclusive-borrow ownership spec.md §5 and §9 describe.
type Context struct {
	working *cpmodel.Model
	mapping *cpmodel.Model
	params  Params

	// valueEncoding[v][x] is the canonical literal L(v=x).
	valueEncoding map[cpmodel.VarRef]map[int64]cpmodel.VarRef
	precedence    map[precedenceKey]cpmodel.VarRef

	trueLiteral cpmodel.VarRef
	haveTrue    bool

	unsat   bool
	unsatBy string
	expanded bool

	varToConstraints map[cpmodel.VarRef][]cpmodel.ConstrIndex

	objectiveCoeffs  map[cpmodel.VarRef]int64
	objectiveOffset  int64
	removedVariables map[cpmodel.VarRef]bool

	ruleStats map[string]int64
}

// NewContext creates a Context over a working model and its associated
// mapping model, with the given configuration.
func NewContext(working, mapping *cpmodel.Model, params Params) *Context {
	return &Context{
		working:          working,
		mapping:          mapping,
		params:           params,
		valueEncoding:    make(map[cpmodel.VarRef]map[int64]cpmodel.VarRef),
		precedence:       make(map[precedenceKey]cpmodel.VarRef),
		varToConstraints: make(map[cpmodel.VarRef][]cpmodel.ConstrIndex),
		objectiveCoeffs:  make(map[cpmodel.VarRef]int64),
		removedVariables: make(map[cpmodel.VarRef]bool),
		ruleStats:        make(map[string]int64),
	}
}

// Params returns the configuration this context was built with.
func (c *Context) Params() Params {
	return c.params
}

// WorkingModel returns the append-only model being rewritten.
func (c *Context) WorkingModel() *cpmodel.Model {
	return c.working
}

// MappingModel returns the postsolve model used to record how to
// reconstruct variables eliminated during expansion.
func (c *Context) MappingModel() *cpmodel.Model {
	return c.mapping
}

// ---- domain queries -------------------------------------------------------

// DomainOf returns the current domain of variable `v` (VarRef, possibly
// negative for the negation of a Boolean).
func (c *Context) DomainOf(v cpmodel.VarRef) cpmodel.Domain {
	return c.working.VarDomain(v)
}

// DomainSupersetOf returns a domain guaranteed to contain every value the
// linear expression `e` can take, derived from the current domains of its
// terms via repeated scaling and Minkowski addition.
func (c *Context) DomainSupersetOf(e cpmodel.LinearExpr) cpmodel.Domain {
	d := cpmodel.NewSingleDomain(e.Offset)
	for i, v := range e.Vars {
		term := c.DomainOf(v).MultiplicationBy(e.Coeffs[i])
		d = d.AdditionWith(term)
	}
	return d
}

// MinOf returns the minimum value `e` can take, given current domains.
func (c *Context) MinOf(e cpmodel.LinearExpr) int64 {
	lo, _ := c.DomainSupersetOf(e).Min()
	return lo
}

// MaxOf returns the maximum value `e` can take, given current domains.
func (c *Context) MaxOf(e cpmodel.LinearExpr) int64 {
	hi, _ := c.DomainSupersetOf(e).Max()
	return hi
}

// IsFixed reports whether `e`'s superset domain is a single value.
func (c *Context) IsFixed(e cpmodel.LinearExpr) bool {
	return c.DomainSupersetOf(e).IsFixed()
}

// FixedValue returns the value `e` is fixed to. Callers should check IsFixed
// first.
func (c *Context) FixedValue(e cpmodel.LinearExpr) int64 {
	return c.DomainSupersetOf(e).FixedValue()
}

// DomainContains reports whether `e` can take the value `value` given its
// current superset domain.
func (c *Context) DomainContains(e cpmodel.LinearExpr, value int64) bool {
	return c.DomainSupersetOf(e).Contains(value)
}

// ExpressionIsALiteral reports whether `e` is exactly one signed variable
// reference with no scaling and no offset (i.e. a Boolean literal), and if so
// returns that literal.
func (c *Context) ExpressionIsALiteral(e cpmodel.LinearExpr) (cpmodel.VarRef, bool) {
	if e.Offset != 0 || len(e.Vars) != 1 || e.Coeffs[0] != 1 {
		return 0, false
	}
	return e.Vars[0], true
}

// IntersectDomainWith intersects the domain of variable `v` with `d`. It
// returns false (and calls NotifyThatModelIsUnsat) if the result is empty.
// `changed`, if non-nil, receives whether the domain actually shrank.
func (c *Context) IntersectDomainWith(v cpmodel.VarRef, d cpmodel.Domain, changed *bool) bool {
	pos := cpmodel.PositiveRef(v)
	before := c.working.Variables[pos].Domain
	target := d
	if !cpmodel.RefIsPositive(v) {
		target = d.Negation().AdditionWith(cpmodel.NewSingleDomain(1))
	}
	after := before.IntersectionWith(target)
	if changed != nil {
		*changed = after.Size() != before.Size()
	}
	c.working.Variables[pos].Domain = after
	if after.IsEmpty() {
		c.NotifyThatModelIsUnsat(fmt.Sprintf("variable %d has an empty domain after intersection", pos))
		return false
	}
	return true
}

// ---- variable/literal factory ---------------------------------------------

// NewIntVar appends a new integer variable with domain `d` and returns its
// VarRef.
func (c *Context) NewIntVar(d cpmodel.Domain) cpmodel.VarRef {
	return c.working.NewVar(d, "")
}

// NewBoolVar appends a new Boolean variable and returns its VarRef.
func (c *Context) NewBoolVar() cpmodel.VarRef {
	return c.working.NewBoolVar("")
}

// GetTrueLiteral returns a literal that is always true, creating the
// underlying fixed variable on first use.
func (c *Context) GetTrueLiteral() cpmodel.VarRef {
	if !c.haveTrue {
		v := c.working.NewVar(cpmodel.NewSingleDomain(1), "true_literal")
		c.trueLiteral = v
		c.haveTrue = true
	}
	return c.trueLiteral
}

// GetFalseLiteral returns a literal that is always false.
func (c *Context) GetFalseLiteral() cpmodel.VarRef {
	return cpmodel.NegatedRef(c.GetTrueLiteral())
}

// ---- value-encoding cache ---------------------------------------------

// HasVarValueEncoding reports whether `L(v=value)` already exists, and if so
// returns it.
func (c *Context) HasVarValueEncoding(v cpmodel.VarRef, value int64) (cpmodel.VarRef, bool) {
	byValue, ok := c.valueEncoding[v]
	if !ok {
		return 0, false
	}
	lit, ok := byValue[value]
	return lit, ok
}

// GetOrCreateVarValueEncoding returns the canonical literal `L(v=value)`,
// creating it (and the implication `L(v=value) -> v's domain is {value}`, via
// AddImplyInDomain) if it does not exist yet. If `value` is outside `v`'s
// domain, the returned literal is the false literal.
func (c *Context) GetOrCreateVarValueEncoding(v cpmodel.VarRef, value int64) cpmodel.VarRef {
	if lit, ok := c.HasVarValueEncoding(v, value); ok {
		return lit
	}
	if !c.DomainOf(v).Contains(value) {
		return c.GetFalseLiteral()
	}
	if d := c.DomainOf(v); d.IsFixed() && d.FixedValue() == value {
		return c.GetTrueLiteral()
	}
	lit := c.NewBoolVar()
	c.InsertVarValueEncoding(lit, v, value)
	return lit
}

// InsertVarValueEncoding records that `lit` means `v=value`, binding
// `lit <-> (v=value)` via implications into the working model if `lit` was
// not already the canonical literal for that pair.
func (c *Context) InsertVarValueEncoding(lit, v cpmodel.VarRef, value int64) {
	if _, ok := c.valueEncoding[v]; !ok {
		c.valueEncoding[v] = make(map[int64]cpmodel.VarRef)
	}
	if existing, ok := c.valueEncoding[v][value]; ok {
		if existing != lit {
			c.StoreBooleanEqualityRelation(existing, lit)
		}
		return
	}
	c.valueEncoding[v][value] = lit
	c.AddImplyInDomain(lit, v, cpmodel.NewSingleDomain(value))
	excluded := c.DomainOf(v).IntersectionWith(cpmodel.NewSingleDomain(value).Complement())
	c.AddImplyInDomain(cpmodel.NegatedRef(lit), v, excluded)
}

// IsFullyEncoded reports whether `e` (a single literal-sized linear
// expression over one variable) has an encoding literal for every value in
// its domain.
func (c *Context) IsFullyEncoded(e cpmodel.LinearExpr) bool {
	if len(e.Vars) != 1 {
		return false
	}
	v := e.Vars[0]
	d := c.DomainOf(v)
	byValue := c.valueEncoding[v]
	for _, val := range d.Values() {
		if _, ok := byValue[val]; !ok {
			return false
		}
	}
	return true
}

// GetOrCreateAffineValueEncoding returns a literal for `e == value`, where
// `e` is an affine expression over a single variable (`coeff*v + offset`);
// the request is translated into an equivalent value-encoding request on `v`.
func (c *Context) GetOrCreateAffineValueEncoding(e cpmodel.LinearExpr, value int64) cpmodel.VarRef {
	if len(e.Vars) == 0 {
		if e.Offset == value {
			return c.GetTrueLiteral()
		}
		return c.GetFalseLiteral()
	}
	if len(e.Vars) != 1 {
		log.Fatalf("GetOrCreateAffineValueEncoding: expression %+v is not affine in a single variable", e)
	}
	coeff := e.Coeffs[0]
	rem := value - e.Offset
	if coeff == 0 || rem%coeff != 0 {
		return c.GetFalseLiteral()
	}
	return c.GetOrCreateVarValueEncoding(e.Vars[0], rem/coeff)
}

// ---- reified precedence cache ----------------------------------------

// GetOrCreateReifiedPrecedenceLiteral returns a literal P such that
// `P <-> (ai && aj && ei <= ej)`, creating the underlying constraints on
// first request for this (ei, ej, ai, aj) tuple.
func (c *Context) GetOrCreateReifiedPrecedenceLiteral(ei, ej cpmodel.LinearExpr, ai, aj cpmodel.VarRef) cpmodel.VarRef {
	key := precedenceKey{ei: exprKey(ei), ej: exprKey(ej), ai: ai, aj: aj}
	if lit, ok := c.precedence[key]; ok {
		return lit
	}
	p := c.NewBoolVar()
	c.precedence[key] = p

	c.AddImplication(p, ai)
	c.AddImplication(p, aj)

	// p && ai && aj -> ei <= ej, i.e. ei - ej <= 0 under enforcement {p, ai, aj}.
	diff := combineLinear(ei, negateLinear(ej))
	c.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindLinear,
		Enforcement: []cpmodel.VarRef{p, ai, aj},
		Linear: &cpmodel.LinearConstraint{
			Expr:   diff,
			Domain: cpmodel.NewDomain(math.MinInt64, 0),
		},
	})
	// !p && ai && aj -> ei > ej, i.e. ei - ej >= 1 under enforcement {!p, ai, aj}.
	// Together with p -> ai, p -> aj and the constraint above this makes p a
	// full reification of (ai && aj && ei <= ej), as required by every caller
	// that sums over P.
	c.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindLinear,
		Enforcement: []cpmodel.VarRef{cpmodel.NegatedRef(p), ai, aj},
		Linear: &cpmodel.LinearConstraint{
			Expr:   diff,
			Domain: cpmodel.NewDomain(1, math.MaxInt64),
		},
	})
	return p
}

func exprKey(e cpmodel.LinearExpr) string {
	s := fmt.Sprintf("%d", e.Offset)
	for i := range e.Vars {
		s += fmt.Sprintf(",%d*%d", e.Coeffs[i], e.Vars[i])
	}
	return s
}

// combineLinear returns the sum of two linear expressions.
func combineLinear(a, b cpmodel.LinearExpr) cpmodel.LinearExpr {
	vars := append(append([]cpmodel.VarRef{}, a.Vars...), b.Vars...)
	coeffs := append(append([]int64{}, a.Coeffs...), b.Coeffs...)
	return cpmodel.NewLinearExpr(vars, coeffs, cpmodel.CapAdd(a.Offset, b.Offset))
}

// negateLinear returns `-e`.
func negateLinear(e cpmodel.LinearExpr) cpmodel.LinearExpr {
	coeffs := make([]int64, len(e.Coeffs))
	for i, c := range e.Coeffs {
		coeffs[i] = -c
	}
	return cpmodel.NewLinearExpr(append([]cpmodel.VarRef{}, e.Vars...), coeffs, -e.Offset)
}

// ClearPrecedenceCache discards every cached reified-precedence literal.
// Expand calls this once, before its first pass, so no literal cached by an
// earlier use of the context is reused.
func (c *Context) ClearPrecedenceCache() {
	c.precedence = make(map[precedenceKey]cpmodel.VarRef)
}

// ---- simple clause/implication emission -------------------------------

// AddImplication emits `a -> b` as a two-literal clause `!a || b`.
func (c *Context) AddImplication(a, b cpmodel.VarRef) {
	c.working.AddConstraint(cpmodel.Constraint{
		Kind:         cpmodel.KindBoolOr,
		BoolArgument: &cpmodel.BoolArgument{Literals: []cpmodel.VarRef{cpmodel.NegatedRef(a), b}},
	})
}

// AddImplyInDomain emits `lit -> (v in d)`, as an enforced linear constraint
// restricting v's domain, unless d already is a superset of v's domain (in
// which case the implication is vacuous and nothing is emitted).
func (c *Context) AddImplyInDomain(lit, v cpmodel.VarRef, d cpmodel.Domain) {
	current := c.DomainOf(v)
	if current.IntersectionWith(d).Size() == current.Size() {
		return
	}
	c.working.AddConstraint(cpmodel.Constraint{
		Kind:        cpmodel.KindLinear,
		Enforcement: []cpmodel.VarRef{lit},
		Linear: &cpmodel.LinearConstraint{
			Expr:   cpmodel.SingleVar(v),
			Domain: d,
		},
	})
}

// StoreBooleanEqualityRelation emits `a <-> b` as two implications.
func (c *Context) StoreBooleanEqualityRelation(a, b cpmodel.VarRef) {
	if a == b {
		return
	}
	c.AddImplication(a, b)
	c.AddImplication(b, a)
}

// SetLiteralToFalse fixes `lit` to false. Returns false (after calling
// NotifyThatModelIsUnsat) if `lit` was already proven true.
func (c *Context) SetLiteralToFalse(lit cpmodel.VarRef) bool {
	return c.IntersectDomainWith(lit, cpmodel.NewSingleDomain(0), nil)
}

// ---- objective -------------------------------------------------------

// AddLiteralToObjective adds `cost * lit` to the objective.
func (c *Context) AddLiteralToObjective(lit cpmodel.VarRef, cost int64) {
	pos := cpmodel.PositiveRef(lit)
	if cpmodel.RefIsPositive(lit) {
		c.objectiveCoeffs[pos] += cost
	} else {
		// lit = 1 - pos, so cost*lit = cost - cost*pos.
		c.objectiveOffset = cpmodel.CapAdd(c.objectiveOffset, cost)
		c.objectiveCoeffs[pos] -= cost
	}
}

// AddToObjectiveOffset adds `v` to the constant term of the objective.
func (c *Context) AddToObjectiveOffset(v int64) {
	c.objectiveOffset = cpmodel.CapAdd(c.objectiveOffset, v)
}

// RemoveVariableFromObjective drops `v`'s coefficient from the objective.
func (c *Context) RemoveVariableFromObjective(v cpmodel.VarRef) {
	delete(c.objectiveCoeffs, cpmodel.PositiveRef(v))
}

// ObjectiveMap returns the current objective coefficients, keyed by the
// positive variable reference.
func (c *Context) ObjectiveMap() map[cpmodel.VarRef]int64 {
	return c.objectiveCoeffs
}

// ObjectiveOffset returns the objective's constant term.
func (c *Context) ObjectiveOffset() int64 {
	return c.objectiveOffset
}

// VariableWithCostIsUniqueAndRemovable reports whether `v` appears in the
// objective and nowhere else in the working model, so a table/element
// rewrite may fold its cost contribution away and eliminate it.
func (c *Context) VariableWithCostIsUniqueAndRemovable(v cpmodel.VarRef) bool {
	if _, ok := c.objectiveCoeffs[cpmodel.PositiveRef(v)]; !ok {
		return false
	}
	return c.VariableIsUniqueAndRemovable(v)
}

// VariableIsUniqueAndRemovable reports whether `v` appears in at most one
// constraint of the working model.
func (c *Context) VariableIsUniqueAndRemovable(v cpmodel.VarRef) bool {
	return len(c.varToConstraints[cpmodel.PositiveRef(v)]) <= 1
}

// MarkVariableAsRemoved records that `v` has been eliminated from the
// working model; its value, if needed for postsolve, must be recorded into
// the mapping model by the caller.
func (c *Context) MarkVariableAsRemoved(v cpmodel.VarRef) {
	c.removedVariables[cpmodel.PositiveRef(v)] = true
}

// IsRemoved reports whether MarkVariableAsRemoved has been called for `v`.
func (c *Context) IsRemoved(v cpmodel.VarRef) bool {
	return c.removedVariables[cpmodel.PositiveRef(v)]
}

// ---- incidence, unsat and expanded flags -------------------------------

// VarToConstraints returns the indices of constraints referencing `v`,
// reverse-incidence used by the all-different usage scanner.
func (c *Context) VarToConstraints(v cpmodel.VarRef) []cpmodel.ConstrIndex {
	return c.varToConstraints[cpmodel.PositiveRef(v)]
}

// InitializeNewDomains ensures every variable added to the working model
// since the last call has an incidence-list entry. Newly appended variables
// start with no recorded constraints.
func (c *Context) InitializeNewDomains() {
	for i := range c.working.Variables {
		v := cpmodel.VarRef(i)
		if _, ok := c.varToConstraints[v]; !ok {
			c.varToConstraints[v] = nil
		}
	}
}

// UpdateConstraintVariableUsage recomputes the incidence entries that
// reference constraint `idx`, dropping stale entries first. Call this after
// mutating or clearing a constraint in place.
func (c *Context) UpdateConstraintVariableUsage(idx cpmodel.ConstrIndex) {
	for v, idxs := range c.varToConstraints {
		filtered := idxs[:0:0]
		for _, existing := range idxs {
			if existing != idx {
				filtered = append(filtered, existing)
			}
		}
		c.varToConstraints[v] = filtered
	}
	for _, v := range constraintVars(c.working.Constraints[idx]) {
		pos := cpmodel.PositiveRef(v)
		c.varToConstraints[pos] = append(c.varToConstraints[pos], idx)
	}
}

// UpdateNewConstraintsVariableUsage scans every constraint appended to the
// working model since incidence was last reconciled (from `from` to the
// current end) and records their variable usage.
func (c *Context) UpdateNewConstraintsVariableUsage(from cpmodel.ConstrIndex) {
	for idx := int(from); idx < len(c.working.Constraints); idx++ {
		for _, v := range constraintVars(c.working.Constraints[idx]) {
			pos := cpmodel.PositiveRef(v)
			c.varToConstraints[pos] = append(c.varToConstraints[pos], cpmodel.ConstrIndex(idx))
		}
	}
}

// constraintVars lists every VarRef a constraint mentions, across
// enforcement literals and payload.
func constraintVars(ct cpmodel.Constraint) []cpmodel.VarRef {
	var out []cpmodel.VarRef
	out = append(out, ct.Enforcement...)
	switch ct.Kind {
	case cpmodel.KindBoolOr, cpmodel.KindBoolAnd, cpmodel.KindAtMostOne, cpmodel.KindExactlyOne, cpmodel.KindBoolXor:
		if ct.BoolArgument != nil {
			out = append(out, ct.BoolArgument.Literals...)
		}
	case cpmodel.KindLinear:
		if ct.Linear != nil {
			out = append(out, ct.Linear.Expr.Vars...)
		}
	case cpmodel.KindIntProd, cpmodel.KindIntDiv, cpmodel.KindIntMod, cpmodel.KindLinMax:
		if ct.LinearArg != nil {
			out = append(out, ct.LinearArg.Target.Vars...)
			for _, e := range ct.LinearArg.Exprs {
				out = append(out, e.Vars...)
			}
		}
	case cpmodel.KindAllDiff:
		if ct.AllDiff != nil {
			for _, e := range ct.AllDiff.Exprs {
				out = append(out, e.Vars...)
			}
		}
	case cpmodel.KindElement:
		if ct.Element != nil {
			out = append(out, ct.Element.Index, ct.Element.Target)
			out = append(out, ct.Element.Vars...)
		}
	case cpmodel.KindInverse:
		if ct.Inverse != nil {
			out = append(out, ct.Inverse.FDirect...)
			out = append(out, ct.Inverse.FInverse...)
		}
	case cpmodel.KindAutomaton:
		if ct.Automaton != nil {
			out = append(out, ct.Automaton.Vars...)
		}
	case cpmodel.KindTable:
		if ct.Table != nil {
			out = append(out, ct.Table.Vars...)
		}
	case cpmodel.KindReservoir:
		if ct.Reservoir != nil {
			for _, e := range ct.Reservoir.TimeExprs {
				out = append(out, e.Vars...)
			}
			for _, e := range ct.Reservoir.LevelChanges {
				out = append(out, e.Vars...)
			}
			out = append(out, ct.Reservoir.ActiveLiterals...)
		}
	case cpmodel.KindInterval:
		if ct.Interval != nil {
			out = append(out, ct.Interval.Start.Vars...)
			out = append(out, ct.Interval.Size.Vars...)
			out = append(out, ct.Interval.End.Vars...)
		}
	case cpmodel.KindNoOverlap:
		// References constraints, not variables directly.
	case cpmodel.KindCircuit:
		if ct.Circuit != nil {
			out = append(out, ct.Circuit.Literals...)
		}
	}
	return out
}

// NotifyThatModelIsUnsat records that the model has been proven infeasible.
// `msg`, if provided, is logged for diagnostics; only the first message is
// kept.
func (c *Context) NotifyThatModelIsUnsat(msg ...string) {
	if c.unsat {
		return
	}
	c.unsat = true
	if len(msg) > 0 {
		c.unsatBy = msg[0]
	}
	log.V(1).Infof("model proven unsat: %s", c.unsatBy)
}

// ModelIsUnsat reports whether NotifyThatModelIsUnsat has been called.
func (c *Context) ModelIsUnsat() bool {
	return c.unsat
}

// UnsatReason returns the diagnostic message passed to the first
// NotifyThatModelIsUnsat call, or "" if none was given.
func (c *Context) UnsatReason() string {
	return c.unsatBy
}

// ModelIsExpanded reports whether NotifyThatModelIsExpanded has been called.
func (c *Context) ModelIsExpanded() bool {
	return c.expanded
}

// NotifyThatModelIsExpanded sets the one-shot flag that prevents Expand from
// re-entering an already-expanded model.
func (c *Context) NotifyThatModelIsExpanded() {
	c.expanded = true
}

// ---- rule-stat instrumentation (spec.md's update_rule_stats, supplemented
// with a readable dump; see SPEC_FULL.md "Supplemented feature: rule-
// statistics reporting") -------------------------------------------------

// UpdateRuleStats increments the named counter by one and traces the firing
// at verbose level 2, mirroring the original's VLOG(2) rule-application
// trace.
func (c *Context) UpdateRuleStats(name string) {
	c.ruleStats[name]++
	log.V(2).Infof("rule fired: %s (now %d)", name, c.ruleStats[name])
}

// RuleStats returns a snapshot of every rule-fire counter.
func (c *Context) RuleStats() map[string]int64 {
	out := make(map[string]int64, len(c.ruleStats))
	for k, v := range c.ruleStats {
		out[k] = v
	}
	return out
}

// DumpRuleStats writes a sorted, human-readable summary of every rule-fire
// counter to w and glog-logs the same summary at V(1), mirroring how the
// original presolve driver reports its rule-application summary at the end
// of a round.
func (c *Context) DumpRuleStats(w io.Writer) {
	names := make([]string, 0, len(c.ruleStats))
	for name := range c.ruleStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %d\n", name, c.ruleStats[name])
		log.V(1).Infof("%s: %d", name, c.ruleStats[name])
	}
}
