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

// Variable is an integer variable: its admissible Domain plus an optional
// Name used in diagnostics and rule-stat traces.
type Variable struct {
	Domain Domain
	Name   string
}

// LinearExpr is a sum of `coeff * var` terms plus a constant Offset, e.g.
// `2*x - y + 5`. Vars and Coeffs are parallel slices of equal length.
type LinearExpr struct {
	Vars   []VarRef
	Coeffs []int64
	Offset int64
}

// NewLinearExpr builds a LinearExpr from parallel Vars/Coeffs slices and an
// offset.
func NewLinearExpr(vars []VarRef, coeffs []int64, offset int64) LinearExpr {
	return LinearExpr{Vars: vars, Coeffs: coeffs, Offset: offset}
}

// SingleTerm builds the LinearExpr `coeff*v`.
func SingleTerm(v VarRef, coeff int64) LinearExpr {
	return LinearExpr{Vars: []VarRef{v}, Coeffs: []int64{coeff}}
}

// SingleVar builds the LinearExpr `v`.
func SingleVar(v VarRef) LinearExpr {
	return SingleTerm(v, 1)
}

// Constant builds the LinearExpr for a fixed integer.
func Constant(c int64) LinearExpr {
	return LinearExpr{Offset: c}
}

// ConstraintKind discriminates the payload carried by a Constraint. Only the
// field matching Kind is populated.
type ConstraintKind int

const (
	// KindDummy marks a constraint that has been cleared (replaced by nothing)
	// during expansion. Its position in Model.Constraints is kept so that other
	// constraints' ConstrIndex references stay valid.
	KindDummy ConstraintKind = iota
	KindBoolOr
	KindBoolAnd
	KindAtMostOne
	KindExactlyOne
	KindBoolXor
	KindLinear
	KindIntProd
	KindIntDiv
	KindIntMod
	KindLinMax
	KindAllDiff
	KindElement
	KindInverse
	KindAutomaton
	KindTable
	KindReservoir
	KindCircuit
	KindRoutes
	KindInterval
	KindNoOverlap
	KindNoOverlap2D
	KindCumulative
)

func (k ConstraintKind) String() string {
	switch k {
	case KindDummy:
		return "dummy"
	case KindBoolOr:
		return "bool_or"
	case KindBoolAnd:
		return "bool_and"
	case KindAtMostOne:
		return "at_most_one"
	case KindExactlyOne:
		return "exactly_one"
	case KindBoolXor:
		return "bool_xor"
	case KindLinear:
		return "linear"
	case KindIntProd:
		return "int_prod"
	case KindIntDiv:
		return "int_div"
	case KindIntMod:
		return "int_mod"
	case KindLinMax:
		return "lin_max"
	case KindAllDiff:
		return "all_diff"
	case KindElement:
		return "element"
	case KindInverse:
		return "inverse"
	case KindAutomaton:
		return "automaton"
	case KindTable:
		return "table"
	case KindReservoir:
		return "reservoir"
	case KindCircuit:
		return "circuit"
	case KindRoutes:
		return "routes"
	case KindInterval:
		return "interval"
	case KindNoOverlap:
		return "no_overlap"
	case KindNoOverlap2D:
		return "no_overlap_2d"
	case KindCumulative:
		return "cumulative"
	default:
		return "unknown"
	}
}

// BoolArgument is the payload for BoolOr/BoolAnd/AtMostOne/ExactlyOne/BoolXor:
// a flat list of literals.
type BoolArgument struct {
	Literals []VarRef
}

// LinearConstraint is the payload for KindLinear: Expr (including its
// constant Offset) must evaluate to a value admitted by Domain.
type LinearConstraint struct {
	Expr   LinearExpr
	Domain Domain
}

// LinearArgument is the payload for IntProd/IntDiv/IntMod/LinMax: a Target
// expression equated to a function of Exprs (product, quotient, modulo, or
// max, depending on Kind).
type LinearArgument struct {
	Target LinearExpr
	Exprs  []LinearExpr
}

// AllDiffConstraint is the payload for KindAllDiff.
type AllDiffConstraint struct {
	Exprs []LinearExpr
}

// ElementConstraint is the payload for KindElement: `Target == Vars[Index]`.
type ElementConstraint struct {
	Index  VarRef
	Target VarRef
	Vars   []VarRef
}

// InverseConstraint is the payload for KindInverse: `FDirect[i] == j` iff
// `FInverse[j] == i`.
type InverseConstraint struct {
	FDirect  []VarRef
	FInverse []VarRef
}

// AutomatonTransition is one edge of an AutomatonConstraint's transition
// table.
type AutomatonTransition struct {
	Tail  int64
	Label int64
	Head  int64
}

// AutomatonConstraint is the payload for KindAutomaton: Vars[i] must equal the
// Label of the i-th transition taken by a walk from StartingState that ends in
// one of FinalStates.
type AutomatonConstraint struct {
	Vars          []VarRef
	StartingState int64
	FinalStates   []int64
	Transitions   []AutomatonTransition
}

// TableConstraint is the payload for KindTable: each row of Values (width
// len(Vars)) is an admissible (or, if Negated, forbidden) joint assignment for
// Vars.
type TableConstraint struct {
	Vars    []VarRef
	Values  [][]int64
	Negated bool
}

// ReservoirConstraint is the payload for KindReservoir: the running sum of
// LevelChanges[i] applied at TimeExprs[i], for every i whose ActiveLiterals[i]
// is true, must stay within [MinLevel,MaxLevel] at every prefix ordered by
// time.
type ReservoirConstraint struct {
	TimeExprs      []LinearExpr
	LevelChanges   []LinearExpr
	ActiveLiterals []VarRef
	MinLevel       int64
	MaxLevel       int64
}

// IntervalConstraint is the payload for KindInterval: `Start + Size == End`.
// Interval constraints are represented but never rewritten by the expansion
// stage; other constraints (no-overlap, cumulative, all-different scanning)
// reference them by ConstrIndex.
type IntervalConstraint struct {
	Start LinearExpr
	Size  LinearExpr
	End   LinearExpr
}

// NoOverlapConstraint is the payload for KindNoOverlap: the referenced
// intervals, when active, must not pairwise overlap.
type NoOverlapConstraint struct {
	Intervals []ConstrIndex
}

// CircuitConstraint is the payload for KindCircuit: a Hamiltonian circuit over
// arcs (Tails[i],Heads[i]), present iff Literals[i] is true.
type CircuitConstraint struct {
	Tails    []int32
	Heads    []int32
	Literals []VarRef
}

// Constraint is a single entry of a Model: a Kind tag, the payload field
// matching that Kind, and the literals under which the constraint is
// enforced (empty means unconditionally enforced).
type Constraint struct {
	Kind        ConstraintKind
	Enforcement []VarRef

	BoolArgument *BoolArgument
	Linear       *LinearConstraint
	LinearArg    *LinearArgument
	AllDiff      *AllDiffConstraint
	Element      *ElementConstraint
	Inverse      *InverseConstraint
	Automaton    *AutomatonConstraint
	Table        *TableConstraint
	Reservoir    *ReservoirConstraint
	Interval     *IntervalConstraint
	NoOverlap    *NoOverlapConstraint
	Circuit      *CircuitConstraint
}

// Clear replaces the constraint in place with a no-op KindDummy entry,
// preserving its ConstrIndex for any other constraint that references it.
func (c *Constraint) Clear() {
	*c = Constraint{Kind: KindDummy}
}

// Model is an ordered, append-only collection of Variables and Constraints.
// The presolve stage keeps two Models: the working model being rewritten, and
// a mapping model that records how to translate a solution of the working
// model back to the original one.
type Model struct {
	Variables   []Variable
	Constraints []Constraint
}

// NewVar appends a new Variable with the given Domain and returns its VarRef.
func (m *Model) NewVar(d Domain, name string) VarRef {
	m.Variables = append(m.Variables, Variable{Domain: d, Name: name})
	return VarRef(len(m.Variables) - 1)
}

// NewBoolVar appends a new Boolean Variable (domain {0,1}) and returns its
// VarRef.
func (m *Model) NewBoolVar(name string) VarRef {
	return m.NewVar(NewDomain(0, 1), name)
}

// AddConstraint appends `c` to the model and returns its ConstrIndex.
func (m *Model) AddConstraint(c Constraint) ConstrIndex {
	m.Constraints = append(m.Constraints, c)
	return ConstrIndex(len(m.Constraints) - 1)
}

// VarDomain returns the Domain of the variable referenced by `ref`, applying
// the Boolean negation of `ref` if it is negative.
func (m *Model) VarDomain(ref VarRef) Domain {
	d := m.Variables[PositiveRef(ref)].Domain
	if RefIsPositive(ref) {
		return d
	}
	return d.Negation().AdditionWith(NewSingleDomain(1))
}
