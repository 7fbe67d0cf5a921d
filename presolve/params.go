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

// Package presolve implements the constraint-expansion stage of a CP
// presolver: the per-constraint rewrite routines, the value-encoding and
// precedence caches, the presolve context that mediates domain tightening
// and constraint emission, and the two-pass driver that orchestrates them.
package presolve

// Params mirrors the effects enumerated for configuring the expansion stage.
// It stands in for the generated parameters proto the teacher's C++ sibling
// carries; since this repository has no protobuf stack (see DESIGN.md), the
// same field semantics are exposed as a plain struct.
type Params struct {
	// DisableConstraintExpansion makes Expand a no-op.
	DisableConstraintExpansion bool

	// ExpandReservoirConstraints gates the reservoir expander.
	ExpandReservoirConstraints bool

	// ExpandAlldiffConstraints forces all-different expansion regardless of
	// what the usage scanner would otherwise decide.
	ExpandAlldiffConstraints bool

	// EncodeComplexLinearConstraintWithInteger selects the integer-slack
	// encoding for complex linear constraints; when false, the Boolean
	// disjunction encoding is used instead.
	EncodeComplexLinearConstraintWithInteger bool

	// DetectTableWithCost enables the WCSP cost-reduction pass over positive
	// table constraints.
	DetectTableWithCost bool

	// TableCompressionLevel controls wildcard/full compression of table rows:
	// 0 none, 1 wildcard only, 2 wildcard + full above 1000 rows, 3 always full.
	TableCompressionLevel int

	// CpModelPresolve, when false, makes complex linear constraints expand in
	// the first driver pass instead of being deferred.
	CpModelPresolve bool

	// EnumerateAllSolutions triggers the extra enforcement-gating literal when
	// expanding complex linear constraints with enforcement literals.
	EnumerateAllSolutions bool
}

// DefaultParams returns the parameter set the driver uses when none is
// supplied explicitly: expansion enabled, reservoir expansion enabled, no
// forced all-different expansion, Boolean-disjunction encoding for complex
// linear, cost detection off, wildcard-only compression, deferred complex
// linear (mirrors running behind a presolve loop), and no solution
// enumeration.
func DefaultParams() Params {
	return Params{
		ExpandReservoirConstraints:               true,
		EncodeComplexLinearConstraintWithInteger: false,
		TableCompressionLevel:                    1,
		CpModelPresolve:                          true,
	}
}
