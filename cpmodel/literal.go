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

// VarRef references a variable in a Model. A non-negative VarRef `v` refers to
// variable `v` directly; a negative VarRef refers to the Boolean negation of
// variable `PositiveRef(v)`. This mirrors the ref/negated-ref convention used
// throughout the constraint IR (and the macros of the same name in the
// original presolve sources): variable indices and their negations share the
// same encoding space instead of needing a separate "literal" type.
type VarRef int32

// PositiveRef returns the VarRef of the underlying variable, stripping any
// negation.
func PositiveRef(ref VarRef) VarRef {
	if ref >= 0 {
		return ref
	}
	return -ref - 1
}

// NegatedRef returns the Boolean negation of `ref`.
func NegatedRef(ref VarRef) VarRef {
	return -ref - 1
}

// RefIsPositive reports whether `ref` refers directly to a variable rather
// than its negation.
func RefIsPositive(ref VarRef) bool {
	return ref >= 0
}

// ConstrIndex references a constraint's position in a Model's constraint
// list.
type ConstrIndex int32
