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

// The expand command runs the constraint-expansion presolve stage over a
// small built-in model and reports which rewrite rules fired. It
// demonstrates the stage being invoked as one subsolver task among others,
// the way the owning pipeline runs it once before handing the expanded
// model to a worker pool.
package main

import (
	"fmt"
	"os"

	log "github.com/golang/glog"

	"github.com/constraintkit/cpexpand/cpmodel"
	"github.com/constraintkit/cpexpand/internal/subsolver"
	"github.com/constraintkit/cpexpand/presolve"
)

// buildSampleModel constructs a small model mixing an element and an
// all-different constraint, similar in spirit to the teacher's sample
// programs that each demonstrate one constraint kind.
func buildSampleModel() *cpmodel.Model {
	m := &cpmodel.Model{}
	index := m.NewVar(cpmodel.NewDomain(0, 2), "index")
	target := m.NewVar(cpmodel.NewDomain(0, 10), "target")
	a0 := m.NewVar(cpmodel.NewSingleDomain(5), "a0")
	a1 := m.NewVar(cpmodel.NewSingleDomain(7), "a1")
	a2 := m.NewVar(cpmodel.NewSingleDomain(5), "a2")
	m.AddConstraint(cpmodel.Constraint{
		Kind:    cpmodel.KindElement,
		Element: &cpmodel.ElementConstraint{Index: index, Target: target, Vars: []cpmodel.VarRef{a0, a1, a2}},
	})

	x := m.NewVar(cpmodel.NewDomain(0, 2), "x")
	y := m.NewVar(cpmodel.NewDomain(0, 2), "y")
	z := m.NewVar(cpmodel.NewDomain(0, 2), "z")
	m.AddConstraint(cpmodel.Constraint{
		Kind:    cpmodel.KindAllDiff,
		AllDiff: &cpmodel.AllDiffConstraint{Exprs: []cpmodel.LinearExpr{cpmodel.SingleVar(x), cpmodel.SingleVar(y), cpmodel.SingleVar(z)}},
	})
	return m
}

// expansionSubsolver runs presolve.Expand exactly once, as a single subsolver
// task, then reports itself done.
type expansionSubsolver struct {
	ctx  *presolve.Context
	done bool
}

func (e *expansionSubsolver) Name() string           { return "constraint_expansion" }
func (e *expansionSubsolver) Type() subsolver.Type    { return subsolver.Helper }
func (e *expansionSubsolver) Synchronize()            {}
func (e *expansionSubsolver) IsDone() bool            { return e.done }
func (e *expansionSubsolver) TaskIsAvailable() bool   { return !e.done }
func (e *expansionSubsolver) GenerateTask(int64) func() {
	return func() {
		presolve.Expand(e.ctx)
		e.done = true
	}
}

func runExpand() error {
	working := buildSampleModel()
	mapping := &cpmodel.Model{}
	ctx := presolve.NewContext(working, mapping, presolve.DefaultParams())

	subsolver.SequentialLoop([]subsolver.SubSolver{&expansionSubsolver{ctx: ctx}})

	if ctx.ModelIsUnsat() {
		return fmt.Errorf("model proven unsat during expansion: %s", ctx.UnsatReason())
	}

	fmt.Printf("expanded model has %d constraints (including cleared placeholders)\n", len(working.Constraints))
	ctx.DumpRuleStats(os.Stdout)
	return nil
}

func main() {
	if err := runExpand(); err != nil {
		log.Exitf("runExpand returned with error: %v", err)
	}
}
