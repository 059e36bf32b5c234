// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataflow

import (
	"fmt"

	"github.com/cfgrind/cfgrind/analysis/cfg"
	"github.com/cfgrind/cfgrind/analysis/tac"
)

// Direction selects which way an analysis propagates values along edges.
type Direction int

const (
	// Forward analyses merge over predecessors; the boundary node is the
	// first block in program order.
	Forward Direction = iota
	// Backward analyses merge over successors; the boundary node is the
	// last block in program order.
	Backward
)

// Analysis describes one dataflow analysis: its direction, the initial
// lattice value, and the merge and transfer operators. Termination of the
// solver requires a finite-height lattice and monotone operators; that is a
// contract on the analysis author, not something the solver checks.
type Analysis struct {
	Name      string
	Direction Direction

	// Init returns the initial boundary value. It is called once per node
	// so returned values may be freely mutated by Transfer.
	Init func() Value

	// Merge combines the values flowing in over the given edges. It must
	// accept an empty input.
	Merge func(values []Value) Value

	// Transfer computes the block's outgoing value from its incoming one.
	// It must not mutate in.
	Transfer func(block string, instrs []tac.Instruction, in Value) Value
}

// Result holds the converged values keyed by block name, always oriented so
// that In is the value at block entry and Out the value at block exit,
// regardless of the analysis direction.
type Result struct {
	In  map[string]Value
	Out map[string]Value
}

// NonConvergenceError reports that the solver hit its step cap before
// reaching a fixed point, which indicates a non-monotone or unbounded
// analysis.
type NonConvergenceError struct {
	Analysis string
	FuncName string
	Steps    int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("analysis %q did not converge on function %q after %d worklist steps",
		e.Analysis, e.FuncName, e.Steps)
}

// Solve iterates an to a fixed point over g. The pending queue is seeded
// with every block in program order and processed FIFO; a block re-enters
// the queue when one of its in-edge values changes. The boundary node's
// in-value is pinned to Init and never recomputed. maxSteps caps the number
// of dequeue steps (0 disables the cap); exceeding it returns a
// *NonConvergenceError.
func Solve(g *cfg.Graph, an Analysis, maxSteps int) (Result, error) {
	if len(g.Names) == 0 {
		return Result{In: map[string]Value{}, Out: map[string]Value{}}, nil
	}

	inEdges, outEdges := g.Preds, g.Succs
	boundary := g.Entry()
	if an.Direction == Backward {
		inEdges, outEdges = g.Succs, g.Preds
		boundary = g.Exit()
	}

	in := make(map[string]Value, len(g.Names))
	out := make(map[string]Value, len(g.Names))
	in[boundary] = an.Init()
	for _, name := range g.Names {
		out[name] = an.Init()
	}

	// FIFO queue with a membership set: re-queueing an already pending
	// block is redundant work, not a correctness requirement.
	queue := append([]string{}, g.Names...)
	pending := make(map[string]bool, len(g.Names))
	for _, name := range g.Names {
		pending[name] = true
	}

	steps := 0
	for len(queue) > 0 {
		if maxSteps > 0 && steps >= maxSteps {
			return Result{}, &NonConvergenceError{Analysis: an.Name, FuncName: g.FuncName, Steps: steps}
		}
		steps++

		node := queue[0]
		queue = queue[1:]
		pending[node] = false

		if node != boundary {
			incoming := make([]Value, 0, len(inEdges[node]))
			for _, edge := range inEdges[node] {
				incoming = append(incoming, out[edge])
			}
			in[node] = an.Merge(incoming)
		}

		next := an.Transfer(node, g.Blocks[node], in[node])
		if !next.Equal(out[node]) {
			out[node] = next
			for _, succ := range outEdges[node] {
				if !pending[succ] {
					pending[succ] = true
					queue = append(queue, succ)
				}
			}
		}
	}

	if an.Direction == Backward {
		return Result{In: out, Out: in}, nil
	}
	return Result{In: in, Out: out}, nil
}
