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

package cfg

import (
	"fmt"

	"github.com/cfgrind/cfgrind/analysis/tac"
)

// Graph is the control-flow graph of a single function. Block names are
// unique within the function; every name appears as a key of both Succs and
// Preds, even with no edges.
type Graph struct {
	// FuncName is the name of the function the graph was built from.
	FuncName string

	// Names lists the block names in program order.
	Names []string

	// Blocks maps each block name to its instructions.
	Blocks map[string][]tac.Instruction

	// Succs maps each block name to its successors, in order. Conditional
	// branches contribute [true-target, false-target].
	Succs map[string][]string

	// Preds is the inverse of Succs.
	Preds map[string][]string
}

// Entry returns the entry block: the first block in program order.
// The graph must be non-empty.
func (g *Graph) Entry() string { return g.Names[0] }

// Exit returns the last block in program order, used as the boundary node of
// backward analyses. The graph must be non-empty.
func (g *Graph) Exit() string { return g.Names[len(g.Names)-1] }

// NumEdges returns the total successor edge count.
func (g *Graph) NumEdges() int {
	n := 0
	for _, succs := range g.Succs {
		n += len(succs)
	}
	return n
}

// DanglingLabelError reports a branch or jump to a label that names no block
// in the function.
type DanglingLabelError struct {
	FuncName string
	Block    string
	Label    string
}

func (e *DanglingLabelError) Error() string {
	return fmt.Sprintf("function %q: block %q branches to undefined label %q",
		e.FuncName, e.Block, e.Label)
}

// FromEdges assembles a graph from block names in program order and a
// successor map, deriving the predecessor map. Blocks without a successor
// entry get an empty one. The instruction map may be nil for callers that
// only need the graph structure.
func FromEdges(funcName string, names []string, blocks map[string][]tac.Instruction, succs map[string][]string) *Graph {
	g := &Graph{
		FuncName: funcName,
		Names:    names,
		Blocks:   blocks,
		Succs:    make(map[string][]string, len(names)),
		Preds:    make(map[string][]string, len(names)),
	}
	if g.Blocks == nil {
		g.Blocks = make(map[string][]tac.Instruction, len(names))
	}
	for _, name := range names {
		g.Succs[name] = append([]string{}, succs[name]...)
		if _, ok := g.Preds[name]; !ok {
			g.Preds[name] = []string{}
		}
	}
	for _, name := range names {
		for _, succ := range g.Succs[name] {
			g.Preds[succ] = append(g.Preds[succ], name)
		}
	}
	return g
}

// Build forms fn's basic blocks and constructs its control-flow graph. A
// block is named by its leading label when it has one, and by a generated
// sequential name otherwise. With strict set, an edge to an undefined label
// fails with a *DanglingLabelError; otherwise the edge is silently dropped.
func Build(fn *tac.Function, strict bool) (*Graph, error) {
	blockList := FormBlocks(fn.Instrs)

	names := make([]string, 0, len(blockList))
	blocks := make(map[string][]tac.Instruction, len(blockList))
	unnamed := 0
	for _, block := range blockList {
		var name string
		if block[0].IsLabel() {
			name = block[0].Label
		} else {
			name = fmt.Sprintf("b%d", unnamed)
			unnamed++
		}
		if _, dup := blocks[name]; dup {
			return nil, fmt.Errorf("function %q: duplicate block name %q", fn.Name, name)
		}
		names = append(names, name)
		blocks[name] = block
	}

	succs := make(map[string][]string, len(names))
	for i, name := range names {
		targets, err := successors(fn.Name, name, blocks[name], names, i, strict)
		if err != nil {
			return nil, err
		}
		succs[name] = targets
	}

	return FromEdges(fn.Name, names, blocks, succs), nil
}

// successors computes the out-edges of one block from its terminating
// instruction, or the fallthrough edge when the block has none.
func successors(funcName, name string, block []tac.Instruction, names []string, idx int, strict bool) ([]string, error) {
	var last *tac.Instruction
	for i := len(block) - 1; i >= 0; i-- {
		if block[i].Op != "" {
			last = &block[i]
			break
		}
	}

	fallthroughTo := func() []string {
		if idx+1 < len(names) {
			return []string{names[idx+1]}
		}
		return []string{}
	}

	if last == nil {
		return fallthroughTo(), nil
	}
	switch last.Op {
	case tac.OpJump, tac.OpBranch:
		want := 1
		if last.Op == tac.OpBranch {
			want = 2
		}
		if len(last.Labels) < want {
			return nil, fmt.Errorf("function %q: block %q: %s needs %d label(s), has %d",
				funcName, name, last.Op, want, len(last.Labels))
		}
		targets := make([]string, 0, want)
		for _, target := range last.Labels[:want] {
			if _, ok := indexOf(names, target); !ok {
				if strict {
					return nil, &DanglingLabelError{FuncName: funcName, Block: name, Label: target}
				}
				continue
			}
			targets = append(targets, target)
		}
		return targets, nil
	case tac.OpReturn:
		return []string{}, nil
	default:
		return fallthroughTo(), nil
	}
}

func indexOf(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
