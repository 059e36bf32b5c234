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
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/cfgrind/cfgrind/analysis/cfg"
	"github.com/cfgrind/cfgrind/analysis/tac"
)

func constDef(dest string, value string) tac.Instruction {
	return tac.Instruction{Op: tac.OpConst, Dest: dest, Value: json.Number(value)}
}

func use(opName string, args ...string) tac.Instruction {
	return tac.Instruction{Op: opName, Args: args}
}

func def(opName, dest string, args ...string) tac.Instruction {
	return tac.Instruction{Op: opName, Dest: dest, Args: args}
}

func mustSolve(t *testing.T, g *cfg.Graph, an Analysis) Result {
	t.Helper()
	result, err := Solve(g, an, 0)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	return result
}

// twoBlockChain is scenario: b1 defines a, b2 reads it.
func twoBlockChain() *cfg.Graph {
	return cfg.FromEdges("main", []string{"b1", "b2"},
		map[string][]tac.Instruction{
			"b1": {constDef("a", "4")},
			"b2": {use("print", "a")},
		},
		map[string][]string{"b1": {"b2"}})
}

func TestLiveVariablesChain(t *testing.T) {
	result := mustSolve(t, twoBlockChain(), LiveVariables())
	checks := []struct {
		m     map[string]Value
		block string
		want  Value
	}{
		{result.Out, "b2", NewVarSet()},
		{result.In, "b2", NewVarSet("a")},
		{result.Out, "b1", NewVarSet("a")},
		{result.In, "b1", NewVarSet()},
	}
	for _, c := range checks {
		if !c.m[c.block].Equal(c.want) {
			t.Errorf("block %s: expected %s, got %s", c.block, c.want, c.m[c.block])
		}
	}
}

func TestConstantPropagationOverwrite(t *testing.T) {
	g := cfg.FromEdges("main", []string{"b1"},
		map[string][]tac.Instruction{
			"b1": {constDef("x", "1"), constDef("x", "2")},
		}, nil)
	result := mustSolve(t, g, ConstantPropagation())
	want := ConstMap{"x": Known(json.Number("2"))}
	if !result.Out["b1"].Equal(want) {
		t.Errorf("expected out = {x: 2}, got %s", result.Out["b1"])
	}
}

func TestSolveDeterministic(t *testing.T) {
	g := loopGraph()
	an := LiveVariables()
	first := mustSolve(t, g, an)
	for i := 0; i < 10; i++ {
		again := mustSolve(t, g, an)
		for _, name := range g.Names {
			if !first.In[name].Equal(again.In[name]) || !first.Out[name].Equal(again.Out[name]) {
				t.Fatalf("run %d: results differ at block %s", i, name)
			}
		}
	}
}

// loopGraph is a diamond with a back edge:
// entry -> loop; loop -> body, exit; body -> loop.
func loopGraph() *cfg.Graph {
	return cfg.FromEdges("main", []string{"entry", "loop", "body", "exit"},
		map[string][]tac.Instruction{
			"entry": {constDef("i", "0"), constDef("n", "10")},
			"loop":  {def("lt", "cond", "i", "n")},
			"body":  {constDef("one", "1"), def("add", "i", "i", "one")},
			"exit":  {use("print", "i")},
		},
		map[string][]string{
			"entry": {"loop"},
			"loop":  {"body", "exit"},
			"body":  {"loop"},
		})
}

func TestSolveFixedPoint(t *testing.T) {
	// Re-applying the transfer to a converged (in, out) pair must
	// reproduce the same out value.
	g := loopGraph()

	forward := DefinedVariables()
	result := mustSolve(t, g, forward)
	for _, name := range g.Names {
		again := forward.Transfer(name, g.Blocks[name], result.In[name])
		if !again.Equal(result.Out[name]) {
			t.Errorf("defined: block %s not at fixed point: %s vs %s", name, again, result.Out[name])
		}
	}

	backward := LiveVariables()
	result = mustSolve(t, g, backward)
	for _, name := range g.Names {
		again := backward.Transfer(name, g.Blocks[name], result.Out[name])
		if !again.Equal(result.In[name]) {
			t.Errorf("live: block %s not at fixed point: %s vs %s", name, again, result.In[name])
		}
	}
}

func TestSolveMonotoneGrowth(t *testing.T) {
	// For the set-valued catalog analyses, committed out-values only grow.
	g := loopGraph()
	an := DefinedVariables()
	history := map[string][]VarSet{}
	instrumented := an
	instrumented.Transfer = func(block string, instrs []tac.Instruction, in Value) Value {
		out := an.Transfer(block, instrs, in).(VarSet)
		history[block] = append(history[block], out)
		return out
	}
	mustSolve(t, g, instrumented)
	for block, values := range history {
		for i := 1; i < len(values); i++ {
			for v := range values[i-1] {
				if !values[i].Has(v) {
					t.Errorf("block %s: out shrank between iterations: %s then %s",
						block, values[i-1], values[i])
				}
			}
		}
	}
}

func TestSolveEmptyGraph(t *testing.T) {
	g := cfg.FromEdges("empty", nil, nil, nil)
	result := mustSolve(t, g, DefinedVariables())
	if len(result.In) != 0 || len(result.Out) != 0 {
		t.Errorf("expected empty result, got %v %v", result.In, result.Out)
	}
}

func TestSolveNonConvergence(t *testing.T) {
	// A transfer that keeps inventing new facts never reaches a fixed
	// point; the step cap must turn that into an error.
	g := cfg.FromEdges("main", []string{"a", "b"}, nil,
		map[string][]string{"a": {"b"}, "b": {"b"}})
	counter := 0
	diverging := Analysis{
		Name:      "diverging",
		Direction: Forward,
		Init:      func() Value { return NewVarSet() },
		Merge:     Union,
		Transfer: func(block string, instrs []tac.Instruction, in Value) Value {
			out := in.(VarSet).Copy()
			counter++
			out.Add(fmt.Sprintf("fact%d", counter))
			return out
		},
	}
	_, err := Solve(g, diverging, 100)
	var nc *NonConvergenceError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NonConvergenceError, got %v", err)
	}
	if nc.Analysis != "diverging" || nc.Steps != 100 {
		t.Errorf("error should carry analysis name and step count: %+v", nc)
	}
}

func TestSolveBoundaryPinned(t *testing.T) {
	// The boundary in-value stays at the initial value even when the
	// boundary node has in-edges.
	g := cfg.FromEdges("main", []string{"a", "b"},
		map[string][]tac.Instruction{
			"a": {constDef("x", "1")},
			"b": {constDef("y", "2")},
		},
		map[string][]string{"a": {"b"}, "b": {"a"}})
	result := mustSolve(t, g, DefinedVariables())
	if !result.In["a"].Equal(NewVarSet()) {
		t.Errorf("entry in-value must stay initial, got %s", result.In["a"])
	}
	if !result.Out["b"].Equal(NewVarSet("x", "y")) {
		t.Errorf("expected {x, y} at exit of b, got %s", result.Out["b"])
	}
}
