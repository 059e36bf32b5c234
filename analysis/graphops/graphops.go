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

// Package graphops implements structural analyses that consume a
// control-flow graph directly: distances, traversal orders, back edges,
// dominators, loops, and summary statistics.
package graphops

import (
	"fmt"
	"strings"

	"github.com/cfgrind/cfgrind/analysis/cfg"
	"github.com/cfgrind/cfgrind/internal/funcutil"
)

// Selector names for the structural analyses.
const (
	SelectorPathLen   = "pathlen"
	SelectorRPO       = "rpo"
	SelectorBackEdges = "backedges"
	SelectorReducible = "reducible"
	SelectorLoops     = "loops"
)

// Selectors returns the valid structural-analysis selectors in sorted order.
func Selectors() []string {
	return []string{SelectorBackEdges, SelectorLoops, SelectorPathLen, SelectorRPO, SelectorReducible}
}

// UnknownSelectorError reports a request for a structural analysis that does
// not exist.
type UnknownSelectorError struct {
	Name string
}

func (e *UnknownSelectorError) Error() string {
	return fmt.Sprintf("unknown structural analysis %q (valid selectors: %s)",
		e.Name, strings.Join(Selectors(), ", "))
}

// Edge is a directed edge between two named blocks.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string { return e.From + " -> " + e.To }

// PathLengths returns the breadth-first distance, in edge count, from entry
// to every reachable block. Unreachable blocks are absent from the result.
func PathLengths(g *cfg.Graph, entry string) map[string]int {
	dist := map[string]int{entry: 0}
	queue := []string{entry}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Succs[u] {
			if _, seen := dist[v]; !seen {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return dist
}

// dfsFrame is one level of the explicit depth-first traversal stack.
type dfsFrame struct {
	node string
	next int
}

// ReversePostorder returns the blocks reachable from entry in reverse
// postorder: every block appears before its successors, except along back
// edges. The traversal keeps an explicit stack so deep graphs cannot
// exhaust the goroutine stack.
func ReversePostorder(g *cfg.Graph, entry string) []string {
	visited := map[string]bool{entry: true}
	stack := []dfsFrame{{node: entry}}
	var post []string

	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		succs := g.Succs[frame.node]
		if frame.next < len(succs) {
			child := succs[frame.next]
			frame.next++
			if !visited[child] {
				visited[child] = true
				stack = append(stack, dfsFrame{node: child})
			}
			continue
		}
		post = append(post, frame.node)
		stack = stack[:len(stack)-1]
	}

	funcutil.Reverse(post)
	return post
}

// BackEdges returns the edges (u, v) where v is on the active depth-first
// path when the edge out of u is examined. Like ReversePostorder, the
// traversal is iterative.
func BackEdges(g *cfg.Graph, entry string) []Edge {
	visited := map[string]bool{entry: true}
	onPath := map[string]bool{entry: true}
	stack := []dfsFrame{{node: entry}}
	var edges []Edge

	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		succs := g.Succs[frame.node]
		if frame.next < len(succs) {
			child := succs[frame.next]
			frame.next++
			switch {
			case !visited[child]:
				visited[child] = true
				onPath[child] = true
				stack = append(stack, dfsFrame{node: child})
			case onPath[child]:
				edges = append(edges, Edge{From: frame.node, To: child})
			}
			continue
		}
		onPath[frame.node] = false
		stack = stack[:len(stack)-1]
	}
	return edges
}
