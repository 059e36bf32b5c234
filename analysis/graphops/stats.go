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

package graphops

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/cfgrind/cfgrind/analysis/cfg"
)

// Stats summarizes the structure of one function's control-flow graph.
type Stats struct {
	Blocks       int
	Edges        int
	Instructions int
	BackEdges    int
	// Loops counts the nontrivial strongly connected components,
	// including single-block self loops.
	Loops     int
	Reducible bool
}

// ComputeStats collects the statistics of g. The SCC count is computed with
// gonum's Tarjan implementation over a mirror of the graph; self loops are
// counted separately since simple directed graphs reject them.
func ComputeStats(g *cfg.Graph) Stats {
	stats := Stats{Blocks: len(g.Names), Edges: g.NumEdges()}
	for _, name := range g.Names {
		stats.Instructions += len(g.Blocks[name])
	}
	if len(g.Names) == 0 {
		stats.Reducible = true
		return stats
	}

	index := make(map[string]int, len(g.Names))
	for i, name := range g.Names {
		index[name] = i
	}
	mirror := simple.NewDirectedGraph()
	for i := range g.Names {
		mirror.AddNode(simple.Node(i))
	}
	selfLoops := map[int]bool{}
	for _, name := range g.Names {
		for _, succ := range g.Succs[name] {
			u, v := index[name], index[succ]
			if u == v {
				selfLoops[u] = true
				continue
			}
			mirror.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		}
	}

	inNontrivial := map[int]bool{}
	for _, scc := range topo.TarjanSCC(mirror) {
		if len(scc) >= 2 {
			stats.Loops++
			for _, node := range scc {
				inNontrivial[int(node.ID())] = true
			}
		}
	}
	for node := range selfLoops {
		if !inNontrivial[node] {
			stats.Loops++
		}
	}

	entry := g.Entry()
	stats.BackEdges = len(BackEdges(g, entry))
	stats.Reducible = IsReducible(g, entry)
	return stats
}
