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
	"github.com/yourbasic/graph"

	"github.com/cfgrind/cfgrind/analysis/cfg"
)

// ElementaryCycles finds all elementary cycles in the control-flow graph,
// i.e. the loops of the function. This uses Donald B. Johnson's algorithm
// presented in "Finding All The Elementary Circuits of a Directed Graph",
// 1975. Each cycle is returned as its blocks in traversal order, starting at
// the block with the lowest program-order index.
func ElementaryCycles(g *cfg.Graph) [][]string {
	n := len(g.Names)
	index := make(map[string]int, n)
	for i, name := range g.Names {
		index[name] = i
	}
	adj := make([]map[int]bool, n)
	for i, name := range g.Names {
		adj[i] = make(map[int]bool)
		for _, succ := range g.Succs[name] {
			adj[i][index[succ]] = true
		}
	}

	var cycles [][]int
	for start := 0; start < n; start++ {
		if adj[start][start] {
			cycles = append(cycles, []int{start})
		}
		scc := componentOf(adj, n, start)
		if len(scc) < 2 {
			continue
		}
		s := &cycleState{
			blocked: map[int]bool{},
			blist:   map[int]map[int]bool{},
			inSCC:   scc,
		}
		s.circuit(start, start, adj)
		cycles = append(cycles, s.cycles...)
	}

	named := make([][]string, len(cycles))
	for i, cycle := range cycles {
		names := make([]string, len(cycle))
		for j, idx := range cycle {
			names[j] = g.Names[idx]
		}
		named[i] = names
	}
	return named
}

// componentOf returns the strongly connected component containing start in
// the subgraph induced by nodes >= start, as a membership set.
func componentOf(adj []map[int]bool, n int, start int) map[int]bool {
	yg := graph.New(n)
	for u := start; u < n; u++ {
		for v := range adj[u] {
			if v >= start && v != u {
				yg.Add(u, v)
			}
		}
	}
	for _, component := range graph.StrongComponents(yg) {
		for _, v := range component {
			if v == start {
				members := make(map[int]bool, len(component))
				for _, w := range component {
					members[w] = true
				}
				return members
			}
		}
	}
	return nil
}

type cycleState struct {
	blocked map[int]bool
	blist   map[int]map[int]bool
	stack   []int
	cycles  [][]int
	inSCC   map[int]bool
}

func (s *cycleState) unblock(u int) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		if s.blocked[w] {
			s.unblock(w)
		}
	}
	delete(s.blist, u)
}

func (s *cycleState) circuit(v int, root int, adj []map[int]bool) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for w := range adj[v] {
		if !s.inSCC[w] || w == v {
			continue
		}
		if w == root {
			cycle := make([]int, len(s.stack))
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, cycle)
			found = true
		} else if !s.blocked[w] {
			if s.circuit(w, root, adj) {
				found = true
			}
		}
	}
	if found {
		s.unblock(v)
	} else {
		for w := range adj[v] {
			if !s.inSCC[w] || w == v {
				continue
			}
			if s.blist[w] == nil {
				s.blist[w] = map[int]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}
