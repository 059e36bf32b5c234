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
	"golang.org/x/tools/container/intsets"

	"github.com/cfgrind/cfgrind/analysis/cfg"
)

// dominatorSets runs the iterative dominator computation over block indices,
// using sparse bitsets for the per-node sets. Every node starts with the
// full node set except entry, which dominates only itself; nodes without
// predecessors keep the full set, matching the treatment of unreachable
// nodes in the reducibility test.
func dominatorSets(g *cfg.Graph, entry string) (map[string]int, []*intsets.Sparse) {
	index := make(map[string]int, len(g.Names))
	for i, name := range g.Names {
		index[name] = i
	}

	var full intsets.Sparse
	for i := range g.Names {
		full.Insert(i)
	}

	dom := make([]*intsets.Sparse, len(g.Names))
	for i := range dom {
		dom[i] = new(intsets.Sparse)
		dom[i].Copy(&full)
	}
	entryIdx := index[entry]
	dom[entryIdx] = new(intsets.Sparse)
	dom[entryIdx].Insert(entryIdx)

	for changed := true; changed; {
		changed = false
		for i, name := range g.Names {
			if i == entryIdx || len(g.Preds[name]) == 0 {
				continue
			}
			next := new(intsets.Sparse)
			next.Copy(&full)
			for _, pred := range g.Preds[name] {
				next.IntersectionWith(dom[index[pred]])
			}
			next.Insert(i)
			if !next.Equals(dom[i]) {
				dom[i] = next
				changed = true
			}
		}
	}
	return index, dom
}

// Dominators returns, per block, the set of blocks on every path from entry
// to it.
func Dominators(g *cfg.Graph, entry string) map[string][]string {
	_, dom := dominatorSets(g, entry)
	result := make(map[string][]string, len(g.Names))
	for i, name := range g.Names {
		var indices []int
		indices = dom[i].AppendTo(indices)
		doms := make([]string, len(indices))
		for j, idx := range indices {
			doms[j] = g.Names[idx]
		}
		result[name] = doms
	}
	return result
}

// IsReducible reports whether every back edge's target dominates its
// source. Irreducible graphs have a cycle that can be entered at more than
// one point.
func IsReducible(g *cfg.Graph, entry string) bool {
	index, dom := dominatorSets(g, entry)
	for _, edge := range BackEdges(g, entry) {
		if !dom[index[edge.From]].Has(index[edge.To]) {
			return false
		}
	}
	return true
}
