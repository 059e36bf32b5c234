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

// Package cfg forms basic blocks from flat instruction streams and builds
// per-function control-flow graphs over them.
package cfg

import (
	"sort"

	"github.com/cfgrind/cfgrind/analysis/tac"
)

// FormBlocks partitions instrs into basic blocks. Position 0 is always a
// leader; so is every resolved branch target and every position following a
// terminator. Each block spans from one leader up to the next. An empty
// input yields no blocks. A branch target with no matching label adds no
// leader here; Build reports it when strict label checking is on.
func FormBlocks(instrs []tac.Instruction) [][]tac.Instruction {
	if len(instrs) == 0 {
		return nil
	}

	labelPos := make(map[string]int)
	for i, instr := range instrs {
		if instr.IsLabel() {
			labelPos[instr.Label] = i
		}
	}

	leaders := map[int]bool{0: true}
	for i, instr := range instrs {
		if !instr.IsTerminator() {
			continue
		}
		for _, target := range instr.Labels {
			if pos, ok := labelPos[target]; ok {
				leaders[pos] = true
			}
		}
		if i+1 < len(instrs) {
			leaders[i+1] = true
		}
	}

	positions := make([]int, 0, len(leaders))
	for pos := range leaders {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	blocks := make([][]tac.Instruction, 0, len(positions))
	for i, start := range positions {
		end := len(instrs)
		if i+1 < len(positions) {
			end = positions[i+1]
		}
		if start < end {
			blocks = append(blocks, instrs[start:end])
		}
	}
	return blocks
}
