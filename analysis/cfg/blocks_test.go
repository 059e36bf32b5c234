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
	"testing"

	"github.com/cfgrind/cfgrind/analysis/tac"
)

func label(l string) tac.Instruction { return tac.Instruction{Label: l} }

func op(name string, args ...string) tac.Instruction {
	return tac.Instruction{Op: name, Args: args}
}

func def(opName, dest string, args ...string) tac.Instruction {
	return tac.Instruction{Op: opName, Dest: dest, Args: args}
}

func constDef(dest string, value interface{}) tac.Instruction {
	return tac.Instruction{Op: tac.OpConst, Dest: dest, Value: value}
}

func jmp(target string) tac.Instruction {
	return tac.Instruction{Op: tac.OpJump, Labels: []string{target}}
}

func br(cond, trueTarget, falseTarget string) tac.Instruction {
	return tac.Instruction{Op: tac.OpBranch, Args: []string{cond}, Labels: []string{trueTarget, falseTarget}}
}

func ret() tac.Instruction { return tac.Instruction{Op: tac.OpReturn} }

func TestFormBlocksEmpty(t *testing.T) {
	if blocks := FormBlocks(nil); len(blocks) != 0 {
		t.Errorf("expected no blocks for empty input, got %d", len(blocks))
	}
}

func TestFormBlocksStraightLine(t *testing.T) {
	blocks := FormBlocks([]tac.Instruction{
		constDef("a", 1),
		def("add", "b", "a", "a"),
		op("print", "b"),
	})
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
	if len(blocks[0]) != 3 {
		t.Errorf("expected 3 instructions in block, got %d", len(blocks[0]))
	}
}

func TestFormBlocksSplitsAfterTerminators(t *testing.T) {
	blocks := FormBlocks([]tac.Instruction{
		constDef("a", 1),
		ret(),
		constDef("b", 2),
	})
	if len(blocks) != 2 {
		t.Fatalf("expected two blocks, got %d", len(blocks))
	}
	if blocks[0][1].Op != tac.OpReturn {
		t.Errorf("first block should end with ret, got %q", blocks[0][1].Op)
	}
}

func TestFormBlocksBranchTargetsAreLeaders(t *testing.T) {
	// The jump target in the middle of straight-line code forces a split at
	// the label even though nothing precedes it with a terminator.
	blocks := FormBlocks([]tac.Instruction{
		constDef("a", 1),
		label("mid"),
		constDef("b", 2),
		jmp("mid"),
	})
	if len(blocks) != 2 {
		t.Fatalf("expected two blocks, got %d", len(blocks))
	}
	if !blocks[1][0].IsLabel() || blocks[1][0].Label != "mid" {
		t.Errorf("second block should start at label mid, got %+v", blocks[1][0])
	}
}

func TestFormBlocksDanglingTargetAddsNoLeader(t *testing.T) {
	blocks := FormBlocks([]tac.Instruction{
		constDef("a", 1),
		br("a", "nowhere", "alsonowhere"),
	})
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
}

func TestFormBlocksTrailingTerminator(t *testing.T) {
	blocks := FormBlocks([]tac.Instruction{
		constDef("a", 1),
		ret(),
	})
	if len(blocks) != 1 {
		t.Fatalf("expected one block when the terminator is last, got %d", len(blocks))
	}
}
