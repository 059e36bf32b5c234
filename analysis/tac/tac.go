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

// Package tac defines the three-address instruction representation consumed
// by the analyses, and its JSON decoding.
//
// A program is a list of functions; a function is a flat, ordered list of
// instruction records. A record carrying only a label is a position marker,
// not an executable instruction.
package tac

// Recognized control-flow mnemonics.
const (
	// OpJump is an unconditional jump carrying one target label.
	OpJump = "jmp"
	// OpBranch is a conditional branch carrying two target labels,
	// ordered [true, false].
	OpBranch = "br"
	// OpReturn exits the function and carries no labels.
	OpReturn = "ret"

	// OpConst produces the literal stored in the instruction's Value field.
	OpConst = "const"
)

// Instruction is a single three-address instruction record. All fields are
// optional in the wire format; which ones are set determines the record's
// role.
type Instruction struct {
	// Op is the operation mnemonic. Empty for label markers.
	Op string `json:"op,omitempty"`

	// Dest is the variable written by the instruction, if any. An
	// instruction with a non-empty Dest is a definition.
	Dest string `json:"dest,omitempty"`

	// Args are the variables read by the instruction, in order.
	Args []string `json:"args,omitempty"`

	// Labels are the branch targets: one for jmp, [true, false] for br.
	Labels []string `json:"labels,omitempty"`

	// Value is the literal produced by constant-producing ops. Decoded
	// with json.Number so that literals compare exactly.
	Value interface{} `json:"value,omitempty"`

	// Type is the declared result type, carried through but not
	// interpreted by any analysis.
	Type interface{} `json:"type,omitempty"`

	// Label marks a block-label position when the record is a marker.
	Label string `json:"label,omitempty"`
}

// IsLabel reports whether the record is a non-executing label marker.
func (i Instruction) IsLabel() bool {
	return i.Op == "" && i.Label != ""
}

// IsTerminator reports whether the instruction ends a basic block.
func (i Instruction) IsTerminator() bool {
	switch i.Op {
	case OpJump, OpBranch, OpReturn:
		return true
	}
	return false
}

// IsDefinition reports whether the instruction writes a variable.
func (i Instruction) IsDefinition() bool {
	return i.Dest != ""
}

// Function is a named, ordered instruction sequence. Each function is
// analyzed independently.
type Function struct {
	Name   string        `json:"name"`
	Instrs []Instruction `json:"instrs"`
}

// Program is the top-level unit of input.
type Program struct {
	Functions []Function `json:"functions"`
}
