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
	"strings"

	"github.com/cfgrind/cfgrind/analysis/tac"
	"github.com/cfgrind/cfgrind/internal/funcutil"
)

// Catalog returns the registry of built-in analyses, keyed by name. The
// registry is an ordinary value: callers may copy it and add their own
// analyses before calling Lookup.
func Catalog() map[string]Analysis {
	return map[string]Analysis{
		"defined":   DefinedVariables(),
		"live":      LiveVariables(),
		"cprop":     ConstantPropagation(),
		"reaching":  ReachingDefinitions(),
		"available": AvailableExpressions(),
	}
}

// UnknownAnalysisError reports a request for an analysis name absent from
// the registry.
type UnknownAnalysisError struct {
	Name  string
	Valid []string
}

func (e *UnknownAnalysisError) Error() string {
	return fmt.Sprintf("unknown analysis %q (valid analyses: %s)",
		e.Name, strings.Join(e.Valid, ", "))
}

// Lookup retrieves name from the registry, failing fast with an
// *UnknownAnalysisError listing the valid names.
func Lookup(registry map[string]Analysis, name string) (Analysis, error) {
	an, ok := registry[name]
	if !ok {
		return Analysis{}, &UnknownAnalysisError{Name: name, Valid: funcutil.SortedKeys(registry)}
	}
	return an, nil
}

// written returns the variables written in the block.
func written(instrs []tac.Instruction) VarSet {
	defs := NewVarSet()
	for _, instr := range instrs {
		if instr.IsDefinition() {
			defs.Add(instr.Dest)
		}
	}
	return defs
}

// usedBeforeWritten returns the variables read before any write to them in
// the block.
func usedBeforeWritten(instrs []tac.Instruction) VarSet {
	defined := NewVarSet()
	used := NewVarSet()
	for _, instr := range instrs {
		for _, arg := range instr.Args {
			if !defined.Has(arg) {
				used.Add(arg)
			}
		}
		if instr.IsDefinition() {
			defined.Add(instr.Dest)
		}
	}
	return used
}

// DefinedVariables accumulates the variables defined along every path to a
// block: a minimal forward may-analysis.
func DefinedVariables() Analysis {
	return Analysis{
		Name:      "defined",
		Direction: Forward,
		Init:      func() Value { return NewVarSet() },
		Merge:     Union,
		Transfer: func(block string, instrs []tac.Instruction, in Value) Value {
			out := in.(VarSet).Copy()
			for v := range written(instrs) {
				out.Add(v)
			}
			return out
		},
	}
}

// LiveVariables computes the variables that may be read along some path
// after each point.
func LiveVariables() Analysis {
	return Analysis{
		Name:      "live",
		Direction: Backward,
		Init:      func() Value { return NewVarSet() },
		Merge:     Union,
		Transfer: func(block string, instrs []tac.Instruction, out Value) Value {
			defs := written(instrs)
			live := usedBeforeWritten(instrs)
			for v := range out.(VarSet) {
				if !defs.Has(v) {
					live.Add(v)
				}
			}
			return live
		},
	}
}

// ConstantPropagation tracks, per variable, the single constant it must hold
// or the unknown mark.
func ConstantPropagation() Analysis {
	return Analysis{
		Name:      "cprop",
		Direction: Forward,
		Init:      func() Value { return NewConstMap() },
		Merge:     MergeConstants,
		Transfer: func(block string, instrs []tac.Instruction, in Value) Value {
			out := in.(ConstMap).Copy()
			for _, instr := range instrs {
				if !instr.IsDefinition() {
					continue
				}
				if instr.Op == tac.OpConst {
					out[instr.Dest] = Known(instr.Value)
				} else {
					out[instr.Dest] = UnknownVal
				}
			}
			return out
		},
	}
}

// ReachingDefinitions tracks which definitions may reach each point. A fact
// is rendered "var.block.index"; a write to var kills every earlier fact for
// var and generates its own.
func ReachingDefinitions() Analysis {
	return Analysis{
		Name:      "reaching",
		Direction: Forward,
		Init:      func() Value { return NewVarSet() },
		Merge:     Union,
		Transfer: func(block string, instrs []tac.Instruction, in Value) Value {
			out := in.(VarSet).Copy()
			for i, instr := range instrs {
				if !instr.IsDefinition() {
					continue
				}
				prefix := instr.Dest + "."
				for fact := range out {
					if strings.HasPrefix(fact, prefix) {
						delete(out, fact)
					}
				}
				out.Add(fmt.Sprintf("%s.%s.%d", instr.Dest, block, i))
			}
			return out
		},
	}
}

// binaryOps are the side-effect-free two-argument computations tracked by
// available expressions.
var binaryOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true,
	"eq": true, "lt": true, "gt": true, "le": true, "ge": true, "ne": true,
	"and": true, "or": true,
}

// AvailableExpressions tracks the binary computations guaranteed to have
// been computed, with no later write to their operands, on every path to
// each point. Merge is intersection; nothing is available at entry.
func AvailableExpressions() Analysis {
	return Analysis{
		Name:      "available",
		Direction: Forward,
		Init:      func() Value { return NewVarSet() },
		Merge:     Intersect,
		Transfer: func(block string, instrs []tac.Instruction, in Value) Value {
			out := in.(VarSet).Copy()
			local := NewVarSet()
			for _, instr := range instrs {
				if binaryOps[instr.Op] && len(instr.Args) == 2 {
					expr := instr.Op + " " + instr.Args[0] + " " + instr.Args[1]
					out.Add(expr)
					local.Add(expr)
				}
				if instr.IsDefinition() {
					for expr := range out {
						// expressions generated earlier in this block
						// survive the kill
						if local.Has(expr) {
							continue
						}
						if exprReads(expr, instr.Dest) {
							delete(out, expr)
						}
					}
				}
			}
			return out
		},
	}
}

// exprReads reports whether the rendered expression reads variable v.
func exprReads(expr string, v string) bool {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return false
	}
	return funcutil.Contains(parts[1:], v)
}
