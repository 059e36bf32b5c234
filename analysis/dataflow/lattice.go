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

// Package dataflow implements a generic worklist fixed-point solver over
// control-flow graphs, and the catalog of analyses that instantiate it.
package dataflow

import (
	"fmt"
	"strings"

	"github.com/cfgrind/cfgrind/internal/funcutil"
)

// Value is a lattice value tracked per block by an analysis. Values must be
// comparable for equality, so the solver can detect convergence, and must
// render themselves for reporting: set kinds as sorted comma-joined members,
// mapping kinds as sorted "key: value" pairs, both printing "∅" when empty.
type Value interface {
	Equal(other Value) bool
	String() string
}

// Empty is the rendering of an empty set or mapping value.
const Empty = "∅"

// VarSet is a set-kind lattice value over identifiers.
type VarSet map[string]struct{}

// NewVarSet returns a set containing elems.
func NewVarSet(elems ...string) VarSet {
	s := make(VarSet, len(elems))
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

// Add inserts e into the set.
func (s VarSet) Add(e string) { s[e] = struct{}{} }

// Has reports membership of e.
func (s VarSet) Has(e string) bool {
	_, ok := s[e]
	return ok
}

// Copy returns an independent copy of the set.
func (s VarSet) Copy() VarSet {
	c := make(VarSet, len(s))
	for e := range s {
		c[e] = struct{}{}
	}
	return c
}

// Equal reports whether other is a VarSet with the same members.
func (s VarSet) Equal(other Value) bool {
	o, ok := other.(VarSet)
	if !ok || len(s) != len(o) {
		return false
	}
	for e := range s {
		if !o.Has(e) {
			return false
		}
	}
	return true
}

func (s VarSet) String() string {
	if len(s) == 0 {
		return Empty
	}
	return strings.Join(funcutil.SortedKeys(s), ", ")
}

// Union merges set values by set union. An empty input yields the empty set.
func Union(values []Value) Value {
	out := NewVarSet()
	for _, v := range values {
		for e := range v.(VarSet) {
			out.Add(e)
		}
	}
	return out
}

// Intersect merges set values by set intersection. The empty input yields
// the empty set, an explicit base case rather than a universal set.
func Intersect(values []Value) Value {
	if len(values) == 0 {
		return NewVarSet()
	}
	out := values[0].(VarSet).Copy()
	for _, v := range values[1:] {
		next := v.(VarSet)
		for e := range out {
			if !next.Has(e) {
				delete(out, e)
			}
		}
	}
	return out
}

// ConstVal is one entry of a constant-propagation mapping: either a known
// literal or the unknown mark.
type ConstVal struct {
	Lit     interface{}
	Unknown bool
}

// Known returns a ConstVal holding lit.
func Known(lit interface{}) ConstVal { return ConstVal{Lit: lit} }

// UnknownVal marks a variable whose value cannot be a single constant.
var UnknownVal = ConstVal{Unknown: true}

func (c ConstVal) String() string {
	if c.Unknown {
		return "?"
	}
	return fmt.Sprintf("%v", c.Lit)
}

func (c ConstVal) equal(o ConstVal) bool {
	if c.Unknown || o.Unknown {
		return c.Unknown == o.Unknown
	}
	return c.Lit == o.Lit
}

// ConstMap is a mapping-kind lattice value from variable name to
// constant-or-unknown, used by constant propagation.
type ConstMap map[string]ConstVal

// NewConstMap returns an empty mapping.
func NewConstMap() ConstMap { return make(ConstMap) }

// Copy returns an independent copy of the mapping.
func (m ConstMap) Copy() ConstMap {
	c := make(ConstMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Equal reports whether other is a ConstMap with the same entries.
func (m ConstMap) Equal(other Value) bool {
	o, ok := other.(ConstMap)
	if !ok || len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.equal(ov) {
			return false
		}
	}
	return true
}

func (m ConstMap) String() string {
	if len(m) == 0 {
		return Empty
	}
	pairs := funcutil.Map(funcutil.SortedKeys(m), func(k string) string {
		return fmt.Sprintf("%s: %s", k, m[k])
	})
	return strings.Join(pairs, ", ")
}

// MergeConstants merges constant mappings. A variable absent from some input
// contributes nothing from that input; it becomes unknown only on an
// explicit unknown mark or on disagreeing constants.
func MergeConstants(values []Value) Value {
	out := NewConstMap()
	for _, v := range values {
		for name, val := range v.(ConstMap) {
			switch prev, seen := out[name]; {
			case val.Unknown:
				out[name] = UnknownVal
			case !seen:
				out[name] = val
			case !prev.equal(val):
				out[name] = UnknownVal
			}
		}
	}
	return out
}
