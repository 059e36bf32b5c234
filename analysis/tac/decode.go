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

package tac

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MissingFieldError reports a structurally malformed program: a required
// field is absent from the JSON input.
type MissingFieldError struct {
	// Field is the name of the missing field.
	Field string
	// Context locates the record the field is missing from.
	Context string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("malformed program: missing field %q in %s", e.Field, e.Context)
}

// Decode reads a JSON-carried program from r. The shape is validated as it
// is decoded: a missing "functions", "name" or "instrs" field is reported as
// a *MissingFieldError rather than surfacing later as a nil access. Numeric
// literals are kept as json.Number so that constant propagation compares and
// prints them exactly as written.
func Decode(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := unmarshalNumeric(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid program JSON: %w", err)
	}
	fnsRaw, ok := raw["functions"]
	if !ok {
		return nil, &MissingFieldError{Field: "functions", Context: "program"}
	}

	var fnRaws []map[string]json.RawMessage
	if err := unmarshalNumeric(fnsRaw, &fnRaws); err != nil {
		return nil, fmt.Errorf("invalid \"functions\" field: %w", err)
	}

	prog := &Program{Functions: make([]Function, 0, len(fnRaws))}
	for idx, fnRaw := range fnRaws {
		nameRaw, ok := fnRaw["name"]
		if !ok {
			return nil, &MissingFieldError{Field: "name", Context: fmt.Sprintf("function at index %d", idx)}
		}
		var name string
		if err := json.Unmarshal(nameRaw, &name); err != nil {
			return nil, fmt.Errorf("invalid function name at index %d: %w", idx, err)
		}

		instrsRaw, ok := fnRaw["instrs"]
		if !ok {
			return nil, &MissingFieldError{Field: "instrs", Context: fmt.Sprintf("function %q", name)}
		}
		var instrs []Instruction
		if err := unmarshalNumeric(instrsRaw, &instrs); err != nil {
			return nil, fmt.Errorf("invalid instructions in function %q: %w", name, err)
		}

		prog.Functions = append(prog.Functions, Function{Name: name, Instrs: instrs})
	}
	return prog, nil
}

// unmarshalNumeric is json.Unmarshal with numbers decoded as json.Number.
func unmarshalNumeric(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
