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
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeLoopProgram(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "loop.json"))
	if err != nil {
		t.Fatalf("failed to open testdata: %v", err)
	}
	defer f.Close()

	prog, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected one function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" {
		t.Errorf("expected function main, got %q", fn.Name)
	}
	if len(fn.Instrs) != 11 {
		t.Fatalf("expected 11 records, got %d", len(fn.Instrs))
	}

	first := fn.Instrs[0]
	if first.Op != OpConst || first.Dest != "i" {
		t.Errorf("unexpected first instruction: %+v", first)
	}
	if first.Value != json.Number("0") {
		t.Errorf("literals must decode as json.Number, got %T %v", first.Value, first.Value)
	}
	if !first.IsDefinition() || first.IsLabel() || first.IsTerminator() {
		t.Errorf("const must classify as a definition only: %+v", first)
	}

	marker := fn.Instrs[2]
	if !marker.IsLabel() || marker.Label != "loop" {
		t.Errorf("expected label marker loop, got %+v", marker)
	}

	branch := fn.Instrs[4]
	if !branch.IsTerminator() || len(branch.Labels) != 2 {
		t.Errorf("br must terminate with two labels, got %+v", branch)
	}
}

func TestDecodeMissingFunctions(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"version": 1}`))
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "functions" {
		t.Errorf("error should name the functions field, got %q", missing.Field)
	}
}

func TestDecodeMissingName(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"functions": [{"instrs": []}]}`))
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "name" || !strings.Contains(missing.Context, "index 0") {
		t.Errorf("error should locate the nameless function: %+v", missing)
	}
}

func TestDecodeMissingInstrs(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"functions": [{"name": "f"}]}`))
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "instrs" || !strings.Contains(missing.Context, `"f"`) {
		t.Errorf("error should name the function missing its body: %+v", missing)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"functions": `)); err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func TestDecodeEmptyFunctionList(t *testing.T) {
	prog, err := Decode(strings.NewReader(`{"functions": []}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(prog.Functions) != 0 {
		t.Errorf("expected no functions, got %d", len(prog.Functions))
	}
}
