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

package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cfgrind/cfgrind/analysis/cfg"
)

func TestWriteGraphviz(t *testing.T) {
	g := cfg.FromEdges("main", []string{"b0", "loop.header"}, nil,
		map[string][]string{
			"b0":          {"loop.header"},
			"loop.header": {"loop.header"},
		})
	var b strings.Builder
	if err := WriteGraphviz(&b, []*cfg.Graph{g}); err != nil {
		t.Fatalf("WriteGraphviz failed: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"digraph program {",
		"subgraph cluster_main {",
		`label = "main";`,
		`"b0" [label="b0"];`,
		`"loop_header" [label="loop.header"];`,
		`"b0" -> "loop_header";`,
		`"loop_header" -> "loop_header";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("output must close the digraph:\n%s", out)
	}
}

func TestWriteGraphvizMultipleFunctions(t *testing.T) {
	a := cfg.FromEdges("first", []string{"b0"}, nil, nil)
	b := cfg.FromEdges("second", []string{"b0"}, nil, nil)
	var out strings.Builder
	if err := WriteGraphviz(&out, []*cfg.Graph{a, b}); err != nil {
		t.Fatalf("WriteGraphviz failed: %v", err)
	}
	if !strings.Contains(out.String(), "cluster_first") || !strings.Contains(out.String(), "cluster_second") {
		t.Errorf("each function must get its own cluster:\n%s", out.String())
	}
}

func TestWriteGraphvizShowsDroppedEdgeTargets(t *testing.T) {
	// A successor with no block of its own still appears as a node.
	g := cfg.FromEdges("main", []string{"b0"}, nil,
		map[string][]string{"b0": {"ghost"}})
	var b strings.Builder
	if err := WriteGraphviz(&b, []*cfg.Graph{g}); err != nil {
		t.Fatalf("WriteGraphviz failed: %v", err)
	}
	if !strings.Contains(b.String(), `"ghost" [label="ghost"];`) {
		t.Errorf("successor-only node missing:\n%s", b.String())
	}
}

func TestGraphvizToFile(t *testing.T) {
	g := cfg.FromEdges("main", []string{"b0"}, nil, nil)
	path := filepath.Join(t.TempDir(), "out.dot")
	if err := GraphvizToFile([]*cfg.Graph{g}, path); err != nil {
		t.Fatalf("GraphvizToFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read rendered file: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph program {") {
		t.Errorf("unexpected file contents:\n%s", data)
	}
}
