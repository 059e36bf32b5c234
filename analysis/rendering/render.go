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

// Package rendering writes graphviz representations of control-flow graphs.
package rendering

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cfgrind/cfgrind/analysis/cfg"
	"github.com/cfgrind/cfgrind/internal/funcutil"
)

// WriteGraphviz writes a graphviz representation of the control-flow graphs
// to w, one cluster per function.
func WriteGraphviz(w io.Writer, graphs []*cfg.Graph) error {
	if _, err := fmt.Fprintf(w, "digraph program {\n  rankdir=TB;\n  node [shape=box];\n"); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	for _, g := range graphs {
		if err := writeCluster(w, g); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "}\n"); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

func writeCluster(w io.Writer, g *cfg.Graph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "  subgraph cluster_%s {\n", escape(g.FuncName))
	fmt.Fprintf(&b, "    label = %q;\n", g.FuncName)

	// Node set is keys plus successors, so dropped-edge targets still show
	// up when strict label checking is off.
	nodes := map[string]bool{}
	for _, name := range g.Names {
		nodes[name] = true
		for _, succ := range g.Succs[name] {
			nodes[succ] = true
		}
	}
	for _, node := range funcutil.SortedKeys(nodes) {
		fmt.Fprintf(&b, "    %q [label=%q];\n", escape(node), node)
	}
	for _, name := range g.Names {
		for _, succ := range g.Succs[name] {
			fmt.Fprintf(&b, "    %q -> %q;\n", escape(name), escape(succ))
		}
	}
	b.WriteString("  }\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// GraphvizToFile renders the graphs into filename.
func GraphvizToFile(graphs []*cfg.Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	return WriteGraphviz(f, graphs)
}

// escape rewrites a block name into a graphviz-safe identifier.
func escape(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
