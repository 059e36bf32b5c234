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

// Package cfg implements the front-end to the structural CFG analyses and
// the default graphviz rendering.
package cfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/cfgrind/cfgrind/analysis"
	"github.com/cfgrind/cfgrind/analysis/cfg"
	"github.com/cfgrind/cfgrind/analysis/graphops"
	"github.com/cfgrind/cfgrind/analysis/rendering"
	"github.com/cfgrind/cfgrind/cmd/cfgrind/tools"
	"github.com/cfgrind/cfgrind/internal/funcutil"
)

// Flags represents the parsed flags for the cfg sub-command.
type Flags struct {
	tools.CommonFlags
	selector string
	dotOut   string
}

const usage = `Build control-flow graphs and run structural analyses on them.

Usage:
  cfgrind cfg [-analysis <selector>] [options] [program.json]

Selectors: backedges, loops, pathlen, reducible, rpo.
Without -analysis, the control-flow graphs are rendered in DOT format.

Examples:
  % cfgrind cfg program.json | dot -Tpdf -o cfg.pdf
  % cfgrind cfg -analysis reducible program.json
`

// NewFlags creates parsed cfg sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("cfg")
	selector := flags.FlagSet.String("analysis", "", "structural analysis to run (omit for DOT output)")
	dotOut := flags.FlagSet.String("o", "", "output file for DOT rendering (default standard output)")
	tools.SetUsage(flags.FlagSet, usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command cfg with args %v: %v", args, err)
	}
	return Flags{
		CommonFlags: tools.CommonFlags{
			FlagSet:    flags.FlagSet,
			ConfigPath: *flags.ConfigPath,
			Verbose:    *flags.Verbose,
		},
		selector: *selector,
		dotOut:   *dotOut,
	}, nil
}

// Run runs the cfg sub-command with flags.
func Run(flags Flags) error {
	cfgFile, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	logger := tools.NewLogGroup(cfgFile, flags.CommonFlags)

	if flags.selector != "" && !funcutil.Contains(graphops.Selectors(), flags.selector) {
		return &graphops.UnknownSelectorError{Name: flags.selector}
	}

	prog, err := tools.LoadProgram(flags.CommonFlags)
	if err != nil {
		return err
	}
	reports := analysis.BuildGraphs(prog, cfgFile.StrictLabels, logger)

	if flags.selector == "" {
		graphs := make([]*cfg.Graph, 0, len(reports))
		for _, report := range reports {
			if report.Err == nil {
				graphs = append(graphs, report.Graph)
			}
		}
		if flags.dotOut != "" {
			return rendering.GraphvizToFile(graphs, flags.dotOut)
		}
		return rendering.WriteGraphviz(os.Stdout, graphs)
	}

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			continue
		}
		fmt.Printf("Function %s:\n", report.Function)
		printStructural(report.Graph, flags.selector)
	}
	if failed > 0 {
		return fmt.Errorf("analysis failed for %d function(s)", failed)
	}
	return nil
}

func printStructural(g *cfg.Graph, selector string) {
	entry := g.Entry()
	switch selector {
	case graphops.SelectorPathLen:
		dist := graphops.PathLengths(g, entry)
		pairs := funcutil.Map(funcutil.SortedKeys(dist), func(name string) string {
			return fmt.Sprintf("%s: %d", name, dist[name])
		})
		fmt.Printf("pathlen: %s\n", joinOrEmpty(pairs))
	case graphops.SelectorRPO:
		fmt.Printf("rpo: %s\n", strings.Join(graphops.ReversePostorder(g, entry), " "))
	case graphops.SelectorBackEdges:
		edges := funcutil.Map(graphops.BackEdges(g, entry), graphops.Edge.String)
		fmt.Printf("backedges: %s\n", joinOrEmpty(edges))
	case graphops.SelectorReducible:
		fmt.Printf("reducible: %t\n", graphops.IsReducible(g, entry))
	case graphops.SelectorLoops:
		cycles := funcutil.Map(graphops.ElementaryCycles(g), func(cycle []string) string {
			return strings.Join(append(cycle, cycle[0]), " -> ")
		})
		fmt.Printf("loops: %s\n", joinOrEmpty(cycles))
	}
}

func joinOrEmpty(items []string) string {
	if len(items) == 0 {
		return "∅"
	}
	return strings.Join(items, ", ")
}
