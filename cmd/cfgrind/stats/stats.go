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

// Package stats implements the front-end printing control-flow graph
// statistics.
package stats

import (
	"fmt"

	"github.com/cfgrind/cfgrind/analysis"
	"github.com/cfgrind/cfgrind/analysis/graphops"
	"github.com/cfgrind/cfgrind/cmd/cfgrind/tools"
)

// Usage is the help message of the stats sub-command.
const Usage = `Print statistics about the control-flow graphs of a program.

Usage:
  cfgrind stats [options] [program.json]
`

// Run runs the stats sub-command with flags.
func Run(flags tools.CommonFlags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	logger := tools.NewLogGroup(cfg, flags)

	prog, err := tools.LoadProgram(flags)
	if err != nil {
		return err
	}

	var total graphops.Stats
	failed := 0
	for _, report := range analysis.BuildGraphs(prog, cfg.StrictLabels, logger) {
		if report.Err != nil {
			failed++
			continue
		}
		s := graphops.ComputeStats(report.Graph)
		fmt.Printf("%s: %d blocks, %d edges, %d instructions, %d back edge(s), %d loop(s), reducible=%t\n",
			report.Function, s.Blocks, s.Edges, s.Instructions, s.BackEdges, s.Loops, s.Reducible)
		total.Blocks += s.Blocks
		total.Edges += s.Edges
		total.Instructions += s.Instructions
		total.BackEdges += s.BackEdges
		total.Loops += s.Loops
	}
	fmt.Printf("total: %d blocks, %d edges, %d instructions, %d back edge(s), %d loop(s)\n",
		total.Blocks, total.Edges, total.Instructions, total.BackEdges, total.Loops)
	if failed > 0 {
		return fmt.Errorf("statistics failed for %d function(s)", failed)
	}
	return nil
}
