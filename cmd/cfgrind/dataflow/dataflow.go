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

// Package dataflow implements the front-end to the worklist dataflow
// analyses.
package dataflow

import (
	"fmt"
	"os"

	"github.com/cfgrind/cfgrind/analysis"
	"github.com/cfgrind/cfgrind/analysis/dataflow"
	"github.com/cfgrind/cfgrind/cmd/cfgrind/tools"
	"github.com/cfgrind/cfgrind/internal/formatutil"
)

// Flags represents the parsed flags for the dataflow sub-command.
type Flags struct {
	tools.CommonFlags
	analysisName string
}

const usage = `Run a dataflow analysis over a three-address program.

Usage:
  cfgrind dataflow -analysis <name> [options] [program.json]

The program is read from the file argument, or from standard input when no
file is given. Valid analysis names: available, cprop, defined, live,
reaching.

Examples:
  % cfgrind dataflow -analysis live program.json
  % cfgrind dataflow -analysis cprop < program.json
`

// NewFlags creates parsed dataflow sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("dataflow")
	analysisName := flags.FlagSet.String("analysis", "", "name of the dataflow analysis to run")
	tools.SetUsage(flags.FlagSet, usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command dataflow with args %v: %v", args, err)
	}
	return Flags{
		CommonFlags: tools.CommonFlags{
			FlagSet:    flags.FlagSet,
			ConfigPath: *flags.ConfigPath,
			Verbose:    *flags.Verbose,
		},
		analysisName: *analysisName,
	}, nil
}

// Run runs the dataflow analysis with flags. Results for every function that
// analyzed cleanly are printed even when some functions fail.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	logger := tools.NewLogGroup(cfg, flags.CommonFlags)

	registry := dataflow.Catalog()
	an, err := dataflow.Lookup(registry, flags.analysisName)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading program")+"\n")
	prog, err := tools.LoadProgram(flags.CommonFlags)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Analyzing")+"\n")
	reports := analysis.RunDataflow(prog, an, cfg, logger)

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			continue
		}
		if len(reports) > 1 {
			fmt.Printf("Function %s:\n", report.Function)
		}
		for _, block := range report.Order {
			fmt.Printf("%s:\n", block)
			fmt.Printf("  in:  %s\n", report.Result.In[block])
			fmt.Printf("  out: %s\n", report.Result.Out[block])
		}
	}
	if failed > 0 {
		return fmt.Errorf("analysis failed for %d function(s)", failed)
	}
	return nil
}
