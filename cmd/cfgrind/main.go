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

package main

import (
	"fmt"
	"os"

	"github.com/cfgrind/cfgrind/analysis"
	cfgcmd "github.com/cfgrind/cfgrind/cmd/cfgrind/cfg"
	"github.com/cfgrind/cfgrind/cmd/cfgrind/dataflow"
	"github.com/cfgrind/cfgrind/cmd/cfgrind/stats"
	"github.com/cfgrind/cfgrind/cmd/cfgrind/tools"
)

const usage = `cfgrind: control-flow graph and dataflow analysis tools
Usage:
  cfgrind [tool] [options] [program.json]
Tools:
  - dataflow: runs a worklist dataflow analysis (defined, live, cprop, reaching, available)
  - cfg: runs a structural analysis on the control-flow graphs, or renders them in DOT format
  - stats: prints statistics about the control-flow graphs
Examples:
  Run live-variable analysis: cfgrind dataflow -analysis live program.json
  Render the CFGs: cfgrind cfg program.json`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "dataflow":
		flags, err := dataflow.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := dataflow.Run(flags); err != nil {
			errExit(err)
		}
	case "cfg":
		flags, err := cfgcmd.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := cfgcmd.Run(flags); err != nil {
			errExit(err)
		}
	case "stats":
		flags, err := tools.NewCommonFlags("stats", args, stats.Usage)
		if err != nil {
			errExit(err)
		}
		if err := stats.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unknown subcommand %q\n%s\n", cmd, usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
