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

// Package analysis contains the drivers that run analyses over whole
// programs, one function at a time.
package analysis

import (
	"github.com/cfgrind/cfgrind/analysis/cfg"
	"github.com/cfgrind/cfgrind/analysis/config"
	"github.com/cfgrind/cfgrind/analysis/dataflow"
	"github.com/cfgrind/cfgrind/analysis/tac"
)

// Version is the version of the cfgrind tools.
const Version = "v0.2.0"

// DataflowReport is the outcome of one dataflow analysis on one function.
// When Err is set the other fields are empty; a failure in one function
// never discards the results of the others.
type DataflowReport struct {
	Function string
	// Order lists the block names in program order, for stable reporting.
	Order  []string
	Result dataflow.Result
	Err    error
}

// RunDataflow builds each function's CFG and solves an over it. Functions
// that fail to build or converge are reported with their error; empty
// functions are skipped.
func RunDataflow(prog *tac.Program, an dataflow.Analysis, cfgs *config.Config, logger *config.LogGroup) []DataflowReport {
	var reports []DataflowReport
	for i := range prog.Functions {
		fn := &prog.Functions[i]
		g, err := cfg.Build(fn, cfgs.StrictLabels)
		if err != nil {
			logger.Errorf("could not build CFG for function %q: %v", fn.Name, err)
			reports = append(reports, DataflowReport{Function: fn.Name, Err: err})
			continue
		}
		if len(g.Names) == 0 {
			logger.Debugf("skipping empty function %q", fn.Name)
			continue
		}
		logger.Debugf("running %s on function %q (%d blocks)", an.Name, fn.Name, len(g.Names))
		result, err := dataflow.Solve(g, an, cfgs.MaxSteps)
		if err != nil {
			logger.Errorf("analysis %s failed on function %q: %v", an.Name, fn.Name, err)
			reports = append(reports, DataflowReport{Function: fn.Name, Err: err})
			continue
		}
		reports = append(reports, DataflowReport{Function: fn.Name, Order: g.Names, Result: result})
	}
	return reports
}

// GraphReport is the outcome of building one function's CFG.
type GraphReport struct {
	Function string
	Graph    *cfg.Graph
	Err      error
}

// BuildGraphs builds the control-flow graph of every non-empty function in
// prog. As with RunDataflow, one function's construction failure is confined
// to its own report.
func BuildGraphs(prog *tac.Program, strict bool, logger *config.LogGroup) []GraphReport {
	var reports []GraphReport
	for i := range prog.Functions {
		fn := &prog.Functions[i]
		g, err := cfg.Build(fn, strict)
		if err != nil {
			logger.Errorf("could not build CFG for function %q: %v", fn.Name, err)
			reports = append(reports, GraphReport{Function: fn.Name, Err: err})
			continue
		}
		if len(g.Names) == 0 {
			logger.Debugf("skipping empty function %q", fn.Name)
			continue
		}
		reports = append(reports, GraphReport{Function: fn.Name, Graph: g})
	}
	return reports
}
