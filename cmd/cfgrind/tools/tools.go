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

// Package tools contains utility types and functions for cfgrind tool
// frontends.
package tools

import (
	"flag"
	"fmt"
	"os"

	"github.com/cfgrind/cfgrind/analysis/config"
	"github.com/cfgrind/cfgrind/analysis/tac"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config and
// -verbose but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard error")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `cfgrind dataflow ...`, "dataflow" is the
// sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
}

// NewCommonFlags returns a parsed flag set with a given name. Returns an
// error if args are invalid. Prints cmdUsage along with flag docs as the
// --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", name, args, err)
	}
	return CommonFlags{
		FlagSet:    flags.FlagSet,
		ConfigPath: *flags.ConfigPath,
		Verbose:    *flags.Verbose,
	}, nil
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath, or the defaults when no
// path was given.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	return config.Load(configPath)
}

// LoadProgram reads the program from the first positional argument, or from
// standard input when there is none.
func LoadProgram(flags CommonFlags) (*tac.Program, error) {
	args := flags.FlagSet.Args()
	switch len(args) {
	case 0:
		return tac.Decode(os.Stdin)
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("could not open program file: %w", err)
		}
		defer f.Close()
		return tac.Decode(f)
	default:
		return nil, fmt.Errorf("expected at most one program file, got %d arguments", len(args))
	}
}

// NewLogGroup builds the logger for a sub-command, bumping the level to
// debug when -verbose is set.
func NewLogGroup(cfg *config.Config, flags CommonFlags) *config.LogGroup {
	logger := config.NewLogGroup(cfg)
	if flags.Verbose {
		logger.SetLevel(config.DebugLevel)
	}
	return logger
}
