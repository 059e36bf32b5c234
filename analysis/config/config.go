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

// Package config holds the tool configuration and the leveled logger built
// from it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxSteps is the default worklist step cap. It is far above what any
// monotone analysis needs on realistic inputs, and exists so an ill-behaved
// analysis fails with a non-convergence error instead of spinning.
const DefaultMaxSteps = 100000

// Config contains the analysis settings.
// If some field is not defined in the config file, it will be empty/zero in
// the struct.
type Config struct {
	sourceFile string

	// LogLevel controls the verbosity of the LogGroup built from this
	// config. See the LogLevel constants.
	LogLevel int `yaml:"log-level"`

	// MaxSteps caps the number of worklist dequeue steps per analysis run.
	// 0 disables the cap.
	MaxSteps int `yaml:"max-steps"`

	// StrictLabels makes CFG construction fail on branches to undefined
	// labels instead of silently dropping the edge.
	StrictLabels bool `yaml:"strict-labels"`
}

// NewDefault returns the configuration used when no config file is given.
func NewDefault() *Config {
	return &Config{
		LogLevel: int(InfoLevel),
		MaxSteps: DefaultMaxSteps,
	}
}

// Load reads a yaml config from filename. Missing keys keep their default
// values.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", filename, err)
	}
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level must be between %d and %d, got %d",
			ErrLevel, TraceLevel, c.LogLevel)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max-steps must be non-negative, got %d", c.MaxSteps)
	}
	return nil
}

// SourceFile returns the file the config was loaded from, if any.
func (c *Config) SourceFile() string { return c.sourceFile }
