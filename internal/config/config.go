// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "credmint.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	Network           string `yaml:"network"`
	DatabasePath      string `yaml:"databasePath"      split_words:"true"`
	PolicyScriptFile  string `yaml:"policyScriptFile"  split_words:"true"`
	PolicyScriptType  string `yaml:"policyScriptType"  split_words:"true"`
	IndexerUrl        string `yaml:"indexerUrl"        split_words:"true"`
	IndexerProjectId  string `yaml:"indexerProjectId"  split_words:"true"`
	ApiListenAddress  string `yaml:"apiListenAddress"  split_words:"true"`
	ShutdownTimeout   string `yaml:"shutdownTimeout"   split_words:"true"`
	MetricsPort       uint   `yaml:"metricsPort"       split_words:"true"`
	MaxMetadataBytes  int    `yaml:"maxMetadataBytes"  split_words:"true"`
	MaxBatchSize      int    `yaml:"maxBatchSize"      split_words:"true"`
	RequireCollateral bool   `yaml:"requireCollateral" split_words:"true"`
	Tracing           bool   `yaml:"tracing"`
	TracingStdout     bool   `yaml:"tracingStdout"     split_words:"true"`
}

var globalConfig = &Config{
	Network:          "preprod",
	DatabasePath:     ".credmint",
	PolicyScriptType: "native",
	ApiListenAddress: ":8080",
	MetricsPort:      12798,
	ShutdownTimeout:  DefaultShutdownTimeout,
}

// LoadConfig reads the YAML config file (if any) and applies
// CREDMINT_* environment variable overrides on top.
func LoadConfig(configFile string) (*Config, error) {
	// Check well-known locations when no file is given
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(
				homeDir, ".credmint", "credmint.yaml",
			)
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/credmint/credmint.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Environment variables override config file values
	if err := envconfig.Process("credmint", globalConfig); err != nil {
		return nil, fmt.Errorf(
			"error processing environment: %w",
			err,
		)
	}
	return globalConfig, nil
}

// GetConfig returns the current config
func GetConfig() *Config {
	return globalConfig
}
