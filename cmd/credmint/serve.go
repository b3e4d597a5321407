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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/credmint"
	"github.com/blinklabs-io/credmint/identity"
	"github.com/blinklabs-io/credmint/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	if err := serve(cfg, logger); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	policyScript, err := os.ReadFile(cfg.PolicyScriptFile)
	if err != nil {
		return fmt.Errorf("reading policy script: %w", err)
	}
	scriptTag, err := scriptTypeTag(cfg.PolicyScriptType)
	if err != nil {
		return err
	}
	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("parsing shutdown timeout: %w", err)
	}

	service, err := credmint.New(credmint.NewConfig(
		credmint.WithLogger(logger),
		credmint.WithDatabasePath(cfg.DatabasePath),
		credmint.WithNetwork(cfg.Network),
		credmint.WithPolicyScript(policyScript, scriptTag),
		credmint.WithIndexer(cfg.IndexerUrl, cfg.IndexerProjectId),
		credmint.WithApiListenAddress(cfg.ApiListenAddress),
		credmint.WithMetricsPort(cfg.MetricsPort),
		credmint.WithMaxMetadataBytes(cfg.MaxMetadataBytes),
		credmint.WithMaxBatchSize(cfg.MaxBatchSize),
		credmint.WithRequireCollateral(cfg.RequireCollateral),
		credmint.WithPrometheusRegistry(prometheus.NewRegistry()),
		credmint.WithTracing(cfg.Tracing),
		credmint.WithTracingStdout(cfg.TracingStdout),
		credmint.WithShutdownTimeout(shutdownTimeout),
	))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	return service.Run(ctx)
}

func scriptTypeTag(scriptType string) (uint8, error) {
	switch scriptType {
	case "native", "":
		return identity.ScriptTagNative, nil
	case "plutusv1":
		return identity.ScriptTagPlutusV1, nil
	case "plutusv2":
		return identity.ScriptTagPlutusV2, nil
	case "plutusv3":
		return identity.ScriptTagPlutusV3, nil
	default:
		return 0, fmt.Errorf(
			"unknown policy script type: %s",
			scriptType,
		)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the certificate minting service",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
}
