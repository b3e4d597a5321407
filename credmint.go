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

// Package credmint wires together the certificate minting service:
// identity derivation, metadata composition, address bindings, the
// request registry, transaction assembly, signing orchestration, the
// mint record store, chain verification, and the REST API.
package credmint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blinklabs-io/credmint/api"
	"github.com/blinklabs-io/credmint/binding"
	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/event"
	"github.com/blinklabs-io/credmint/identity"
	"github.com/blinklabs-io/credmint/indexer"
	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/records"
	"github.com/blinklabs-io/credmint/registry"
	"github.com/blinklabs-io/credmint/signing"
	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/verify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Service struct {
	config         Config
	db             *database.Database
	eventBus       *event.EventBus
	scheme         *identity.Scheme
	composer       *metadata.Composer
	bindings       *binding.Service
	registry       *registry.Registry
	records        *records.RecordStore
	builder        *txbuilder.Builder
	orchestrator   *signing.Orchestrator
	chain          *indexer.Client
	verifier       *verify.Service
	apiServer      *api.Api
	metricsServer  *http.Server
	tracerProvider *sdktrace.TracerProvider
}

// New creates a Service from the given config and wires up all
// components. Nothing is listening until Run is called.
func New(cfg Config) (*Service, error) {
	s := &Service{
		config: cfg,
	}
	if err := s.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if s.config.promRegistry == nil {
		s.config.promRegistry = prometheus.NewRegistry()
	}

	scheme, err := identity.NewScheme(
		s.config.policyScript,
		s.config.policyScriptTag,
	)
	if err != nil {
		return nil, fmt.Errorf("create identity scheme: %w", err)
	}
	s.scheme = scheme
	s.composer = metadata.NewComposer(s.config.maxMetadataBytes)

	db, err := database.New(&database.Config{
		DataDir:      s.config.dataDir,
		Logger:       s.config.logger,
		PromRegistry: s.config.promRegistry,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.db = db

	s.eventBus = event.NewEventBus(s.config.promRegistry)
	s.bindings = binding.New(binding.Config{
		Store:   db,
		Courses: db,
		Logger:  s.config.logger,
	})
	s.registry = registry.New(registry.Config{
		Store:        db,
		EventBus:     s.eventBus,
		Logger:       s.config.logger,
		PromRegistry: s.config.promRegistry,
	})
	s.records = records.New(records.Config{
		Store:    db,
		EventBus: s.eventBus,
		Logger:   s.config.logger,
	})

	builder, err := txbuilder.New(txbuilder.Config{
		Scheme:            scheme,
		Composer:          s.composer,
		Records:           s.records,
		Logger:            s.config.logger,
		PromRegistry:      s.config.promRegistry,
		RequireCollateral: s.config.requireCollateral,
		MaxBatchSize:      s.config.maxBatchSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create transaction builder: %w", err)
	}
	s.builder = builder
	s.orchestrator = signing.New(signing.Config{
		Logger:       s.config.logger,
		PromRegistry: s.config.promRegistry,
	})

	s.chain = indexer.New(indexer.Config{
		BaseUrl:   s.config.indexerUrl,
		ProjectId: s.config.indexerProjectId,
		Logger:    s.config.logger,
	})
	s.verifier = verify.New(verify.Config{
		Chain:   s.chain,
		Records: s.records,
		Logger:  s.config.logger,
	})

	s.apiServer = api.New(
		api.Config{ListenAddress: s.config.apiListenAddress},
		s,
		s.config.logger,
	)
	return s, nil
}

// PolicyIdHex returns the hex policy id all certificates are issued
// under
func (s *Service) PolicyIdHex() string {
	return s.builder.PolicyIdHex()
}

// Run starts the service and blocks until the context is cancelled
// or a fatal error occurs.
func (s *Service) Run(ctx context.Context) error {
	if s.config.tracing {
		if err := s.setupTracing(ctx); err != nil {
			return err
		}
	}
	if s.config.metricsPort > 0 {
		s.startMetricsListener()
	}
	if err := s.apiServer.Start(ctx); err != nil {
		return err
	}
	s.config.logger.Info(
		"service started",
		"component", "credmint",
		"network", s.config.network,
		"policy_id", s.PolicyIdHex(),
	)

	<-ctx.Done()
	return s.Stop()
}

// Stop shuts the service down: the API stops accepting work first,
// then the event bus drains, then storage and tracing close.
func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		s.config.shutdownTimeout,
	)
	defer cancel()

	var errs []error
	if err := s.apiServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		s.metricsServer = nil
	}
	s.eventBus.Stop()
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.shutdownTracing(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) startMetricsListener() {
	mux := http.NewServeMux()
	registry, ok := s.config.promRegistry.(*prometheus.Registry)
	if !ok {
		s.config.logger.Warn(
			"metrics listener disabled: registerer is not gatherable",
			"component", "credmint",
		)
		return
	}
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(
			registry,
			promhttp.HandlerOpts{},
		),
	)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.metricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.metricsServer = server
	go func() {
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.config.logger.Error(
				"metrics listener error",
				"component", "credmint",
				"error", err,
			)
		}
	}()
	s.config.logger.Info(
		"metrics listener started on " + server.Addr,
		"component", "credmint",
	)
}
