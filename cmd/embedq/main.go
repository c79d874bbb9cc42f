// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/embedq/ai"
	"github.com/poiesic/embedq/ai/mock"
	"github.com/poiesic/embedq/ai/openai"
	"github.com/poiesic/embedq/artifact"
	"github.com/poiesic/embedq/config"
	"github.com/poiesic/embedq/pipeline"
	"github.com/poiesic/embedq/server"
	"github.com/poiesic/embedq/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "embedq",
		Usage: "Asynchronous document embedding service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the embedding job server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to YAML config file",
						Value:   "config.yaml",
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "Path to BadgerDB database directory (overrides config)",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP listen port (overrides config)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size (overrides config)",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config)",
					},
				},
			},
			{
				Name:      "inspect",
				Usage:     "Print a job record and its artifact shape from a database",
				ArgsUsage: "<job-id>",
				Action:    inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	// Flag overrides
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("pool-size") {
		cfg.Worker.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	backend, err := badger.OpenBackend(cfg.Database.Path, cfg.Database.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	jobs := badger.NewJobRepository(backend)
	defer jobs.Close()
	blobs := badger.NewBlobRepository(backend)
	defer blobs.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	p, err := pipeline.NewPipeline(jobs, blobs, embedder,
		pipeline.WithPoolSize(cfg.Worker.PoolSize),
		pipeline.WithJobTimeout(cfg.Worker.JobTimeout()),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	if err := p.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover queued jobs: %w", err)
	}

	srv := server.NewServer(cfg.Server.Addr(), p, jobs, blobs, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// newEmbedder builds the configured embedder implementation. The mock
// provider exists for local development without an embedding service.
func newEmbedder(cfg *config.Config) (ai.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return mock.NewMockEmbedder(), nil
	default:
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(cfg.Embedding.Host),
			ai.WithEmbeddingModel(cfg.Embedding.Model),
		)
		return openai.NewEmbedder(aiConfig)
	}
}

func inspectCommand(c *cli.Context) error {
	ctx := context.Background()

	jobID := c.Args().First()
	if jobID == "" {
		return fmt.Errorf("job ID argument is required")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	jobs := badger.NewJobRepository(backend)
	defer jobs.Close()
	blobs := badger.NewBlobRepository(backend)
	defer blobs.Close()

	job, err := jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}

	fmt.Printf("ID:              %s\n", job.ID)
	fmt.Printf("Status:          %s\n", job.Status)
	fmt.Printf("Progress:        %d\n", job.Progress)
	if job.Filename != "" {
		fmt.Printf("Filename:        %s\n", job.Filename)
	}
	fmt.Printf("Input checksum:  %s\n", job.InputChecksum)
	fmt.Printf("Created:         %s\n", job.CreatedAt)
	fmt.Printf("Updated:         %s\n", job.UpdatedAt)

	if job.ErrorMessage != "" {
		fmt.Printf("Error:           %s\n", job.ErrorMessage)
	}

	if job.OutputChecksum != "" {
		fmt.Printf("Output checksum: %s\n", job.OutputChecksum)
		fmt.Printf("Model:           %s\n", job.ModelID)

		data, err := blobs.GetArtifact(ctx, job.OutputChecksum)
		if err != nil {
			return fmt.Errorf("failed to load artifact: %w", err)
		}

		count, dim, err := artifact.Shape(data)
		if err != nil {
			return fmt.Errorf("failed to read artifact: %w", err)
		}
		fmt.Printf("Artifact:        %d vectors x %d dimensions (%d bytes)\n", count, dim, len(data))
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
