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

package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/embedq/pipeline"
	"github.com/poiesic/embedq/storage"
)

// Server is the HTTP front end of the embedding service.
type Server struct {
	addr     string
	pipeline *pipeline.Pipeline
	jobs     storage.JobRepository
	blobs    storage.BlobRepository
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates the HTTP server. The repositories are injected rather
// than reached through the pipeline so read-only queries never touch the
// submission path.
func NewServer(addr string, p *pipeline.Pipeline, jobs storage.JobRepository, blobs storage.BlobRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	s := &Server{
		addr:     addr,
		pipeline: p,
		jobs:     jobs,
		blobs:    blobs,
		logger:   logger,
		app:      app,
	}

	api := app.Group("/api/async/embedding")
	api.Post("/submit", s.handleSubmit)
	api.Get("/status/:id", s.handleStatus)
	api.Get("/jobs", s.handleListJobs)
	api.Get("/result/:id", s.handleResult)
	api.Get("/health", s.handleHealth)

	return s
}

// Run starts the server on the configured address and blocks until
// Shutdown is called or the listener fails.
func (s *Server) Run() error {
	s.logger.Info("starting HTTP server", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber application for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
