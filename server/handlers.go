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
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/embedq/core"
	"github.com/poiesic/embedq/storage"
)

// handleSubmit accepts a document and enqueues an embedding job for it.
// Returns 201 with the queued job record.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	content, filename, err := readDocument(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	job, err := s.pipeline.Submit(c.Context(), content, filename)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("submitting job", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to submit job"})
	}

	return c.Status(fiber.StatusCreated).JSON(newJobResponse(job))
}

// readDocument extracts the submitted document from either a multipart
// "file" part or the raw request body (with an optional ?filename= query).
func readDocument(c *fiber.Ctx) ([]byte, string, error) {
	header, err := c.FormFile("file")
	if err == nil {
		f, err := header.Open()
		if err != nil {
			return nil, "", fmt.Errorf("opening uploaded file: %w", err)
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fmt.Errorf("reading uploaded file: %w", err)
		}
		return content, header.Filename, nil
	}

	body := c.Body()
	content := make([]byte, len(body))
	copy(content, body)
	return content, c.Query("filename"), nil
}

// handleStatus returns the current state of one job.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	job, err := s.jobs.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "job not found"})
		}
		s.logger.Error("loading job", "job_id", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load job"})
	}

	return c.JSON(newJobResponse(job))
}

// maxPageSize bounds how many jobs a single listing request may ask for.
const maxPageSize = 100

// handleListJobs returns one page of jobs, newest first, optionally
// filtered by status.
func (s *Server) handleListJobs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	if page < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "page must be at least 1"})
	}
	if size < 1 || size > maxPageSize {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: fmt.Sprintf("size must be between 1 and %d", maxPageSize),
		})
	}

	var filter core.Status
	if raw := c.Query("status"); raw != "" {
		filter = core.Status(raw)
		if err := core.ValidateStatus(filter); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	result, err := s.jobs.List(c.Context(), filter, page, size)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("listing jobs", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list jobs"})
	}

	return c.JSON(newJobListResponse(result))
}

// handleResult serves the finished embedding artifact as a binary download.
// Unfinished jobs answer 202 with the current progress so clients can poll
// this endpoint alone.
func (s *Server) handleResult(c *fiber.Ctx) error {
	id := c.Params("id")

	job, err := s.jobs.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "job not found"})
		}
		s.logger.Error("loading job", "job_id", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load job"})
	}

	switch {
	case job.Status == core.StatusFailed:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: job.ErrorMessage})
	case job.Status != core.StatusDone:
		return c.Status(fiber.StatusAccepted).JSON(PendingResponse{
			ID:       job.ID,
			Status:   string(job.Status),
			Progress: job.Progress,
		})
	}

	data, err := s.blobs.GetArtifact(c.Context(), job.OutputChecksum)
	if err != nil {
		s.logger.Error("loading artifact", "job_id", id, "checksum", job.OutputChecksum, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load artifact"})
	}

	c.Set(fiber.HeaderContentType, "application/octet-stream")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=embedding_%s.blob", job.ID))
	c.Set("X-Chunk-Count", strconv.Itoa(job.ChunkCount))
	c.Set("X-Vector-Dim", strconv.Itoa(job.VectorDim))
	c.Set("X-Model-Id", job.ModelID)
	c.Set("X-Input-Checksum", job.InputChecksum)
	c.Set("X-Output-Checksum", job.OutputChecksum)
	return c.Send(data)
}

// handleHealth is a liveness check.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
