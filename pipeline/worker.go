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

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/embedq/artifact"
	"github.com/poiesic/embedq/clean"
	"github.com/poiesic/embedq/core"
)

// process runs one job from claim to terminal state. It is executed on a
// pool worker goroutine.
func (p *Pipeline) process(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	claimed, err := p.jobs.Claim(ctx, id, progressClaimed)
	if err != nil {
		p.logger.Error("claiming job", "job_id", id, "err", err)
		return
	}
	if !claimed {
		// Another worker got here first, or the job already finished.
		p.logger.Debug("job not claimable, skipping", "job_id", id)
		return
	}

	start := time.Now()
	if err := p.run(ctx, id); err != nil {
		p.fail(id, err)
		return
	}

	p.logger.Info("job completed", "job_id", id, "duration", time.Since(start))
}

// run executes the processing stages for a claimed job. A panic in any
// stage is converted into an error so a bad document cannot take down the
// worker pool.
func (p *Pipeline) run(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during processing: %v", r)
		}
	}()

	job, err := p.jobs.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading job record: %w", err)
	}

	raw, err := p.blobs.GetInput(ctx, job.InputChecksum)
	if err != nil {
		return fmt.Errorf("loading input document: %w", err)
	}

	chunks := clean.Lines(string(raw))
	if len(chunks) == 0 {
		// A document that cleans to nothing still produces one chunk so the
		// job completes with a well-formed artifact.
		chunks = []string{" "}
	}
	if _, err = p.jobs.Update(ctx, id, setProgress(progressCleaned)); err != nil {
		return fmt.Errorf("recording cleaning progress: %w", err)
	}

	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch. expected %d, received %d", len(chunks), len(vectors))
	}
	if _, err = p.jobs.Update(ctx, id, setProgress(progressEmbedded)); err != nil {
		return fmt.Errorf("recording embedding progress: %w", err)
	}

	data, err := artifact.Encode(vectors)
	if err != nil {
		return fmt.Errorf("serializing result: %w", err)
	}
	outputChecksum := core.ChecksumFromContent(data)
	if err := p.blobs.PutArtifact(ctx, outputChecksum, data); err != nil {
		return fmt.Errorf("storing artifact: %w", err)
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	_, err = p.jobs.Update(ctx, id, func(j *core.Job) error {
		j.Status = core.StatusDone
		j.Progress = progressDone
		j.OutputChecksum = outputChecksum
		j.ChunkCount = len(vectors)
		j.VectorDim = dim
		j.ModelID = p.embedder.ModelID()
		return nil
	})
	if err != nil {
		return fmt.Errorf("finalizing job: %w", err)
	}
	return nil
}

// fail records a terminal failure with a diagnostic message. It uses a
// fresh context because the job's processing deadline may already have
// expired.
func (p *Pipeline) fail(id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := p.jobs.Update(ctx, id, func(j *core.Job) error {
		j.Status = core.StatusFailed
		j.ErrorMessage = cause.Error()
		return nil
	})
	if err != nil {
		p.logger.Error("marking job failed", "job_id", id, "cause", cause, "err", err)
		return
	}

	p.logger.Warn("job failed", "job_id", id, "err", cause)
}

func setProgress(progress int) func(*core.Job) error {
	return func(j *core.Job) error {
		j.Progress = progress
		return nil
	}
}
