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
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/embedq/ai"
	"github.com/poiesic/embedq/core"
	"github.com/poiesic/embedq/storage"
)

// Progress checkpoints reported by workers as a job moves through the
// stages of processing.
const (
	progressClaimed  = 10
	progressCleaned  = 50
	progressEmbedded = 90
	progressDone     = 100
)

const defaultJobTimeout = 5 * time.Minute

// Pipeline accepts document submissions and processes them asynchronously
// on a bounded worker pool.
type Pipeline struct {
	jobs       storage.JobRepository
	blobs      storage.BlobRepository
	embedder   ai.Embedder
	pool       *ants.Pool
	jobTimeout time.Duration
	logger     *slog.Logger

	// backlog holds job IDs in submission order until the dispatcher hands
	// them to the pool. It grows as needed so submission never blocks on
	// busy workers and order is kept at any depth.
	mu      sync.Mutex
	backlog []string
	wake    chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithJobTimeout bounds how long a single job may spend in processing
// before its worker gives up and marks it failed. Default is 5 minutes.
func WithJobTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			d = defaultJobTimeout
		}
		p.jobTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new embedding pipeline. Start must be called
// before submitted jobs are picked up.
func NewPipeline(
	jobs storage.JobRepository,
	blobs storage.BlobRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if blobs == nil {
		return nil, ErrBlobRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		jobs:       jobs,
		blobs:      blobs,
		embedder:   embedder,
		pool:       pool,
		jobTimeout: defaultJobTimeout,
		logger:     slog.Default(),
		wake:       make(chan struct{}, 1),
		closed:     make(chan struct{}),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Start launches the dispatcher that feeds queued job IDs into the worker
// pool. It returns immediately; dispatching stops when ctx is cancelled or
// the pipeline is released.
func (p *Pipeline) Start(ctx context.Context) {
	go p.dispatch(ctx)
}

// dispatch drains the backlog into the worker pool in submission order.
// Pool submission blocks when all workers are busy, which is what bounds
// concurrency while preserving claim order.
func (p *Pipeline) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.closed:
			return
		default:
		}

		id, ok := p.nextJob()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-p.closed:
				return
			case <-p.wake:
			}
			continue
		}

		if err := p.pool.Submit(func() { p.process(id) }); err != nil {
			p.logger.Error("submitting job to worker pool", "job_id", id, "err", err)
		}
	}
}

// nextJob pops the oldest backlog entry, if any.
func (p *Pipeline) nextJob() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.backlog) == 0 {
		p.backlog = nil
		return "", false
	}
	id := p.backlog[0]
	p.backlog = p.backlog[1:]
	return id, true
}

// Submit validates and stores a document, records a queued job for it, and
// returns the job record without waiting for processing. The returned
// job's progress is 0 and its status is queued.
func (p *Pipeline) Submit(ctx context.Context, content []byte, filename string) (*core.Job, error) {
	select {
	case <-p.closed:
		return nil, ErrPipelineClosed
	default:
	}

	if err := core.ValidateDocument(content); err != nil {
		return nil, err
	}

	checksum := core.ChecksumFromContent(content)
	if err := p.blobs.PutInput(ctx, checksum, content); err != nil {
		return nil, err
	}

	job := &core.Job{
		ID:            core.NewJobID(),
		Status:        core.StatusQueued,
		Progress:      0,
		Filename:      filename,
		InputChecksum: checksum,
	}
	if err := p.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	p.enqueue(job.ID)
	p.logger.Info("job submitted", "job_id", job.ID, "filename", filename, "bytes", len(content))
	return job, nil
}

// Recover re-enqueues jobs that were still queued when the process last
// stopped, oldest first. Call once after construction, before or after
// Start.
func (p *Pipeline) Recover(ctx context.Context) error {
	ids, err := p.jobs.QueuedIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		p.enqueue(id)
	}

	if len(ids) > 0 {
		p.logger.Info("recovered queued jobs", "count", len(ids))
	}
	return nil
}

// enqueue appends a job ID to the backlog and nudges the dispatcher.
func (p *Pipeline) enqueue(id string) {
	p.mu.Lock()
	p.backlog = append(p.backlog, id)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Release stops the dispatcher and shuts down the worker pool. Jobs still
// queued in the store are picked up by Recover on the next start.
func (p *Pipeline) Release() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	if p.pool != nil {
		p.pool.Release()
	}
}
