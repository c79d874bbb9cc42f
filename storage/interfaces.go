package storage

import (
	"context"

	"github.com/poiesic/embedq/core"
)

// Mutator applies an in-place change to a job record inside an update
// transaction. Returning an error aborts the update without writing.
type Mutator func(job *core.Job) error

// Page is one slice of a job listing.
type Page struct {
	Items []*core.Job
	Total int // total records matching the filter, across all pages
	Page  int // 1-based page number as requested
	Size  int
	Pages int // ceil(Total/Size), minimum 1
}

// JobRepository provides operations for managing job records.
// Implementations must be thread-safe and support concurrent access.
type JobRepository interface {
	// Create inserts a new job record. The job's ID must be unique across
	// the store's lifetime; inserting an existing ID returns ErrDuplicateKey.
	// Sets CreatedAt/UpdatedAt if not already set.
	Create(ctx context.Context, job *core.Job) error

	// Get retrieves a job by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*core.Job, error)

	// Update applies an atomic, isolated mutation to a job. Status
	// transitions are validated against the state machine and progress may
	// never decrease. Concurrent updates to the same job are serialized;
	// updates to different jobs proceed independently.
	// Returns the updated record.
	Update(ctx context.Context, id string, mutate Mutator) (*core.Job, error)

	// Claim atomically transitions a job from queued to processing, setting
	// its progress to the given checkpoint. Returns false with a nil error
	// when the job is not claimable (already claimed or terminal), which
	// guarantees at-most-one worker processes a given job.
	// Returns ErrNotFound if the job does not exist.
	Claim(ctx context.Context, id string, progress int) (bool, error)

	// List returns jobs ordered by creation time descending (newest first),
	// optionally filtered by status (empty filter matches all), sliced into
	// the requested 1-based page. A page beyond the last returns empty items
	// rather than an error.
	List(ctx context.Context, filter core.Status, page, size int) (*Page, error)

	// QueuedIDs returns the IDs of all queued jobs, oldest first.
	// Used to recover unprocessed work after a restart.
	QueuedIDs(ctx context.Context) ([]string, error)

	// Close releases resources held by the repository.
	Close() error
}

// BlobRepository stores content-addressed byte blobs: submitted input
// documents and serialized embedding artifacts, both keyed by checksum.
type BlobRepository interface {
	// PutInput stores a submitted document under its checksum.
	// Storing the same checksum twice is a no-op (content dedup).
	PutInput(ctx context.Context, checksum string, data []byte) error

	// GetInput retrieves a stored document. Returns ErrNotFound if absent.
	GetInput(ctx context.Context, checksum string) ([]byte, error)

	// PutArtifact stores a serialized embedding artifact under its checksum.
	PutArtifact(ctx context.Context, checksum string, data []byte) error

	// GetArtifact retrieves a stored artifact. Returns ErrNotFound if absent.
	GetArtifact(ctx context.Context, checksum string) ([]byte, error)

	// Close releases resources held by the repository.
	Close() error
}
