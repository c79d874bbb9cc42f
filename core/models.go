package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Status represents the lifecycle state of a job.
// Transitions are one-directional: queued -> processing -> done | failed.
type Status string

const (
	// StatusQueued is the initial state of every submitted job.
	StatusQueued Status = "queued"
	// StatusProcessing means a worker has claimed the job.
	StatusProcessing Status = "processing"
	// StatusDone is the terminal state of a successfully embedded job.
	StatusDone Status = "done"
	// StatusFailed is the terminal state of a job whose pipeline errored.
	StatusFailed Status = "failed"
)

// IsTerminal reports whether the status is done or failed.
// Terminal jobs are frozen: no further transitions or progress updates.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Job represents a single submitted document's path through cleaning,
// embedding, and result retrieval. The job store owns the canonical record;
// workers mutate it only through the store's update operation.
type Job struct {
	ID            string
	Status        Status
	Progress      int    // 0-100, monotonically non-decreasing
	Filename      string // as submitted, may be empty
	InputChecksum string
	// Result shape, populated only when Status == StatusDone.
	OutputChecksum string // also the artifact blob key
	ChunkCount     int
	VectorDim      int
	ModelID        string
	// Populated only when Status == StatusFailed.
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewJobID generates a fresh opaque job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// ChecksumFromContent computes a content-derived fingerprint using BLAKE2b-256.
// Identical content always produces the identical checksum, which makes it
// usable as a dedup key for stored blobs.
func ChecksumFromContent(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
