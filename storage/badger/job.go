package badger

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/embedq/core"
	"github.com/poiesic/embedq/storage"
)

// updateRetries bounds how often an update is replayed after a write conflict
// on the same job before giving up with storage.ErrConflict.
const updateRetries = 5

// maxListAlloc caps List's result preallocation. Larger pages still work,
// the slice just grows as records arrive.
const maxListAlloc = 1024

// JobRepository implements storage.JobRepository for BadgerDB.
//
// Per-job isolation relies on badger's per-key conflict detection: two
// transactions touching the same job collide on commit, while transactions on
// different jobs never serialize against each other.
type JobRepository struct {
	backend *Backend
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) *JobRepository {
	return &JobRepository{backend: backend}
}

// Close releases repository resources.
func (r *JobRepository) Close() error {
	return nil
}

// Create inserts a new job record and its creation-time index entry.
func (r *JobRepository) Create(ctx context.Context, job *core.Job) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.ID)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := time.Now().UTC()
		if job.CreatedAt.IsZero() {
			job.CreatedAt = now
		}
		job.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}
		createdKey := makeJobCreatedKey(job.CreatedAt, job.ID)
		if err := tx.Set(createdKey, []byte(job.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a job record by ID.
func (r *JobRepository) Get(ctx context.Context, id string) (*core.Job, error) {
	var job *core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		job, err = r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Update applies an atomic mutation to one job record.
//
// The mutation is validated before it is written: status changes must follow
// the state machine and progress may never decrease. ID and CreatedAt are
// immutable regardless of what the mutator does. Conflicting concurrent
// updates are replayed a bounded number of times.
func (r *JobRepository) Update(ctx context.Context, id string, mutate storage.Mutator) (*core.Job, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		var updated *core.Job
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			old, err := r.readJob(tx, makeJobKey(id))
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			job := *old
			if err := mutate(&job); err != nil {
				return err
			}
			job.ID = old.ID
			job.CreatedAt = old.CreatedAt

			if err := core.ValidateTransition(old.Status, job.Status); err != nil {
				return err
			}
			if job.Progress < old.Progress {
				return core.ErrProgressRegression
			}
			if job.Progress > 100 {
				job.Progress = 100
			}
			job.UpdatedAt = time.Now().UTC()

			if err := tx.Set(makeJobKey(job.ID), storage.MarshalJob(&job)); err != nil {
				return err
			}
			updated = &job
			return tx.Commit()
		}, true)

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, storage.ErrConflict
}

// Claim atomically transitions a queued job to processing.
// At most one caller wins; everyone else observes claimed == false.
func (r *JobRepository) Claim(ctx context.Context, id string, progress int) (bool, error) {
	claimed := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		old, err := r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}
		if old.Status != core.StatusQueued {
			return nil
		}

		job := *old
		job.Status = core.StatusProcessing
		if progress > job.Progress {
			job.Progress = progress
		}
		job.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeJobKey(job.ID), storage.MarshalJob(&job)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		claimed = true
		return nil
	}, true)

	// Losing a commit race means another worker holds the job.
	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// List returns jobs ordered by creation time descending, optionally filtered
// by status, sliced into the requested page. Pages beyond the last are empty,
// not an error.
func (r *JobRepository) List(ctx context.Context, filter core.Status, page, size int) (*storage.Page, error) {
	if page < 1 || size < 1 {
		return nil, storage.ErrInvalidQuery
	}
	if filter != "" {
		if err := core.ValidateStatus(filter); err != nil {
			return nil, storage.ErrInvalidQuery
		}
	}

	// Window arithmetic on attacker-supplied numbers: an offset past the int
	// range can only mean an empty page, never an allocation.
	start := math.MaxInt
	if page-1 <= (math.MaxInt-size)/size {
		start = (page - 1) * size
	}
	end := math.MaxInt
	if start <= math.MaxInt-size {
		end = start + size
	}

	capHint := size
	if capHint > maxListAlloc {
		capHint = maxListAlloc
	}
	items := make([]*core.Job, 0, capHint)
	total := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(jobCreatedPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration starts from the key just past the prefix range,
		// which yields the newest creation timestamp first.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for iter.Seek(seek); iter.Valid(); iter.Next() {
			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			job, err := r.readJob(tx, makeJobKey(id))
			if err != nil {
				return err
			}
			if job == nil {
				continue
			}
			if filter != "" && job.Status != filter {
				continue
			}
			if total >= start && total < end {
				items = append(items, job)
			}
			total++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	return &storage.Page{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: pages,
	}, nil
}

// QueuedIDs returns the IDs of all queued jobs, oldest first.
func (r *JobRepository) QueuedIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobCreatedPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			job, err := r.readJob(tx, makeJobKey(id))
			if err != nil {
				return err
			}
			if job != nil && job.Status == core.StatusQueued {
				ids = append(ids, id)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// readJob reads and unmarshals a job record. Returns nil, nil when absent.
func (r *JobRepository) readJob(tx *badger.Txn, key []byte) (*core.Job, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalJob(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}
