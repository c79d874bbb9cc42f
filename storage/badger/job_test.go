package badger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/embedq/core"
	"github.com/poiesic/embedq/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob(t *testing.T) *core.Job {
	t.Helper()
	content := []byte("document " + core.NewJobID())
	return &core.Job{
		ID:            core.NewJobID(),
		Status:        core.StatusQueued,
		Filename:      "doc.md",
		InputChecksum: core.ChecksumFromContent(content),
	}
}

func setupJobRepo(t *testing.T) storage.JobRepository {
	t.Helper()
	jobRepo, blobRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		jobRepo.Close()
		blobRepo.Close()
		backend.Close()
	})
	return jobRepo
}

func TestJobRepositoryCreateGet(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	job := newTestJob(t)
	require.NoError(t, repo.Create(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())
	assert.False(t, job.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, core.StatusQueued, got.Status)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, job.InputChecksum, got.InputChecksum)
}

func TestJobRepositoryGetNotFound(t *testing.T) {
	repo := setupJobRepo(t)

	_, err := repo.Get(context.Background(), core.NewJobID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobRepositoryCreateDuplicate(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	job := newTestJob(t)
	require.NoError(t, repo.Create(ctx, job))

	dup := *job
	assert.ErrorIs(t, repo.Create(ctx, &dup), storage.ErrDuplicateKey)
}

func TestJobRepositoryUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("progress update", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		claimed, err := repo.Claim(ctx, job.ID, 10)
		require.NoError(t, err)
		require.True(t, claimed)

		updated, err := repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Progress = 50
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 50, updated.Progress)
		assert.Equal(t, core.StatusProcessing, updated.Status)
	})

	t.Run("progress regression rejected", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		_, err := repo.Claim(ctx, job.ID, 10)
		require.NoError(t, err)
		_, err = repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Progress = 90
			return nil
		})
		require.NoError(t, err)

		_, err = repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Progress = 40
			return nil
		})
		assert.ErrorIs(t, err, core.ErrProgressRegression)
	})

	t.Run("terminal state frozen", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		_, err := repo.Claim(ctx, job.ID, 10)
		require.NoError(t, err)
		_, err = repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Status = core.StatusDone
			j.Progress = 100
			return nil
		})
		require.NoError(t, err)

		_, err = repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Status = core.StatusProcessing
			return nil
		})
		assert.ErrorIs(t, err, core.ErrInvalidTransition)

		_, err = repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Progress = 100
			return nil
		})
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	})

	t.Run("skipping processing rejected", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		_, err := repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Status = core.StatusDone
			return nil
		})
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	})

	t.Run("id and created_at immutable", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		updated, err := repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.ID = "hijacked"
			j.CreatedAt = time.Unix(0, 0)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, job.ID, updated.ID)
		assert.True(t, job.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("mutator error aborts", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		boom := fmt.Errorf("mutator boom")
		_, err := repo.Update(ctx, job.ID, func(j *core.Job) error {
			j.Progress = 99
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Progress)
	})

	t.Run("unknown job", func(t *testing.T) {
		repo := setupJobRepo(t)
		_, err := repo.Update(ctx, core.NewJobID(), func(j *core.Job) error { return nil })
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestJobRepositoryClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("claim transitions to processing", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		claimed, err := repo.Claim(ctx, job.ID, 10)
		require.NoError(t, err)
		assert.True(t, claimed)

		got, err := repo.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, got.Status)
		assert.Equal(t, 10, got.Progress)
	})

	t.Run("second claim loses", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		claimed, err := repo.Claim(ctx, job.ID, 10)
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = repo.Claim(ctx, job.ID, 10)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("unknown job", func(t *testing.T) {
		repo := setupJobRepo(t)
		_, err := repo.Claim(ctx, core.NewJobID(), 10)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("concurrent claims yield one winner", func(t *testing.T) {
		repo := setupJobRepo(t)
		job := newTestJob(t)
		require.NoError(t, repo.Create(ctx, job))

		const racers = 16
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimed, err := repo.Claim(ctx, job.ID, 10)
				assert.NoError(t, err)
				if claimed {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestJobRepositoryList(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, repo storage.JobRepository, n int) []string {
		t.Helper()
		ids := make([]string, n)
		base := time.Now().UTC().Add(-time.Duration(n) * time.Second)
		for i := 0; i < n; i++ {
			job := newTestJob(t)
			// Distinct creation times keep the expected ordering unambiguous.
			job.CreatedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, repo.Create(ctx, job))
			ids[i] = job.ID
		}
		return ids
	}

	t.Run("newest first", func(t *testing.T) {
		repo := setupJobRepo(t)
		ids := seed(t, repo, 5)

		page, err := repo.List(ctx, "", 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 5)
		for i, item := range page.Items {
			assert.Equal(t, ids[len(ids)-1-i], item.ID)
		}
	})

	t.Run("pagination totals", func(t *testing.T) {
		repo := setupJobRepo(t)
		seed(t, repo, 37)

		page, err := repo.List(ctx, "", 1, 15)
		require.NoError(t, err)
		assert.Equal(t, 37, page.Total)
		assert.Equal(t, 3, page.Pages)
		assert.Len(t, page.Items, 15)

		page, err = repo.List(ctx, "", 3, 15)
		require.NoError(t, err)
		assert.Len(t, page.Items, 7)

		page, err = repo.List(ctx, "", 4, 15)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 37, page.Total)
		assert.Equal(t, 3, page.Pages)
	})

	t.Run("empty store has one empty page", func(t *testing.T) {
		repo := setupJobRepo(t)

		page, err := repo.List(ctx, "", 1, 15)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.Total)
		assert.Equal(t, 1, page.Pages)
	})

	t.Run("status filter", func(t *testing.T) {
		repo := setupJobRepo(t)
		ids := seed(t, repo, 6)
		for _, id := range ids[:2] {
			claimed, err := repo.Claim(ctx, id, 10)
			require.NoError(t, err)
			require.True(t, claimed)
		}

		page, err := repo.List(ctx, core.StatusProcessing, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Len(t, page.Items, 2)
		for _, item := range page.Items {
			assert.Equal(t, core.StatusProcessing, item.Status)
		}

		page, err = repo.List(ctx, core.StatusQueued, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		repo := setupJobRepo(t)
		_, err := repo.List(ctx, "", 0, 15)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
		_, err = repo.List(ctx, "", 1, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
		_, err = repo.List(ctx, core.Status("bogus"), 1, 15)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("oversized window does not overallocate", func(t *testing.T) {
		repo := setupJobRepo(t)
		seed(t, repo, 3)

		page, err := repo.List(ctx, "", 1, 1<<62)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 1, page.Pages)

		// page*size overflows int; the window is past any real listing.
		page, err = repo.List(ctx, "", 1<<40, 1<<40)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 3, page.Total)
	})
}

func TestJobRepositoryQueuedIDs(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	var queued []string
	base := time.Now().UTC().Add(-time.Minute)
	for i := 0; i < 6; i++ {
		job := newTestJob(t)
		job.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, job))
		if i%2 == 0 {
			claimed, err := repo.Claim(ctx, job.ID, 10)
			require.NoError(t, err)
			require.True(t, claimed)
		} else {
			queued = append(queued, job.ID)
		}
	}

	ids, err := repo.QueuedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, queued, ids, "queued ids must come back oldest first")
}
