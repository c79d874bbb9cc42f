package storage

import (
	"testing"
	"time"

	"github.com/poiesic/embedq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalJob(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		job  *core.Job
	}{
		{
			name: "queued job",
			job: &core.Job{
				ID:            core.NewJobID(),
				Status:        core.StatusQueued,
				Progress:      0,
				Filename:      "notes.md",
				InputChecksum: core.ChecksumFromContent([]byte("notes")),
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		{
			name: "processing job without filename",
			job: &core.Job{
				ID:            core.NewJobID(),
				Status:        core.StatusProcessing,
				Progress:      50,
				InputChecksum: core.ChecksumFromContent([]byte("anonymous")),
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		{
			name: "done job with result shape",
			job: &core.Job{
				ID:             core.NewJobID(),
				Status:         core.StatusDone,
				Progress:       100,
				Filename:       "doc.txt",
				InputChecksum:  core.ChecksumFromContent([]byte("doc")),
				OutputChecksum: core.ChecksumFromContent([]byte("artifact")),
				ChunkCount:     12,
				VectorDim:      768,
				ModelID:        "embeddinggemma",
				CreatedAt:      now,
				UpdatedAt:      now,
			},
		},
		{
			name: "failed job with error message",
			job: &core.Job{
				ID:            core.NewJobID(),
				Status:        core.StatusFailed,
				Progress:      50,
				InputChecksum: core.ChecksumFromContent([]byte("bad")),
				ErrorMessage:  "embedding service unavailable: connection refused",
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		{
			name: "unicode filename and message",
			job: &core.Job{
				ID:            core.NewJobID(),
				Status:        core.StatusFailed,
				Progress:      10,
				Filename:      "ノート 🌍.md",
				InputChecksum: core.ChecksumFromContent([]byte("unicode")),
				ErrorMessage:  "モデルエラー",
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalJob(tt.job)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalJob(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.job.ID, decoded.ID)
			assert.Equal(t, tt.job.Status, decoded.Status)
			assert.Equal(t, tt.job.Progress, decoded.Progress)
			assert.Equal(t, tt.job.Filename, decoded.Filename)
			assert.Equal(t, tt.job.InputChecksum, decoded.InputChecksum)
			assert.Equal(t, tt.job.OutputChecksum, decoded.OutputChecksum)
			assert.Equal(t, tt.job.ChunkCount, decoded.ChunkCount)
			assert.Equal(t, tt.job.VectorDim, decoded.VectorDim)
			assert.Equal(t, tt.job.ModelID, decoded.ModelID)
			assert.Equal(t, tt.job.ErrorMessage, decoded.ErrorMessage)
			assert.True(t, tt.job.CreatedAt.Equal(decoded.CreatedAt))
			assert.True(t, tt.job.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestUnmarshalJob_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalJob(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalJobRoundTripConsistency(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	original := &core.Job{
		ID:             core.NewJobID(),
		Status:         core.StatusDone,
		Progress:       100,
		Filename:       "stable.md",
		InputChecksum:  core.ChecksumFromContent([]byte("in")),
		OutputChecksum: core.ChecksumFromContent([]byte("out")),
		ChunkCount:     3,
		VectorDim:      384,
		ModelID:        "bge-m3",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	current := original
	for i := 0; i < 3; i++ {
		decoded, err := UnmarshalJob(MarshalJob(current))
		require.NoError(t, err)
		current = decoded
	}

	assert.Equal(t, original.ID, current.ID)
	assert.Equal(t, original.Status, current.Status)
	assert.Equal(t, original.ChunkCount, current.ChunkCount)
	assert.Equal(t, original.VectorDim, current.VectorDim)
	assert.True(t, original.CreatedAt.Equal(current.CreatedAt))
}
