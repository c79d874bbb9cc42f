package server

import (
	"time"

	"github.com/poiesic/embedq/core"
	"github.com/poiesic/embedq/storage"
)

// JobResponse is the JSON shape of a job record.
type JobResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
	Filename       string    `json:"filename,omitempty"`
	InputChecksum  string    `json:"input_checksum"`
	OutputChecksum string    `json:"output_checksum,omitempty"`
	ChunkCount     int       `json:"chunk_count,omitempty"`
	VectorDim      int       `json:"vector_dim,omitempty"`
	ModelID        string    `json:"model_id,omitempty"`
	ErrorMessage   string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newJobResponse(job *core.Job) JobResponse {
	return JobResponse{
		ID:             job.ID,
		Status:         string(job.Status),
		Progress:       job.Progress,
		Filename:       job.Filename,
		InputChecksum:  job.InputChecksum,
		OutputChecksum: job.OutputChecksum,
		ChunkCount:     job.ChunkCount,
		VectorDim:      job.VectorDim,
		ModelID:        job.ModelID,
		ErrorMessage:   job.ErrorMessage,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}

// JobListResponse is one page of the job listing.
type JobListResponse struct {
	Items []JobResponse `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Pages int           `json:"pages"`
}

func newJobListResponse(page *storage.Page) JobListResponse {
	items := make([]JobResponse, len(page.Items))
	for i, job := range page.Items {
		items[i] = newJobResponse(job)
	}
	return JobListResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	}
}

// PendingResponse is returned with 202 Accepted when a result is requested
// before the job has finished.
type PendingResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// ErrorResponse carries a human-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
