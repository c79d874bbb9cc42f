package pipeline

import "errors"

var (
	// ErrJobRepositoryRequired indicates a nil job repository was passed to NewPipeline.
	ErrJobRepositoryRequired = errors.New("job repository is required")

	// ErrBlobRepositoryRequired indicates a nil blob repository was passed to NewPipeline.
	ErrBlobRepositoryRequired = errors.New("blob repository is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to NewPipeline.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrPipelineClosed indicates a submission arrived after Release.
	ErrPipelineClosed = errors.New("pipeline is closed")
)
