// Package mock provides a test double implementation of ai.Embedder.
//
// The mock allows tests (and the service's model-less "mock" provider mode)
// to run without an external embedding service, with controlled and
// deterministic behavior.
//
// # Usage in Tests
//
//	// Default deterministic behavior
//	embedder := mock.NewMockEmbedder()
//	vectors, err := embedder.EmbedTexts(ctx, []string{"a", "b"})
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("model unavailable")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock
