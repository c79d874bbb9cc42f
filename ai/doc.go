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


// Package ai provides the embedding abstraction used by the job pipeline.
//
// The pipeline treats the embedding model as an opaque capability: a function
// from cleaned text chunks to a sequence of fixed-length vectors. This package
// defines that interface so the core domain and business logic depend on an
// abstraction rather than a concrete model client.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Deterministic implementation for tests and model-less operation
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder INTERFACE
// to enforce abstraction; test utility constructors (mock.NewMockEmbedder)
// return CONCRETE types to enable assertions and behavior injection.
package ai
