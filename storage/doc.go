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


// Package storage provides the storage abstraction layer for embedq.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, allowing different backends (BadgerDB,
// in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
//   - JobRepository: the canonical job store, covering creation, atomic
//     claim, transactional update, and paginated listing of job records
//   - BlobRepository: content-addressed byte blobs, holding submitted
//     input documents and serialized embedding artifacts
//
// # Concurrency
//
// All repository implementations must be thread-safe. Updates to one job are
// serialized against each other; updates to different jobs proceed
// independently; implementations must not take a global write lock across
// unrelated jobs.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific timeout
// requirements.
package storage
