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

// Package pipeline orchestrates asynchronous embedding jobs.
//
// Submit accepts a raw document, records a queued job, and returns
// immediately; a fixed-size worker pool drains the queue in submission
// order. Each worker claims its job through the store's atomic
// queued-to-processing transition, so a job is processed by at most one
// worker even when the queue is replayed after a restart.
//
// Workers advance a job through cleaning, embedding, and artifact
// serialization, reporting progress checkpoints along the way. Any error
// or panic inside a worker marks that job failed with a diagnostic
// message and leaves the rest of the pool running.
//
// Completed job records and their blobs are retained indefinitely; callers
// that run the pipeline against long-lived stores should plan for the
// resulting growth.
package pipeline
