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

// Package server exposes the embedding pipeline over HTTP.
//
// Endpoints:
//
//	POST /api/async/embedding/submit       submit a document, returns the queued job
//	GET  /api/async/embedding/status/:id   poll one job's status and progress
//	GET  /api/async/embedding/jobs         paginated job listing, filterable by status
//	GET  /api/async/embedding/result/:id   download the binary embedding artifact
//	GET  /api/async/embedding/health       liveness check
//
// Submission accepts either a multipart form with a "file" part or a raw
// request body (with an optional ?filename= query parameter). Results are
// served as application/octet-stream with the artifact's shape echoed in
// X-Chunk-Count and X-Vector-Dim headers.
package server
