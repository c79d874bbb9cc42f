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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidInput indicates a submitted document failed validation.
	// No job is created when this is returned.
	ErrInvalidInput = errors.New("invalid input document")

	// ErrEmptyDocument indicates the submitted document has no content.
	ErrEmptyDocument = errors.New("document cannot be empty")

	// ErrBinaryDocument indicates the submitted document is not plain text.
	ErrBinaryDocument = errors.New("document must be plain text or markdown")

	// ErrNotReady indicates a result was requested before the job reached done.
	ErrNotReady = errors.New("job result is not ready")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid job status")

	// ErrInvalidTransition indicates a status change that the state machine
	// does not permit, such as leaving a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrProgressRegression indicates an update tried to lower a job's progress.
	ErrProgressRegression = errors.New("progress cannot decrease")
)
