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

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// ValidateDocument validates a submitted document according to domain rules.
//
// Validation rules:
//   - Content must not be empty (or whitespace only)
//   - Content must be valid UTF-8 text without NUL bytes
//     (plain text and Markdown are the accepted types)
//
// Cleaning is NOT performed here; the worker cleans during processing.
func ValidateDocument(content []byte) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyDocument)
	}

	if !utf8.Valid(content) || bytes.ContainsRune(content, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrBinaryDocument)
	}

	return nil
}

// ValidateStatus validates that a status has a known value.
func ValidateStatus(s Status) error {
	switch s {
	case StatusQueued, StatusProcessing, StatusDone, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ValidateTransition validates a status change against the state machine.
// Staying in the same state is allowed (progress-only updates).
func ValidateTransition(from, to Status) error {
	if err := ValidateStatus(to); err != nil {
		return err
	}

	if from == to {
		if from.IsTerminal() {
			return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
		}
		return nil
	}

	switch from {
	case StatusQueued:
		if to == StatusProcessing {
			return nil
		}
	case StatusProcessing:
		if to == StatusDone || to == StatusFailed {
			return nil
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
