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


package qa

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrLoaderRequired is returned when a corpus loader is not provided.
	ErrLoaderRequired = errors.New("corpus loader required")

	// ErrEmptyQuestion is returned when the incoming question is blank.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the model returned an empty or missing answer.
	// Nothing downstream can rank against an empty answer, so this is fatal.
	ErrEmptyAnswer = errors.New("model returned an empty answer")

	// ErrNoEmbeddings indicates the embedding strategy was requested but no
	// scorable corpus entry carries an embedding.
	ErrNoEmbeddings = errors.New("corpus carries no embeddings")
)

// Pipeline stage names, carried by StageError so a fatal failure identifies
// where the pipeline stopped.
const (
	StageInitialAnswer = "initial-answer"
	StageLoadCorpus    = "load-corpus"
	StageEmbedAnswer   = "embed-answer"
	StageScore         = "score"
	StageFinalAnswer   = "final-answer"
)

// StageError is a fatal pipeline failure. It wraps the underlying cause with
// the name of the stage that failed; recoverable per-article problems never
// become StageErrors.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// fatal wraps err as a StageError for the given stage.
func fatal(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
