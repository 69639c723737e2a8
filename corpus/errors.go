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


package corpus

import "errors"

var (
	// ErrUnavailable is returned when the corpus resource cannot be fetched.
	// Callers must surface this as an actionable error, never as an empty corpus.
	ErrUnavailable = errors.New("corpus unavailable")

	// ErrMalformed is returned when the corpus resource is fetched but cannot
	// be decoded into valid article records.
	ErrMalformed = errors.New("malformed corpus")

	// ErrSourceRequired is returned when a loader is constructed without a source.
	ErrSourceRequired = errors.New("corpus source required")
)
