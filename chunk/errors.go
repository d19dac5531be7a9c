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

package chunk

import "errors"

var (
	// ErrInvalidSize indicates a non-positive target chunk size.
	ErrInvalidSize = errors.New("chunk size must be positive")

	// ErrInvalidOverlap indicates an overlap that is negative or does not
	// leave room for forward progress.
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than the chunk size")

	// ErrInvalidTolerance indicates a tolerance that is negative or as
	// large as the chunk size itself.
	ErrInvalidTolerance = errors.New("chunk tolerance must be non-negative and smaller than the chunk size")
)
