/*
 * Copyright 2025 DMH Technology Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync

import "errors"

var (
	// ErrUpdateWithoutTargetID indicates a contract violation: an update
	// action reached the executor without a matched asset id.
	ErrUpdateWithoutTargetID = errors.New("update action has no target asset id")

	errSourceRequired = errors.New("source configuration is required")
	errTargetRequired = errors.New("target configuration is required")
	errCacheRequired  = errors.New("cache path is required")
)
