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

package connectwise

import "errors"

var (
	errAuthFailed           = errors.New("authentication failed")
	errUnexpectedStatusCode = errors.New("unexpected status code")
	errMaxRetriesExceeded   = errors.New("request failed after retries")
	errUnexpectedResponse   = errors.New("unexpected response format: 'endpoints' key missing")
)
