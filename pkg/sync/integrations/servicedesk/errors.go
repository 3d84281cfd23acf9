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

package servicedesk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errAuthFailed           = errors.New("token refresh failed")
	errUnexpectedStatusCode = errors.New("unexpected status code")
	errMaxRetriesExceeded   = errors.New("request failed after retries")
	errMissingAssetID       = errors.New("create response carries no asset id")
)

// ExtraFieldError reports fields the CMDB rejected as unknown keys for the
// targeted asset type. The caller can strip them and resubmit.
type ExtraFieldError struct {
	Fields []string
}

func (e *ExtraFieldError) Error() string {
	return fmt.Sprintf("fields rejected by asset type: %s", strings.Join(e.Fields, ", "))
}

// RejectedFields lists the field names to strip before retrying.
func (e *ExtraFieldError) RejectedFields() []string {
	return e.Fields
}
