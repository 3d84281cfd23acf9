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

package models

// Asset is one record in the target CMDB, flattened to the fields the sync
// pipeline correlates and compares on. RawJSON preserves the full upstream
// payload for diagnostics.
type Asset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number,omitempty"`
	IPAddress    string `json:"ip_address,omitempty"`
	MacAddress   string `json:"mac_address,omitempty"`
	OS           string `json:"os,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	CIType       string `json:"ci_type,omitempty"`
	RawJSON      string `json:"-"`
}
