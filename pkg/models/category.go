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

// Category is the asset classification a source device resolves to.
// Every device maps to exactly one category.
type Category string

const (
	CategoryLaptop         Category = "Laptop"
	CategoryDesktop        Category = "Desktop"
	CategoryVirtualServer  Category = "Virtual Server"
	CategoryPhysicalServer Category = "Physical Server"
	CategoryNetworkDevice  Category = "Network Device"
	CategoryUnknown        Category = "Unknown"
)

// CMDB product-type endpoints. Each category maps to exactly one of these.
const (
	CITypeWorkstations    = "asset_workstations"
	CITypeVirtualMachines = "asset_virtual_machines"
	CITypeServers         = "asset_servers"
	CITypeSwitches        = "asset_switches"
)

var categoryCITypes = map[Category]string{
	CategoryLaptop:         CITypeWorkstations,
	CategoryDesktop:        CITypeWorkstations,
	CategoryVirtualServer:  CITypeVirtualMachines,
	CategoryPhysicalServer: CITypeServers,
	CategoryNetworkDevice:  CITypeSwitches,
}

// CIType returns the target CI type (product-type endpoint) for the
// category. Unknown devices land in workstations, the broadest type.
func (c Category) CIType() string {
	if ciType, ok := categoryCITypes[c]; ok {
		return ciType
	}

	return CITypeWorkstations
}

// FieldSet is the normalized output of the field mapper: the flat target
// field values extracted from one device, tagged with its category. Fields
// whose source value was absent or invalid are omitted entirely.
type FieldSet struct {
	Category Category          `json:"category"`
	Fields   map[string]string `json:"fields"`
}
