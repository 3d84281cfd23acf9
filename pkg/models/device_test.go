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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceAccessors(t *testing.T) {
	device := Device{
		"endpointId":   "ep-1",
		"friendlyName": "PC-001",
		"endpointType": "Desktop",
		"system": map[string]interface{}{
			"serialNumber": "SN123",
			"totalMemory":  float64(17179869184),
		},
	}

	assert.Equal(t, "ep-1", device.ID())
	assert.Equal(t, "PC-001", device.Name())
	assert.Equal(t, "Desktop", device.EndpointType())
	assert.Equal(t, "SN123", device.StringAt("system.serialNumber"))

	// Integral JSON numbers render without a fraction.
	assert.Equal(t, "17179869184", device.StringAt("system.totalMemory"))
}

func TestDeviceMissingPaths(t *testing.T) {
	device := Device{"system": map[string]interface{}{"serialNumber": "SN123"}}

	assert.Empty(t, device.ID())
	assert.Empty(t, device.StringAt("system.missing"))
	assert.Empty(t, device.StringAt("missing.deeper.path"))
	assert.Nil(t, device.At("system.serialNumber.tooDeep"))

	// Nested objects are not scalars.
	assert.Empty(t, device.StringAt("system"))
}

func TestDeviceListAt(t *testing.T) {
	device := Device{
		"networkAdapters": []interface{}{
			map[string]interface{}{"mac": "AA:BB:CC:DD:EE:FF"},
			"not an object",
			map[string]interface{}{"mac": "11:22:33:44:55:66"},
		},
	}

	adapters := device.ListAt("networkAdapters")
	require.Len(t, adapters, 2)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", adapters[0]["mac"])

	assert.Nil(t, device.ListAt("missing"))
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"30s"`), &d))
	assert.Equal(t, 30*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, json.Unmarshal([]byte(`"not a duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestCategoryCIType(t *testing.T) {
	assert.Equal(t, "asset_workstations", CategoryLaptop.CIType())
	assert.Equal(t, "asset_workstations", CategoryDesktop.CIType())
	assert.Equal(t, "asset_virtual_machines", CategoryVirtualServer.CIType())
	assert.Equal(t, "asset_servers", CategoryPhysicalServer.CIType())
	assert.Equal(t, "asset_switches", CategoryNetworkDevice.CIType())
	assert.Equal(t, "asset_workstations", CategoryUnknown.CIType())
}

func TestSummarize(t *testing.T) {
	plan := &SyncPlan{Actions: []SyncAction{
		{SourceID: "1", SourceName: "a", Category: CategoryLaptop, CIType: "asset_workstations", Verdict: VerdictCreate},
		{SourceID: "2", SourceName: "b", Category: CategoryDesktop, CIType: "asset_workstations", Verdict: VerdictUpdate},
		{SourceID: "3", SourceName: "c", Category: CategoryUnknown, Verdict: VerdictSkip},
		{SourceID: "4", SourceName: "d", Category: CategoryLaptop, CIType: "asset_workstations", Verdict: VerdictError, Error: "boom"},
	}}

	summary := plan.Summarize()

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.ByVerdict[VerdictCreate])
	assert.Equal(t, 1, summary.ByVerdict[VerdictUpdate])
	assert.Equal(t, 1, summary.ByVerdict[VerdictSkip])
	assert.Equal(t, 1, summary.ByVerdict[VerdictError])
	assert.Equal(t, 3, summary.ByCIType["asset_workstations"])

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "4", summary.Errors[0].SourceID)
	assert.Equal(t, "boom", summary.Errors[0].Message)
}
