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

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(":memory:", logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSaveDevice_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	device := models.Device{
		"endpointId":   "ep-001",
		"friendlyName": "DMH-LAPTOP-07",
		"system":       map[string]interface{}{"serialNumber": "PF2XKQ1"},
	}

	require.NoError(t, s.SaveDevice(device))

	devices, err := s.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)

	assert.Equal(t, "ep-001", devices[0].ID())
	assert.Equal(t, "DMH-LAPTOP-07", devices[0].Name())
	assert.Equal(t, "PF2XKQ1", devices[0].StringAt("system.serialNumber"))
}

func TestSaveDevice_ReplacesWholesale(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveDevice(models.Device{
		"endpointId":   "ep-001",
		"friendlyName": "OLD-NAME",
		"os":           map[string]interface{}{"product": "Windows 10"},
	}))
	require.NoError(t, s.SaveDevice(models.Device{
		"endpointId":   "ep-001",
		"friendlyName": "NEW-NAME",
	}))

	devices, err := s.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)

	assert.Equal(t, "NEW-NAME", devices[0].Name())
	// The old payload must not bleed through.
	assert.Empty(t, devices[0].StringAt("os.product"))
}

func TestSaveDevice_RejectsMissingID(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.SaveDevice(models.Device{"friendlyName": "x"}), errDeviceWithoutID)
}

func TestHasDevice(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveDevice(models.Device{"endpointId": "ep-001"}))

	ok, err := s.HasDevice("ep-001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasDevice("ep-404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveDevices_SkipsRecordsWithoutID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveDevices([]models.Device{
		{"endpointId": "ep-001"},
		{"friendlyName": "no-id"},
		{"endpointId": "ep-002"},
	}))

	count, err := s.CountDevices()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestReplaceAssets(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.ReplaceAssets([]models.Asset{
		{ID: "a-1", Name: "HOST-A", SerialNumber: "SN1", CIType: "asset_workstations"},
		{ID: "a-2", Name: "HOST-B", CIType: "asset_servers"},
	}))

	// A second fetch with a shrunken inventory must not keep stale rows.
	require.NoError(t, s.ReplaceAssets([]models.Asset{
		{ID: "a-3", Name: "HOST-C", CIType: "asset_servers", RawJSON: `{"id":"a-3"}`},
	}))

	assets, err := s.ListAssets()
	require.NoError(t, err)
	require.Len(t, assets, 1)

	assert.Equal(t, "a-3", assets[0].ID)
	assert.Equal(t, "HOST-C", assets[0].Name)
	assert.Equal(t, `{"id":"a-3"}`, assets[0].RawJSON)
}

func TestRunHistory(t *testing.T) {
	s := newTestStore(t)

	started := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(3 * time.Minute)

	run := &SyncRun{
		RunID:     "7f9c24e5-1c33-4f40-9d61-1d0b0c2a5f10",
		StartedAt: started,
		DryRun:    true,
		Total:     42,
	}
	require.NoError(t, s.SaveRun(run))

	run.FinishedAt = &finished
	run.Created = 10
	run.Skipped = 30
	run.Failed = 2
	require.NoError(t, s.SaveRun(run))

	runs, err := s.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, 10, runs[0].Created)
	require.NotNil(t, runs[0].FinishedAt)
	assert.True(t, finished.Equal(*runs[0].FinishedAt))
}

func TestSaveRun_RejectsMissingID(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.SaveRun(&SyncRun{}), errRunWithoutID)
}
