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

// Package sync plans and executes the reconciliation of monitoring-platform
// devices into the target CMDB. Planning is pure and idempotent; execution
// mutates the CMDB through a write-capable client, create-first and never
// destructive.
package sync

import (
	"context"
	"fmt"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/mapper"
	"github.com/dmhtech/assetsync/pkg/models"
)

// Planner turns a device inventory plus an asset index into an ordered
// SyncPlan. Matching tries hostname first, then serial scoped to the
// device's CI type; an unmatched device becomes a create action.
type Planner struct {
	index  AssetIndex
	logger logger.Logger
}

// NewPlanner creates a planner matching against the given asset index.
func NewPlanner(index AssetIndex, log logger.Logger) *Planner {
	return &Planner{
		index:  index,
		logger: log,
	}
}

// Plan classifies, maps, and matches every device, preserving input
// order. Running Plan twice over unchanged inputs yields identical plans.
func (p *Planner) Plan(ctx context.Context, devices []models.Device) (*models.SyncPlan, error) {
	plan := &models.SyncPlan{
		Actions: make([]models.SyncAction, 0, len(devices)),
	}

	for _, device := range devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		plan.Actions = append(plan.Actions, p.planOne(device))
	}

	p.logger.Info().
		Int("devices", len(devices)).
		Msg("Sync plan computed")

	return plan, nil
}

func (p *Planner) planOne(device models.Device) models.SyncAction {
	fieldSet := mapper.Map(device)

	action := models.SyncAction{
		SourceID:   device.ID(),
		SourceName: device.Name(),
		Category:   fieldSet.Category,
		CIType:     fieldSet.Category.CIType(),
		Fields:     fieldSet.Fields,
	}

	if fieldSet.Category == models.CategoryUnknown {
		action.Verdict = models.VerdictSkip
		action.MatchReason = "Unrecognized endpoint type"

		return action
	}

	// A nameless record still falls through to serial matching.
	if name := fieldSet.Fields[mapper.FieldName]; name != "" {
		if asset, ok := p.index.FindByName(name); ok {
			action.Verdict = models.VerdictUpdate
			action.AssetID = asset.ID
			action.AssetName = asset.Name
			action.MatchReason = fmt.Sprintf("Hostname match: %s", asset.Name)

			return action
		}
	}

	// Serial matching is scoped to the CI type: CMDB serials are only
	// unique per hardware class. The mapper has already suppressed
	// hypervisor serials, so a present serial is trustworthy.
	if serial := fieldSet.Fields[mapper.FieldSerialNumber]; serial != "" {
		if asset, ok := p.index.FindBySerial(serial, action.CIType); ok {
			action.Verdict = models.VerdictUpdate
			action.AssetID = asset.ID
			action.AssetName = asset.Name
			action.MatchReason = fmt.Sprintf("Serial match: %s", serial)

			return action
		}
	}

	action.Verdict = models.VerdictCreate
	action.MatchReason = "No existing asset matched"

	return action
}
