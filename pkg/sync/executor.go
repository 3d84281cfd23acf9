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

import (
	"context"
	"errors"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
)

// ApplyStats reports what one execution pass actually did.
type ApplyStats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Executor applies a sync plan against the target CMDB. Apply handles
// create actions only; updates run through the separate, explicitly
// invoked ApplyUpdates so a default run can never overwrite existing
// assets.
type Executor struct {
	target TargetClient
	logger logger.Logger
}

// NewExecutor creates an executor writing through the given client.
func NewExecutor(target TargetClient, log logger.Logger) *Executor {
	return &Executor{
		target: target,
		logger: log,
	}
}

// Apply executes the plan's create actions in plan order. A failed record
// is marked with verdict error and execution continues; only cancellation
// aborts the pass.
func (e *Executor) Apply(ctx context.Context, plan *models.SyncPlan) (ApplyStats, error) {
	var stats ApplyStats

	for i := range plan.Actions {
		action := &plan.Actions[i]
		if action.Verdict != models.VerdictCreate {
			continue
		}

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Attempted++

		id, err := e.submit(ctx, action, func(fields map[string]string) (string, error) {
			return e.target.CreateAsset(ctx, action.CIType, fields)
		})
		if err != nil {
			e.failAction(action, err)

			stats.Failed++

			continue
		}

		action.AssetID = id
		stats.Succeeded++

		e.logger.Info().
			Str("source", action.SourceName).
			Str("asset_id", id).
			Str("ci_type", action.CIType).
			Msg("Asset created")
	}

	return stats, nil
}

// ApplyUpdates executes the plan's update actions. An update action
// without a target asset id is a contract violation and aborts the pass.
func (e *Executor) ApplyUpdates(ctx context.Context, plan *models.SyncPlan) (ApplyStats, error) {
	var stats ApplyStats

	for i := range plan.Actions {
		action := &plan.Actions[i]
		if action.Verdict != models.VerdictUpdate {
			continue
		}

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if action.AssetID == "" {
			return stats, ErrUpdateWithoutTargetID
		}

		stats.Attempted++

		_, err := e.submit(ctx, action, func(fields map[string]string) (string, error) {
			return action.AssetID, e.target.UpdateAsset(ctx, action.AssetID, fields)
		})
		if err != nil {
			e.failAction(action, err)

			stats.Failed++

			continue
		}

		stats.Succeeded++

		e.logger.Info().
			Str("source", action.SourceName).
			Str("asset_id", action.AssetID).
			Msg("Asset updated")
	}

	return stats, nil
}

// submit sends the action's fields, stripping schema-rejected fields and
// resubmitting. Each field is stripped at most once; a rejection naming
// an already-stripped field (or nothing new) exhausts the retry budget.
func (e *Executor) submit(ctx context.Context, action *models.SyncAction,
	send func(fields map[string]string) (string, error)) (string, error) {
	fields := make(map[string]string, len(action.Fields))
	for k, v := range action.Fields {
		fields[k] = v
	}

	stripped := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, err := send(fields)
		if err == nil {
			return id, nil
		}

		var rejection FieldRejection
		if !errors.As(err, &rejection) {
			return "", err
		}

		progress := false

		for _, field := range rejection.RejectedFields() {
			if stripped[field] {
				continue
			}

			if _, present := fields[field]; present {
				delete(fields, field)

				stripped[field] = true
				progress = true

				e.logger.Warn().
					Str("source", action.SourceName).
					Str("field", field).
					Msg("Target schema rejected field, resubmitting without it")
			}
		}

		if !progress {
			return "", err
		}
	}
}

func (e *Executor) failAction(action *models.SyncAction, err error) {
	action.Verdict = models.VerdictError
	action.Error = err.Error()

	e.logger.Error().
		Str("source", action.SourceName).
		Err(err).
		Msg("Failed to apply sync action")
}
