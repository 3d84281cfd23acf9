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
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dmhtech/assetsync/pkg/models"
)

var csvHeader = []string{
	"source_id",
	"source_name",
	"category",
	"ci_type",
	"verdict",
	"asset_id",
	"asset_name",
	"match_reason",
	"error",
}

// WriteCSV writes the plan as CSV, one row per action in plan order, for
// review before an apply run.
func WriteCSV(w io.Writer, plan *models.SyncPlan) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range plan.Actions {
		action := &plan.Actions[i]

		row := []string{
			action.SourceID,
			action.SourceName,
			string(action.Category),
			action.CIType,
			string(action.Verdict),
			action.AssetID,
			action.AssetName,
			action.MatchReason,
			action.Error,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
