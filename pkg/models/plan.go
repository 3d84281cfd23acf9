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

// Verdict is the planner's decision for one source device.
type Verdict string

const (
	VerdictCreate Verdict = "create"
	VerdictUpdate Verdict = "update"
	VerdictSkip   Verdict = "skip"
	VerdictError  Verdict = "error"
)

// SyncAction is one planned operation: sync exactly one source device into
// the target CMDB. An Update action always carries the matched asset's ID;
// a Create action never does.
type SyncAction struct {
	SourceID    string            `json:"source_id"`
	SourceName  string            `json:"source_name"`
	Category    Category          `json:"category"`
	CIType      string            `json:"ci_type"`
	Verdict     Verdict           `json:"verdict"`
	AssetID     string            `json:"asset_id,omitempty"`
	AssetName   string            `json:"asset_name,omitempty"`
	Fields      map[string]string `json:"fields"`
	MatchReason string            `json:"match_reason"`
	Error       string            `json:"error,omitempty"`
}

// SyncPlan is the ordered list of planned actions for one run. Ordering
// follows the input device order so repeated runs diff cleanly.
type SyncPlan struct {
	Actions []SyncAction `json:"actions"`
}

// SyncSummary aggregates a plan (or an executed run) for reporting.
type SyncSummary struct {
	Total      int              `json:"total"`
	ByVerdict  map[Verdict]int  `json:"by_verdict"`
	ByCategory map[Category]int `json:"by_category"`
	ByCIType   map[string]int   `json:"by_ci_type"`
	Errors     []ActionError    `json:"errors,omitempty"`
}

// ActionError identifies one record that failed during planning or
// execution. Completed runs always list these explicitly.
type ActionError struct {
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	Message    string `json:"message"`
}

// Summarize aggregates action counts by verdict, category, and CI type.
// Pure aggregation; the plan is not modified.
func (p *SyncPlan) Summarize() SyncSummary {
	summary := SyncSummary{
		Total:      len(p.Actions),
		ByVerdict:  make(map[Verdict]int),
		ByCategory: make(map[Category]int),
		ByCIType:   make(map[string]int),
	}

	for i := range p.Actions {
		action := &p.Actions[i]

		summary.ByVerdict[action.Verdict]++
		summary.ByCategory[action.Category]++
		summary.ByCIType[action.CIType]++

		if action.Verdict == VerdictError {
			summary.Errors = append(summary.Errors, ActionError{
				SourceID:   action.SourceID,
				SourceName: action.SourceName,
				Message:    action.Error,
			})
		}
	}

	return summary
}
