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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
)

// rejectionError mimics a target schema rejection.
type rejectionError struct {
	fields []string
}

func (e *rejectionError) Error() string {
	return fmt.Sprintf("extra keys found: %v", e.fields)
}

func (e *rejectionError) RejectedFields() []string {
	return e.fields
}

func createPlan(actions ...models.SyncAction) *models.SyncPlan {
	return &models.SyncPlan{Actions: actions}
}

func TestApply_CreatesOnlyCreateActions(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(
		models.SyncAction{
			SourceID: "ep-1", SourceName: "HOST-A", Verdict: models.VerdictCreate,
			CIType: models.CITypeWorkstations, Fields: map[string]string{"name": "HOST-A"},
		},
		models.SyncAction{
			SourceID: "ep-2", SourceName: "HOST-B", Verdict: models.VerdictUpdate,
			AssetID: "a-2", Fields: map[string]string{"name": "HOST-B"},
		},
		models.SyncAction{
			SourceID: "ep-3", SourceName: "PRN-1", Verdict: models.VerdictSkip,
		},
	)

	target.EXPECT().
		CreateAsset(gomock.Any(), models.CITypeWorkstations, map[string]string{"name": "HOST-A"}).
		Return("new-1", nil)

	executor := NewExecutor(target, logger.NewTestLogger())

	stats, err := executor.Apply(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, ApplyStats{Attempted: 1, Succeeded: 1}, stats)
	assert.Equal(t, "new-1", plan.Actions[0].AssetID)
	// Update and skip actions are untouched by Apply.
	assert.Equal(t, models.VerdictUpdate, plan.Actions[1].Verdict)
	assert.Equal(t, models.VerdictSkip, plan.Actions[2].Verdict)
}

func TestApply_StripsRejectedFieldAndResubmits(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(models.SyncAction{
		SourceID: "ep-1", SourceName: "HOST-A", Verdict: models.VerdictCreate,
		CIType: models.CITypeWorkstations,
		Fields: map[string]string{"name": "HOST-A", "os": "Windows 11 Pro"},
	})

	gomock.InOrder(
		target.EXPECT().
			CreateAsset(gomock.Any(), models.CITypeWorkstations,
				map[string]string{"name": "HOST-A", "os": "Windows 11 Pro"}).
			Return("", &rejectionError{fields: []string{"os"}}),
		target.EXPECT().
			CreateAsset(gomock.Any(), models.CITypeWorkstations,
				map[string]string{"name": "HOST-A"}).
			Return("new-1", nil),
	)

	executor := NewExecutor(target, logger.NewTestLogger())

	stats, err := executor.Apply(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, models.VerdictCreate, plan.Actions[0].Verdict)
	assert.Equal(t, "new-1", plan.Actions[0].AssetID)
	// The original plan fields are preserved; only the submission was trimmed.
	assert.Contains(t, plan.Actions[0].Fields, "os")
}

func TestApply_RepeatedRejectionExhaustsRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(models.SyncAction{
		SourceID: "ep-1", SourceName: "HOST-A", Verdict: models.VerdictCreate,
		CIType: models.CITypeWorkstations,
		Fields: map[string]string{"name": "HOST-A", "os": "Windows 11 Pro"},
	})

	// The target keeps rejecting "os" even after it was stripped: no
	// progress is possible, so the action fails after one retry.
	gomock.InOrder(
		target.EXPECT().
			CreateAsset(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", &rejectionError{fields: []string{"os"}}),
		target.EXPECT().
			CreateAsset(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", &rejectionError{fields: []string{"os"}}),
	)

	executor := NewExecutor(target, logger.NewTestLogger())

	stats, err := executor.Apply(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, models.VerdictError, plan.Actions[0].Verdict)
	assert.NotEmpty(t, plan.Actions[0].Error)
}

func TestApply_OtherErrorMarksActionAndContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(
		models.SyncAction{
			SourceID: "ep-1", SourceName: "HOST-A", Verdict: models.VerdictCreate,
			CIType: models.CITypeWorkstations, Fields: map[string]string{"name": "HOST-A"},
		},
		models.SyncAction{
			SourceID: "ep-2", SourceName: "HOST-B", Verdict: models.VerdictCreate,
			CIType: models.CITypeWorkstations, Fields: map[string]string{"name": "HOST-B"},
		},
	)

	gomock.InOrder(
		target.EXPECT().
			CreateAsset(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("boom")),
		target.EXPECT().
			CreateAsset(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("new-2", nil),
	)

	executor := NewExecutor(target, logger.NewTestLogger())

	stats, err := executor.Apply(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, ApplyStats{Attempted: 2, Succeeded: 1, Failed: 1}, stats)
	assert.Equal(t, models.VerdictError, plan.Actions[0].Verdict)
	assert.Equal(t, "boom", plan.Actions[0].Error)
	assert.Equal(t, "new-2", plan.Actions[1].AssetID)
}

func TestApply_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(models.SyncAction{
		SourceID: "ep-1", Verdict: models.VerdictCreate,
		CIType: models.CITypeWorkstations, Fields: map[string]string{"name": "HOST-A"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := NewExecutor(target, logger.NewTestLogger())

	_, err := executor.Apply(ctx, plan)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(
		models.SyncAction{
			SourceID: "ep-1", SourceName: "HOST-A", Verdict: models.VerdictCreate,
			CIType: models.CITypeWorkstations, Fields: map[string]string{"name": "HOST-A"},
		},
		models.SyncAction{
			SourceID: "ep-2", SourceName: "HOST-B", Verdict: models.VerdictUpdate,
			AssetID: "a-2", Fields: map[string]string{"name": "HOST-B", "os": "Windows 11 Pro"},
		},
	)

	target.EXPECT().
		UpdateAsset(gomock.Any(), "a-2", map[string]string{"name": "HOST-B", "os": "Windows 11 Pro"}).
		Return(nil)

	executor := NewExecutor(target, logger.NewTestLogger())

	stats, err := executor.ApplyUpdates(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, ApplyStats{Attempted: 1, Succeeded: 1}, stats)
	// The create action is never touched by the update pass.
	assert.Equal(t, models.VerdictCreate, plan.Actions[0].Verdict)
}

func TestApplyUpdates_StripAndRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(models.SyncAction{
		SourceID: "ep-1", SourceName: "HOST-A", Verdict: models.VerdictUpdate,
		AssetID: "a-1",
		Fields:  map[string]string{"name": "HOST-A", "processor_name": "i7-1185G7"},
	})

	gomock.InOrder(
		target.EXPECT().
			UpdateAsset(gomock.Any(), "a-1",
				map[string]string{"name": "HOST-A", "processor_name": "i7-1185G7"}).
			Return(&rejectionError{fields: []string{"processor_name"}}),
		target.EXPECT().
			UpdateAsset(gomock.Any(), "a-1", map[string]string{"name": "HOST-A"}).
			Return(nil),
	)

	executor := NewExecutor(target, logger.NewTestLogger())

	stats, err := executor.ApplyUpdates(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Succeeded)
}

func TestApplyUpdates_MissingTargetIDIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := NewMockTargetClient(ctrl)

	plan := createPlan(models.SyncAction{
		SourceID: "ep-1", Verdict: models.VerdictUpdate,
		Fields: map[string]string{"name": "HOST-A"},
	})

	executor := NewExecutor(target, logger.NewTestLogger())

	_, err := executor.ApplyUpdates(context.Background(), plan)
	assert.ErrorIs(t, err, ErrUpdateWithoutTargetID)
}
