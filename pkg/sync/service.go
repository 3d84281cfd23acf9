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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
	"github.com/dmhtech/assetsync/pkg/store"
)

// Progress is one status update emitted while a run is in flight.
type Progress struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Done    int    `json:"done,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// RunOptions selects what a run does beyond fetching and planning.
type RunOptions struct {
	// FetchOnly stops after the inventories are cached.
	FetchOnly bool
	// UseCache plans against the cached inventories instead of fetching.
	UseCache bool
	// Apply executes the plan's create actions.
	Apply bool
	// ApplyUpdates additionally executes the plan's update actions.
	ApplyUpdates bool
}

// RunResult is the final outcome of one run.
type RunResult struct {
	RunID   string             `json:"run_id"`
	Plan    *models.SyncPlan   `json:"plan,omitempty"`
	Summary models.SyncSummary `json:"summary"`
	Created ApplyStats         `json:"created,omitempty"`
	Updated ApplyStats         `json:"updated,omitempty"`
	Err     error              `json:"-"`
}

// Service orchestrates a full reconciliation run: fetch both inventories,
// cache them, plan, and optionally apply. The work happens on a dedicated
// goroutine; callers consume progress and the result over channels so an
// interactive frontend is never blocked.
type Service struct {
	config   Config
	source   SourceClient
	target   TargetClient
	reader   TargetReader
	cache    Cache
	executor *Executor
	logger   logger.Logger
}

// NewService wires a service from its collaborators.
func NewService(config Config, source SourceClient, target TargetClient,
	reader TargetReader, cache Cache, log logger.Logger) *Service {
	return &Service{
		config:   config,
		source:   source,
		target:   target,
		reader:   reader,
		cache:    cache,
		executor: NewExecutor(target, log),
		logger:   log.WithComponent("sync"),
	}
}

// Run starts a reconciliation run on a worker goroutine. The progress
// channel closes when the run finishes; the result channel then yields
// exactly one RunResult.
func (s *Service) Run(ctx context.Context, opts RunOptions) (<-chan Progress, <-chan RunResult) {
	progress := make(chan Progress, 16)
	result := make(chan RunResult, 1)

	go func() {
		defer close(progress)
		defer close(result)

		result <- s.run(ctx, opts, progress)
	}()

	return progress, result
}

func (s *Service) run(ctx context.Context, opts RunOptions, progress chan<- Progress) RunResult {
	res := RunResult{RunID: uuid.NewString()}

	run := &store.SyncRun{
		RunID:     res.RunID,
		StartedAt: time.Now().UTC(),
		DryRun:    !opts.Apply && !opts.ApplyUpdates,
	}
	if err := s.cache.SaveRun(run); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record run start")
	}

	res.Err = s.runStages(ctx, opts, progress, &res)

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Total = res.Summary.Total
	run.Created = res.Created.Succeeded
	run.Updated = res.Updated.Succeeded
	run.Skipped = res.Summary.ByVerdict[models.VerdictSkip]
	run.Failed = len(res.Summary.Errors)

	if err := s.cache.SaveRun(run); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record run completion")
	}

	if res.Err != nil {
		s.logger.Error().Str("run_id", res.RunID).Err(res.Err).Msg("Sync run failed")
	} else {
		s.logger.Info().
			Str("run_id", res.RunID).
			Int("total", run.Total).
			Int("created", run.Created).
			Int("updated", run.Updated).
			Int("skipped", run.Skipped).
			Int("failed", run.Failed).
			Msg("Sync run finished")
	}

	return res
}

func (s *Service) runStages(ctx context.Context, opts RunOptions,
	progress chan<- Progress, res *RunResult) error {
	devices, assets, err := s.loadInventories(ctx, opts, progress)
	if err != nil {
		return err
	}

	if opts.FetchOnly {
		return nil
	}

	s.report(progress, Progress{
		Stage:   "plan",
		Message: "Computing sync plan",
		Total:   len(devices),
	})

	planner := NewPlanner(store.NewAssetIndex(assets), s.logger)

	plan, err := planner.Plan(ctx, devices)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	res.Plan = plan

	if opts.Apply && !s.config.DryRun {
		s.report(progress, Progress{Stage: "apply", Message: "Creating missing assets"})

		res.Created, err = s.executor.Apply(ctx, plan)
		if err != nil {
			res.Summary = plan.Summarize()
			return fmt.Errorf("apply aborted: %w", err)
		}
	}

	if opts.ApplyUpdates && !s.config.DryRun {
		s.report(progress, Progress{Stage: "update", Message: "Updating matched assets"})

		res.Updated, err = s.executor.ApplyUpdates(ctx, plan)
		if err != nil {
			res.Summary = plan.Summarize()
			return fmt.Errorf("update pass aborted: %w", err)
		}
	}

	res.Summary = plan.Summarize()

	return nil
}

func (s *Service) loadInventories(ctx context.Context, opts RunOptions,
	progress chan<- Progress) ([]models.Device, []models.Asset, error) {
	if opts.UseCache {
		devices, err := s.cache.ListDevices()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read cached devices: %w", err)
		}

		assets, err := s.cache.ListAssets()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read cached assets: %w", err)
		}

		s.report(progress, Progress{
			Stage:   "cache",
			Message: fmt.Sprintf("Loaded %d devices and %d assets from cache", len(devices), len(assets)),
		})

		return devices, assets, nil
	}

	s.report(progress, Progress{Stage: "fetch", Message: "Fetching source devices"})

	devices, err := s.fetchDevices(ctx, progress)
	if err != nil {
		return nil, nil, err
	}

	s.report(progress, Progress{Stage: "fetch", Message: "Fetching target assets"})

	assets, err := s.reader.ListAssets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("target fetch failed: %w", err)
	}

	if err := s.cache.ReplaceAssets(assets); err != nil {
		return nil, nil, fmt.Errorf("failed to cache assets: %w", err)
	}

	s.report(progress, Progress{
		Stage:   "fetch",
		Message: fmt.Sprintf("Fetched %d assets", len(assets)),
		Done:    len(assets),
		Total:   len(assets),
	})

	return devices, assets, nil
}

// fetchDevices lists the source inventory and fetches the detail record
// for every endpoint not already cached, persisting each one as it
// arrives. An interrupted run resumes where it stopped: cached endpoints
// are skipped on the next pass instead of refetched.
func (s *Service) fetchDevices(ctx context.Context, progress chan<- Progress) ([]models.Device, error) {
	listing, err := s.source.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("source fetch failed: %w", err)
	}

	var fetched, skipped int

	for _, entry := range listing {
		id := entry.ID()
		if id == "" {
			s.logger.Warn().Msg("Skipping source record without an endpoint id")
			continue
		}

		cached, err := s.cache.HasDevice(id)
		if err != nil {
			return nil, fmt.Errorf("failed to check device cache: %w", err)
		}

		if cached {
			skipped++
			continue
		}

		detail, err := s.source.GetDeviceDetail(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			s.logger.Warn().Str("endpoint_id", id).Err(err).
				Msg("Failed to fetch device detail")

			continue
		}

		// The detail view does not always echo the endpoint id.
		if detail.ID() == "" {
			detail["endpointId"] = id
		}

		if err := s.cache.SaveDevice(detail); err != nil {
			return nil, fmt.Errorf("failed to cache device: %w", err)
		}

		fetched++

		s.report(progress, Progress{
			Stage:   "fetch",
			Message: fmt.Sprintf("Fetched device %s", id),
			Done:    fetched + skipped,
			Total:   len(listing),
		})
	}

	s.report(progress, Progress{
		Stage:   "fetch",
		Message: fmt.Sprintf("Fetched %d devices (%d already cached)", fetched, skipped),
		Done:    len(listing),
		Total:   len(listing),
	})

	return s.cache.ListDevices()
}

// report sends a progress update without ever blocking the worker: a
// slow or absent consumer drops updates rather than stalling the run.
func (s *Service) report(progress chan<- Progress, p Progress) {
	select {
	case progress <- p:
	default:
	}
}
