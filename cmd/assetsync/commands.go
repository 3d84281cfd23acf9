package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmhtech/assetsync/pkg/models"
	"github.com/dmhtech/assetsync/pkg/sync"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull both inventories into the local cache",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		res := runService(cmd.Context(), rt.newService(), sync.RunOptions{FetchOnly: true})
		if res.Err != nil {
			return res.Err
		}

		devices, _ := rt.cache.CountDevices()
		assets, _ := rt.cache.CountAssets()
		fmt.Printf("Cached %d devices and %d assets\n", devices, assets)

		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute and print the sync plan",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cached, _ := cmd.Flags().GetBool("cached")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		res := runService(cmd.Context(), rt.newService(), sync.RunOptions{UseCache: cached})
		if res.Err != nil {
			return res.Err
		}

		printPlan(res.Plan)
		printSummary(res)

		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Execute the plan's create actions against the CMDB",
	Long: `Execute the sync plan. By default only missing assets are created;
pass --updates to also push field updates to matched assets.

--dry-run defaults to true: the plan is computed and printed but
nothing is written. Pass --dry-run=false to actually apply.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cached, _ := cmd.Flags().GetBool("cached")
		updates, _ := cmd.Flags().GetBool("updates")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		// Either the flag or the config can force a dry run; the target
		// client gets the same verdict as a second safety.
		rt.cfg.DryRun = rt.cfg.DryRun || dryRun

		if rt.cfg.DryRun {
			fmt.Fprintln(os.Stderr, "DRY RUN: no changes will be written")
		}

		opts := sync.RunOptions{UseCache: cached, Apply: true, ApplyUpdates: updates}

		res := runService(cmd.Context(), rt.newService(), opts)
		if res.Err != nil {
			return res.Err
		}

		printSummary(res)

		if !rt.cfg.DryRun {
			fmt.Printf("Created %d/%d, updated %d/%d\n",
				res.Created.Succeeded, res.Created.Attempted,
				res.Updated.Succeeded, res.Updated.Attempted)
		}

		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the sync plan as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cached, _ := cmd.Flags().GetBool("cached")
		output, _ := cmd.Flags().GetString("output")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		res := runService(cmd.Context(), rt.newService(), sync.RunOptions{UseCache: cached})
		if res.Err != nil {
			return res.Err
		}

		out := os.Stdout

		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			out = f
		}

		if err := sync.WriteCSV(out, res.Plan); err != nil {
			return err
		}

		if output != "" {
			fmt.Fprintf(os.Stderr, "Wrote %d actions to %s\n", len(res.Plan.Actions), output)
		}

		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache contents and recent run history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("runs")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		devices, err := rt.cache.CountDevices()
		if err != nil {
			return err
		}

		assets, err := rt.cache.CountAssets()
		if err != nil {
			return err
		}

		fmt.Printf("Cache: %d devices, %d assets\n", devices, assets)

		runs, err := rt.cache.ListRuns(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		fmt.Println("\nRecent runs:")

		for _, run := range runs {
			state := "running"
			if run.FinishedAt != nil {
				state = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
			}

			mode := ""
			if run.DryRun {
				mode = " (dry run)"
			}

			fmt.Printf("  %s  %s  %s%s  total=%d created=%d updated=%d skipped=%d failed=%d\n",
				run.StartedAt.Format("2006-01-02 15:04:05"), run.RunID[:8], state, mode,
				run.Total, run.Created, run.Updated, run.Skipped, run.Failed)
		}

		return nil
	},
}

func init() {
	planCmd.Flags().Bool("cached", false, "plan against the cached inventories instead of fetching")

	applyCmd.Flags().Bool("cached", false, "plan against the cached inventories instead of fetching")
	applyCmd.Flags().Bool("updates", false, "also apply field updates to matched assets")
	applyCmd.Flags().Bool("dry-run", true, "compute the plan but write nothing")

	exportCmd.Flags().Bool("cached", true, "plan against the cached inventories instead of fetching")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	statusCmd.Flags().Int("runs", 10, "number of recent runs to show")
}

func printPlan(plan *models.SyncPlan) {
	for i := range plan.Actions {
		action := &plan.Actions[i]

		switch action.Verdict {
		case models.VerdictUpdate:
			fmt.Printf("%-7s %-30s %-24s -> %s (%s)\n",
				action.Verdict, action.SourceName, action.CIType, action.AssetID, action.MatchReason)
		case models.VerdictSkip:
			fmt.Printf("%-7s %-30s %s\n", action.Verdict, action.SourceName, action.MatchReason)
		default:
			fmt.Printf("%-7s %-30s %-24s (%s)\n",
				action.Verdict, action.SourceName, action.CIType, action.MatchReason)
		}
	}
}

func printSummary(res sync.RunResult) {
	fmt.Printf("\nPlan: %d devices\n", res.Summary.Total)

	verdicts := make([]string, 0, len(res.Summary.ByVerdict))
	for verdict := range res.Summary.ByVerdict {
		verdicts = append(verdicts, string(verdict))
	}

	sort.Strings(verdicts)

	for _, verdict := range verdicts {
		fmt.Printf("  %-8s %d\n", verdict, res.Summary.ByVerdict[models.Verdict(verdict)])
	}

	if len(res.Summary.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(res.Summary.Errors))

		for _, e := range res.Summary.Errors {
			fmt.Printf("  %s (%s): %s\n", e.SourceName, e.SourceID, e.Message)
		}
	}
}
