package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seisworks/seisfetch/catalog"
	"github.com/seisworks/seisfetch/core"
	"github.com/seisworks/seisfetch/internal/config"
	"github.com/seisworks/seisfetch/model"
)

var planJobFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the request plan for a job without downloading anything",
	Long: "Read the job's catalog, compute the per-annulus request windows for " +
		"every event, and print them. Useful to sanity-check phase and radius " +
		"settings before committing to a download.",
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planJobFile, "job", "j", "", "job file (YAML)")
	_ = planCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	job, err := config.LoadJob(planJobFile)
	if err != nil {
		return err
	}

	events, err := catalog.Read(job.Catalog)
	if err != nil {
		return err
	}

	tt, err := travelTimeModel(job.Model)
	if err != nil {
		return err
	}
	planner := core.NewPlanner(tt)
	wc := job.WindowConfig()

	out := cmd.OutOrStdout()
	for _, ev := range events {
		origin, ok := ev.PreferredOriginOrFirst()
		if !ok {
			continue
		}

		units, err := planner.Plan(origin, wc)
		if err != nil {
			return fmt.Errorf("planning event %s: %w", model.EventID(origin), err)
		}

		fmt.Fprintf(out, "event %s  origin %s  (%.4f, %.4f) depth %.1f km  units %d\n",
			model.EventID(origin), origin.Time.UTC().Format("2006-01-02 15:04:05"),
			origin.Latitude, origin.Longitude, origin.DepthKm, len(units))

		for _, unit := range units {
			_, _, minRadius, maxRadius, _ := unit.Domain.Circle()
			fmt.Fprintf(out, "  %6.2f - %6.2f deg  %s .. %s\n",
				minRadius, maxRadius,
				unit.Start.UTC().Format("2006-01-02T15:04:05"),
				unit.End.UTC().Format("2006-01-02T15:04:05"))
		}
	}
	return nil
}
