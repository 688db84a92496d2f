package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seisworks/seisfetch/internal/fdsn"
)

var (
	availNetwork    string
	availStation    string
	availDatacenter string
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Show the archived time extent of a station's channels",
	Long: "Query the availability service of a datacenter for the earliest and " +
		"latest archived data of the matching channels. Wildcards are allowed " +
		"in the network and station codes.",
	RunE: runAvailability,
}

func init() {
	availabilityCmd.Flags().StringVarP(&availNetwork, "network", "n", "", "network code, e.g. IU")
	availabilityCmd.Flags().StringVarP(&availStation, "station", "s", "", "station code, e.g. ANMO or TX*")
	availabilityCmd.Flags().StringVarP(&availDatacenter, "datacenter", "d", "IRIS", "datacenter short name or service root URL")
	_ = availabilityCmd.MarkFlagRequired("network")
	_ = availabilityCmd.MarkFlagRequired("station")
	rootCmd.AddCommand(availabilityCmd)
}

func runAvailability(cmd *cobra.Command, args []string) error {
	root := availDatacenter
	if !strings.Contains(root, "://") {
		mapped, ok := fdsn.Datacenters[strings.ToUpper(root)]
		if !ok {
			return fmt.Errorf("unknown datacenter %q", availDatacenter)
		}
		root = mapped
	}

	client, closeClient := newFDSNClient()
	defer closeClient()

	extents, err := client.AvailabilityExtent(cmd.Context(), root, availNetwork, availStation)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range extents {
		loc := e.Location
		if loc == "" {
			loc = "--"
		}
		fmt.Fprintf(out, "%-2s %-5s %-2s %-3s  %s .. %s\n",
			e.Network, e.Station, loc, e.Channel,
			e.Earliest.UTC().Format("2006-01-02T15:04:05"),
			e.Latest.UTC().Format("2006-01-02T15:04:05"))
	}
	if earliest, latest, ok := fdsn.Span(extents); ok {
		fmt.Fprintf(out, "span: %s .. %s\n",
			earliest.UTC().Format("2006-01-02T15:04:05"),
			latest.UTC().Format("2006-01-02T15:04:05"))
	}
	return nil
}
