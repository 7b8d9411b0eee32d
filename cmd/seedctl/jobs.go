package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List and control running jobs",
	}
	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsControlCommand("stop"))
	cmd.AddCommand(newJobsControlCommand("remove"))
	return cmd
}

func newJobsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			c := newClient(serverURL)
			snaps, err := c.listJobs()
			if err != nil {
				return err
			}
			for _, s := range snaps {
				handled := s.DownloadedTiles + s.CachedTiles + s.FailedTiles + s.DeletedTiles
				color.Yellow("[%d] %s/%s %s (%.1f%%) %s/%s tiles", s.ID, s.ProviderID, s.Type, s.Status, s.Progress*100,
					humanize.Comma(handled), humanize.Comma(s.TotalTiles))
			}
			return nil
		},
	}
}

func newJobsControlCommand(action string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s [id]", action),
		Short: fmt.Sprintf("%s a job", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			c := newClient(serverURL)
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return err
			}
			snap, err := c.controlJob(id, action)
			if err != nil {
				return err
			}
			color.Green("job %d now %s", snap.ID, snap.State)
			return nil
		},
	}
}
