package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var minZoom, maxZoom int
	var bbox []float64
	var refetch, exportMBTiles bool

	cmd := &cobra.Command{
		Use:   "seed [provider]",
		Short: "Create and watch a seed job for a bounding box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			c := newClient(serverURL)

			if len(bbox) != 4 {
				return fmt.Errorf("--bbox requires exactly 4 values: minLon,minLat,maxLon,maxLat")
			}
			body := map[string]any{
				"bbox":    bbox,
				"minZoom": minZoom,
				"maxZoom": maxZoom,
				"action":  "seed",
				"options": map[string]bool{"refetch": refetch, "mbtiles": exportMBTiles},
			}
			snap, err := c.createJob(args[0], body)
			if err != nil {
				return err
			}
			color.Green("created job %d for provider %s", snap.ID, args[0])
			return watchJob(c, snap.ID)
		},
	}

	cmd.Flags().IntVar(&minZoom, "min-zoom", 0, "minimum zoom")
	cmd.Flags().IntVar(&maxZoom, "max-zoom", 10, "maximum zoom")
	cmd.Flags().Float64SliceVar(&bbox, "bbox", nil, "minLon,minLat,maxLon,maxLat")
	cmd.Flags().BoolVar(&refetch, "refetch", false, "bypass the cache and always refetch")
	cmd.Flags().BoolVar(&exportMBTiles, "mbtiles", false, "export an MBTiles snapshot on completion")
	return cmd
}

func watchJob(c *client, id int64) error {
	var bar *progressbar.ProgressBar
	for {
		snaps, err := c.listJobs()
		if err != nil {
			return err
		}
		var snap *jobSnapshot
		for i := range snaps {
			if snaps[i].ID == id {
				snap = &snaps[i]
			}
		}
		if snap == nil {
			return fmt.Errorf("seedctl: job %d disappeared from the registry", id)
		}
		if bar == nil {
			bar = progressbar.Default(snap.TotalTiles, snap.Status)
		}
		bar.Describe(snap.Status)
		bar.Set64(snap.DownloadedTiles + snap.CachedTiles + snap.FailedTiles + snap.DeletedTiles)
		if snap.State == "stopped" {
			bar.Finish()
			color.Cyan("job %d finished: %s", id, snap.Status)
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}
