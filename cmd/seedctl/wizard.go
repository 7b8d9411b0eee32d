package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errBadBBox = errors.New("seedctl: bbox must be four comma-separated numbers: minLon,minLat,maxLon,maxLat")

func newWizardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Interactively build and submit a seed or delete job",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			return runWizard(serverURL)
		},
	}
}

func runWizard(serverURL string) error {
	answers := struct {
		Provider string
		Action   string
		BBox     string
		MinZoom  string
		MaxZoom  string
		Refetch  bool
		MBTiles  bool
	}{}

	questions := []*survey.Question{
		{
			Name:     "provider",
			Prompt:   &survey.Input{Message: "Provider identifier:"},
			Validate: survey.Required,
		},
		{
			Name: "action",
			Prompt: &survey.Select{
				Message: "Action:",
				Options: []string{"seed", "delete"},
				Default: "seed",
			},
		},
		{
			Name:     "bbox",
			Prompt:   &survey.Input{Message: "Bounding box (minLon,minLat,maxLon,maxLat):"},
			Validate: survey.Required,
		},
		{
			Name:    "minZoom",
			Prompt:  &survey.Input{Message: "Min zoom:", Default: "0"},
			Default: "0",
		},
		{
			Name:    "maxZoom",
			Prompt:  &survey.Input{Message: "Max zoom:", Default: "10"},
			Default: "10",
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	if answers.Action == "seed" {
		survey.AskOne(&survey.Confirm{Message: "Refetch (bypass cache)?"}, &answers.Refetch)
		survey.AskOne(&survey.Confirm{Message: "Export MBTiles snapshot on completion?"}, &answers.MBTiles)
	}

	coords, err := parseBBoxCSV(answers.BBox)
	if err != nil {
		return err
	}
	minZoom, _ := strconv.Atoi(answers.MinZoom)
	maxZoom, _ := strconv.Atoi(answers.MaxZoom)

	c := newClient(serverURL)
	body := map[string]any{
		"bbox":    coords,
		"minZoom": minZoom,
		"maxZoom": maxZoom,
		"action":  answers.Action,
		"options": map[string]bool{"refetch": answers.Refetch, "mbtiles": answers.MBTiles},
	}
	snap, err := c.createJob(answers.Provider, body)
	if err != nil {
		return err
	}
	color.Green("created job %d", snap.ID)
	return watchJob(c, snap.ID)
}

func parseBBoxCSV(s string) ([4]float64, error) {
	var out [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return out, errBadBBox
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, errBadBBox
		}
		out[i] = v
	}
	return out, nil
}
