package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// client is a minimal HTTP client against the chart-tiles adapter
// surface (spec.md §4.G / §6).
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) createJob(providerID string, body any) (jobSnapshot, error) {
	var snap jobSnapshot
	buf, err := json.Marshal(body)
	if err != nil {
		return snap, err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/chart-tiles/cache/%s", c.baseURL, providerID), bytes.NewReader(buf))
	if err != nil {
		return snap, err
	}
	req.Header.Set("Content-Type", "application/json")
	// lets a retried seed command after a dropped connection avoid
	// double-submitting the same job
	req.Header.Set("Idempotency-Key", uuid.NewString())
	return snap, c.doJSON(req, &snap)
}

func (c *client) listJobs() ([]jobSnapshot, error) {
	var out []jobSnapshot
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/chart-tiles/cache/jobs", nil)
	if err != nil {
		return nil, err
	}
	return out, c.doJSON(req, &out)
}

func (c *client) controlJob(id int64, action string) (jobSnapshot, error) {
	var snap jobSnapshot
	buf, _ := json.Marshal(map[string]string{"action": action})
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/chart-tiles/cache/jobs/%d", c.baseURL, id), bytes.NewReader(buf))
	if err != nil {
		return snap, err
	}
	req.Header.Set("Content-Type", "application/json")
	return snap, c.doJSON(req, &snap)
}

func (c *client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("seedctl: server returned %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}

// jobSnapshot mirrors jobs.Snapshot's wire shape without importing the
// server's internal packages, since seedctl only ever sees it over HTTP.
type jobSnapshot struct {
	ID              int64   `json:"id"`
	Type            string  `json:"type"`
	State           string  `json:"state"`
	Status          string  `json:"status"`
	ProviderID      string  `json:"providerId"`
	AreaDescription string  `json:"areaDescription"`
	TotalTiles      int64   `json:"totalTiles"`
	DownloadedTiles int64   `json:"downloadedTiles"`
	CachedTiles     int64   `json:"cachedTiles"`
	FailedTiles     int64   `json:"failedTiles"`
	DeletedTiles    int64   `json:"deletedTiles"`
	Progress        float64 `json:"progress"`
}
