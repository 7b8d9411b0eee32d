package jobs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	jobTotalTilesDesc = prometheus.NewDesc(
		"chart_tiles_job_total_tiles",
		"Estimated total tiles for a job's region.",
		[]string{"job_id", "provider", "type"}, nil,
	)
	jobDownloadedTilesDesc = prometheus.NewDesc(
		"chart_tiles_job_downloaded_tiles",
		"Tiles fetched from the remote origin by a seed job.",
		[]string{"job_id", "provider", "type"}, nil,
	)
	jobCachedTilesDesc = prometheus.NewDesc(
		"chart_tiles_job_cached_tiles",
		"Tiles a seed job found already present in the store.",
		[]string{"job_id", "provider", "type"}, nil,
	)
	jobFailedTilesDesc = prometheus.NewDesc(
		"chart_tiles_job_failed_tiles",
		"Tiles a seed job could not fetch or store.",
		[]string{"job_id", "provider", "type"}, nil,
	)
	jobDeletedTilesDesc = prometheus.NewDesc(
		"chart_tiles_job_deleted_tiles",
		"Tiles removed by a delete job.",
		[]string{"job_id", "provider", "type"}, nil,
	)
)

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ch <- jobTotalTilesDesc
	ch <- jobDownloadedTilesDesc
	ch <- jobCachedTilesDesc
	ch <- jobFailedTilesDesc
	ch <- jobDeletedTilesDesc
}

// Collect implements prometheus.Collector, emitting one gauge set per
// live job at scrape time. Computing values from List() on every scrape,
// rather than maintaining running gauges updated at each counter
// increment, keeps job.go's hot path free of metrics bookkeeping.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	for _, snap := range r.List() {
		id := strconv.FormatInt(snap.ID, 10)
		ch <- prometheus.MustNewConstMetric(jobTotalTilesDesc, prometheus.GaugeValue, float64(snap.TotalTiles), id, snap.ProviderID, string(snap.Type))
		ch <- prometheus.MustNewConstMetric(jobDownloadedTilesDesc, prometheus.GaugeValue, float64(snap.DownloadedTiles), id, snap.ProviderID, string(snap.Type))
		ch <- prometheus.MustNewConstMetric(jobCachedTilesDesc, prometheus.GaugeValue, float64(snap.CachedTiles), id, snap.ProviderID, string(snap.Type))
		ch <- prometheus.MustNewConstMetric(jobFailedTilesDesc, prometheus.GaugeValue, float64(snap.FailedTiles), id, snap.ProviderID, string(snap.Type))
		ch <- prometheus.MustNewConstMetric(jobDeletedTilesDesc, prometheus.GaugeValue, float64(snap.DeletedTiles), id, snap.ProviderID, string(snap.Type))
	}
}
