// Package metrics provides Prometheus metrics for the battery status daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cptspacemanspiff/batstat/internal/powersupply"
)

var (
	// BatteryPercent is the combined charge level of all batteries
	BatteryPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batstat_battery_percent",
		Help: "Combined battery charge level in percent",
	})

	// BatteryKnown is 1 when BatteryPercent holds a real reading
	BatteryKnown = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batstat_battery_known",
		Help: "Whether a battery reading is available (1) or not (0)",
	})

	// Batteries tracks how many batteries produced a valid record
	Batteries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batstat_batteries",
		Help: "Number of batteries with complete data in the last scan",
	})

	// RefreshTotal counts every refresh attempt
	RefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batstat_refresh_total",
		Help: "Total number of sysfs refresh attempts",
	})

	// RefreshErrors counts refreshes that failed with an I/O error
	RefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batstat_refresh_errors_total",
		Help: "Total number of failed sysfs refreshes",
	})

	// RefreshDuration tracks how long a full sysfs scan takes
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "batstat_refresh_duration_seconds",
		Help:    "Duration of a full sysfs scan in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveRefresh records one refresh. After a failed refresh the gauges keep
// describing the last good status.
func ObserveRefresh(s *powersupply.Status, err error, took time.Duration) {
	RefreshTotal.Inc()
	RefreshDuration.Observe(took.Seconds())
	if err != nil {
		RefreshErrors.Inc()
		return
	}
	SetStatus(s)
}

// SetStatus publishes s on the gauges.
func SetStatus(s *powersupply.Status) {
	Batteries.Set(float64(len(s.Batteries)))
	pct, ok := s.Percent()
	if !ok {
		BatteryKnown.Set(0)
		BatteryPercent.Set(0)
		return
	}
	BatteryKnown.Set(1)
	BatteryPercent.Set(float64(pct))
}
