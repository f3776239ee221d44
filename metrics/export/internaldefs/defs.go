package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// CounterDefs maps every engine counter to its exported name.
var CounterDefs = []CounterDef{
	{ID: goGuard.MetricLoginSuccess, Name: "goguard_login_success_total", Help: "Successful login attempts."},
	{ID: goGuard.MetricLoginFailure, Name: "goguard_login_failure_total", Help: "Failed login attempts."},
	{ID: goGuard.MetricRefreshSuccess, Name: "goguard_refresh_success_total", Help: "Successful refresh operations."},
	{ID: goGuard.MetricRefreshFailure, Name: "goguard_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: goGuard.MetricRefreshRaceAbsorbed, Name: "goguard_refresh_race_absorbed_total", Help: "Refreshes served from the grace window without a second rotation."},
	{ID: goGuard.MetricRefreshLockTimeout, Name: "goguard_refresh_lock_timeout_total", Help: "Refreshes that timed out waiting for their shard lock."},
	{ID: goGuard.MetricIPMismatch, Name: "goguard_ip_mismatch_total", Help: "Session uses from an IP other than the bound one."},
	{ID: goGuard.MetricSessionCreated, Name: "goguard_session_created_total", Help: "Created sessions."},
	{ID: goGuard.MetricSessionInvalidated, Name: "goguard_session_invalidated_total", Help: "Invalidated sessions."},
	{ID: goGuard.MetricLogout, Name: "goguard_logout_total", Help: "Logout operations."},
	{ID: goGuard.MetricAuthorizeDenied, Name: "goguard_authorize_denied_total", Help: "Denied access token validations."},
}

// HistogramDefs maps every engine histogram to its exported name.
var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricAuthorizeLatency, Name: "goguard_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus style.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
