package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestPipelineMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"UploadsTotal", UploadsTotal},
		{"PipelineDuration", PipelineDuration},
		{"VariantsGenerated", VariantsGenerated},
		{"CleanupRunsTotal", CleanupRunsTotal},
		{"CleanupFilesRemoved", CleanupFilesRemoved},
		{"FrameExtractionDuration", FrameExtractionDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetrics(t *testing.T) {
	// Must not panic and must leave pre-populated counters at zero.
	InitializeMetrics()

	if got := testutil.ToFloat64(UploadsTotal.WithLabelValues("photo", "success")); got != 0 {
		t.Errorf("UploadsTotal pre-populated with %v, want 0", got)
	}
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(CleanupRunsTotal)
	CleanupRunsTotal.Inc()
	after := testutil.ToFloat64(CleanupRunsTotal)

	if after != before+1 {
		t.Errorf("CleanupRunsTotal = %v after Inc, want %v", after, before+1)
	}
}
