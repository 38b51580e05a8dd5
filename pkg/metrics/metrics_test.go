package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// value returns the value of the metric family name whose labels match.
func value(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithNamespace("test"))

	c.ObserveRender("ok", 3*time.Millisecond)
	c.ObserveRender("ok", time.Millisecond)
	c.AddPatchOps("Insert", 4)
	c.AddPatchOps("Move", 0)
	c.ObserveMutation("failed")
	c.ObservePoolAcquire("button", true)
	c.ObservePoolAcquire("button", false)
	c.ObservePoolAcquire("button", false)
	c.ObservePoolEviction("card")
	c.SetPoolRetired("card", 3)
	c.SetPendingExits(2)

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"test_renders_total", map[string]string{"status": "ok"}, 2},
		{"test_render_duration_seconds", nil, 2},
		{"test_patch_ops_total", map[string]string{"op": "Insert"}, 4},
		{"test_mutations_total", map[string]string{"status": "failed"}, 1},
		{"test_pool_acquires_total", map[string]string{"type": "button", "result": "created"}, 2},
		{"test_pool_acquires_total", map[string]string{"type": "button", "result": "reused"}, 1},
		{"test_pool_evictions_total", map[string]string{"type": "card"}, 1},
		{"test_pool_retired_views", map[string]string{"type": "card"}, 3},
		{"test_pending_exits", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := value(t, reg, tt.name, tt.labels); got != tt.want {
				t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
			}
		})
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveRender("ok", time.Second)
	c.AddPatchOps("Insert", 1)
	c.ObserveMutation("committed")
	c.ObservePoolAcquire("box", true)
	c.ObservePoolEviction("box")
	c.SetPoolRetired("box", 1)
	c.SetPendingExits(1)
}

func TestOptions(t *testing.T) {
	config := defaultConfig()
	reg := prometheus.NewRegistry()
	for _, opt := range []Option{
		WithNamespace("ns"),
		WithSubsystem("sub"),
		WithConstLabels(prometheus.Labels{"screen": "table"}),
		WithBuckets([]float64{0.1}),
		WithRegistry(reg),
	} {
		opt(&config)
	}

	if config.Namespace != "ns" || config.Subsystem != "sub" || config.ConstLabels["screen"] != "table" ||
		len(config.Buckets) != 1 || config.Registry != reg {
		t.Errorf("config = %+v", config)
	}
}
