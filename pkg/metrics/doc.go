// Package metrics exposes Prometheus instrumentation for the reconciler.
//
// A Collector is created once per registry and shared by the pool, the
// applier, and components. All methods are safe on a nil *Collector, so
// instrumentation is optional everywhere.
//
// Metrics collected (namespace "tablenode" by default):
//   - renders_total: render ticks by status (ok, diff_error, apply_error, skipped)
//   - render_duration_seconds: duration of a render tick
//   - patch_ops_total: applied patch ops by op
//   - mutations_total: staged mutations by status (committed, failed, panicked, rejected)
//   - pool_acquires_total: pool acquisitions by type and result (reused, created)
//   - pool_evictions_total: retired views destroyed for exceeding a cap
//   - pool_retired_views: retired views currently held, by type
//   - pending_exits: removed views waiting on an exit animation
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("demo"))
//	p := pool.New(pool.WithMetrics(m))
package metrics
