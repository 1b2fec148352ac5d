// Package metrics exposes store, runtime and session activity as
// Prometheus metrics.
//
// A Metrics value implements stream.Observer and runtime.Observer, so it
// can be attached to bindings and roots directly:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("app"))
//
//	counter := streamstore.CreateRecord(nil, streamstore.WithObserver(m))
//	root, err := runtime.Mount(app, runtime.WithObserver(m))
//
// Metrics collected:
//   - streamstore_store_updates_total: updates by store name
//   - streamstore_store_update_duration_seconds: time to merge and notify
//   - streamstore_store_listeners: active listeners by store name
//   - streamstore_flushes_total: runtime flushes that rendered something
//   - streamstore_flush_passes: render passes per flush
//   - streamstore_components_rendered_total: component renders during flushes
//   - streamstore_render_errors_total: failed renders by error code
//   - streamstore_active_sessions: open live sessions
//   - streamstore_frames_total: session frames by type and status
package metrics
