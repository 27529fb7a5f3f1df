// Package metrics records run outcomes for the publishing automation.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so metrics stay optional:
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	v := verify.New(cfg, src, prober, verify.WithRecorder(rec))
//
// One-shot CLI runs push the registry to a Pushgateway when one is
// configured; the long-running scheduler serves it over HTTP instead.
package metrics
