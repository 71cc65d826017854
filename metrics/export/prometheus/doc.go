// Package prometheus exposes userauth metrics through a client_golang
// [prom.Collector].
//
// Counters are published as userauth_*_total and the resolve latency as the
// userauth_resolve_latency_seconds histogram. Nothing is registered in the
// global registry; callers register the Collector or mount [Handler].
package prometheus
