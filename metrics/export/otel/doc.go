// Package otel publishes userauth metrics as OpenTelemetry observable
// instruments on a caller-supplied metric.Meter.
//
// Each counter becomes an Int64ObservableCounter. The resolve latency
// histogram becomes one cumulative Int64ObservableGauge keyed by an "le"
// attribute plus a _count gauge. A single callback reads the snapshot on
// every collection.
package otel
