// Package rate throttles failed logins with fixed-window counters.
//
// Counters live either in process memory or in Redis, so several API
// replicas sharing one Redis see the same budget.
package rate
