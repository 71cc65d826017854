// Package audit relays authentication events to a sink without blocking the
// request path.
//
// The package only buffers and delivers. Which events exist, and when they
// fire, is decided by the strategies and the accounts service.
package audit
