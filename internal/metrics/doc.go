// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Live and cooling stream sessions
//   - Frames received by classified kind
//   - Stream terminations by reason
//   - Mentions evaluated and candidates enqueued by cause
//   - Block-list reconciliation runs
package metrics
