// Package debounce implements the reconciliation debouncer.
//
// The debouncer:
//   - Coalesces bursts of block/unblock echoes into one reconciliation
//     call per account per quiet window
//   - Keeps at most one pending timer per account id; a new notification
//     cancels and replaces the prior one
package debounce
