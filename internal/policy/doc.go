// Package policy implements the block decision engine.
//
// The engine:
//   - Evaluates a mention's author against the age and follower thresholds
//   - Reloads the recipient's policy flags immediately before deciding
//   - Enqueues at most one block candidate per mention; the age cause
//     wins when both thresholds are met
package policy
