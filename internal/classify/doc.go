// Package classify implements the stream event classifier.
//
// The classifier:
//   - Parses raw stream frames into typed event variants
//   - Applies a fixed priority: keepalive, disconnect, warning,
//     state change, mention
//   - Never attributes a reshare's text to the resharer
//   - Drops malformed frames without affecting the connection
package classify
