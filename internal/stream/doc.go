// Package stream implements the Connection Supervisor component.
//
// The Connection Supervisor:
//   - Holds one WebSocket session per tracked account, never more
//   - Aborts sessions that receive no traffic within the idle window
//   - Holds rate-limited accounts in a cooldown slot before release
//   - Verifies a generation tag before acting on any deferred callback
//   - Routes classified events to the decision engine, the actor cache,
//     and the reconciliation debouncer
package stream
