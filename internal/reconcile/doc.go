// Package reconcile refreshes the local block mirror from the platform's
// authoritative block list. Concurrent runs for the same account collapse
// into one flight.
package reconcile
