// Package sampler implements the candidate sampler.
//
// The sampler:
//   - Ticks every second and asks the store for a random batch of
//     eligible accounts (active, policy enabled, not already connected)
//   - Hands each candidate to the supervisor, which opens a session
//     unless one already exists
//   - Rate-limits connection opens so a mass disconnect does not storm
//     the platform
package sampler
