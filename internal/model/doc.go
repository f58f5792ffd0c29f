// Package model defines shared data types used across the blockwarden service.
//
// Conventions:
//   - Timestamps: time.Time, parsed from RFC3339 on the wire; the zero value
//     means the field was absent
//   - IDs: platform-assigned string ids for accounts and actors
//   - Causes: string enums matching the action-queue schema
package model
