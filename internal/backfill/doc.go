// Package backfill implements the catch-up fetcher.
//
// The fetcher:
//   - Runs once per established session, covering the gap since the
//     account's last connection
//   - Pulls a bounded page of recent mentions over REST
//   - Dedupes by author id before evaluation, since conversations commonly
//     carry many mentions per sender; the first occurrence in the
//     newest-first result set wins, so each sender's freshest record is
//     the one evaluated
//   - Is best effort: a failed query never blocks the live stream
package backfill
