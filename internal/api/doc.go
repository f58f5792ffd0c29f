// Package api provides the platform REST client used alongside the event stream.
//
// Endpoints:
//   - GET /mentions        recent posts mentioning the token's account
//   - GET /account/verify  credential check, 401/403 means revoked or gone
//   - GET /blocks          cursor-paginated block list
//   - GET /status          platform availability
//
// Every request carries app-level HMAC headers plus the per-account bearer
// token of the tracked account it acts for.
package api
