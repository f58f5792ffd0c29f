// Package usercache keeps a Redis snapshot of remote actors seen on the
// wire. Entries are written best-effort with a TTL; a cache failure never
// affects stream processing.
package usercache
