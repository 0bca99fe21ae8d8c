// Package repositories implements session-scoped key/value storage.
//
// A session is one run of the page host, identified by a generated id. Values written in
// a session are visible only to that session, mirroring a browser's sessionStorage.
//
// Implementations:
//   - [MemorySessionStore] : process memory, lost on exit
//   - [SQLiteSessionStore] : rows in the session_storage table created by shared migrations
//   - [BoltSessionStore] : one bbolt bucket per session
//
// [NewSessionStore] picks an implementation from [shared.StorageConfig].
package repositories
