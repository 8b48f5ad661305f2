// Package motd rotates a host's status message ("MOTD").
//
// Startup is synchronous and happens once per process:
//   - Resolver locates or creates the message-list and timer files
//   - LoadMessages / LoadInterval turn them into in-memory state, falling back to defaults
//   - Rotator is scheduled to fire immediately and then at the resolved interval
//
// Files are never re-read after Start. The host is anything that implements Host.
package motd
