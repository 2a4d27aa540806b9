// Package cookie implements the bounded multi-session cookie store used by
// the login tier. No server-side session storage is available to this tier,
// so a single signed, http-only cookie carries a flat list of lightweight
// session records. The store enforces a fixed byte budget on the serialized
// cookie: when an insert would exceed it, the oldest record of the current
// list is evicted and the write retried, so the newest record always wins a
// size conflict.
//
// The store never touches the network. It reads and writes through the [Jar]
// interface; [HTTPJar] binds a store to one request/response pair and
// [MemJar] backs tests.
package cookie
