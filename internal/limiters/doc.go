// Package limiters contains the Redis-backed front-tier throttles. They are
// advisory: the authoritative lockout policy is enforced by the identity
// API, these limiters only shed repeated attempts before they cost a remote
// round-trip.
package limiters
