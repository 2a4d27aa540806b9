// Package goLogin is the session validity and step-up authentication
// orchestrator for a hosted login application. It decides, for a session
// carrying any mix of verified factors (password, passkey, TOTP, OTP,
// security key, external IdP), whether the login may complete, which factor
// must be collected next, and where to redirect the browser. Because no
// server-side session storage is available to this tier, cached session
// references live in a single signed cookie managed by the cookie package.
//
// The package is designed for stateless per-request workloads: Engine
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build], and the only mutable state is the cookie itself,
// which round-trips through the client.
//
// # Architecture boundaries
//
// goLogin is the public surface. It exposes [Engine], [Builder], [Config],
// the [IdentityAPI] contract, and value types (CheckResult, Action,
// Redirect, etc.). The identity platform itself is an external collaborator
// reached only through [IdentityAPI]; this package performs no credential
// verification, WebAuthn ceremony, or OTP cryptography of its own.
//
// # What this package must NOT do
//
//   - Render pages or own URLs beyond path constants and query parameters.
//   - Cache tenant settings or auth-method catalogs across requests.
//   - Treat a failed settings fetch as a satisfied policy check.
package goLogin
