// Package gate guards scanledger's privileged operations.
//
// Two cooperating checks run before any operation reaches the store:
//   - Gate: a declarative validator that walks a per-operation field
//     schema depth-first and returns an allow-listed copy of the
//     payload (unknown fields are dropped, not rejected)
//   - RateLimiter: per-operation sliding-window call ceilings
//
// The path predicates confine caller-supplied file paths to a fixed set
// of user-scoped directories resolved through adrg/xdg. The rate
// limiter is purely in-memory and process-wide: it is a cooperative
// guard against accidental rapid-fire invocation, not a security
// boundary against a hostile caller.
package gate
