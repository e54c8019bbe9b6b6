// Package identity generates time-ordered unique identifiers.
//
// Identifiers are 128-bit version 1 UUIDs in the canonical lower-case
// 8-4-4-4-12 form:
//
//	id := identity.New() // "1ee9a0c4-5f1e-11ef-b3f4-4bd1c7e9a2f0"
//
// The random fields come from a PCG generator (math/rand/v2). Use
// NewGenerator(WithSeed(n), WithClock(...)) for reproducible sequences in
// tests.
package identity
