// Package liquiddemocracy implements anonymous ranked voting with transitive
// proxy delegation.
//
// Layering:
// - domain: RightToVote, Delegation, Ballot, Poll entities; hashing and the ranked pairs tally
// - application: commands/queries/workers using explicit ports
// - ports: repository, transaction, clock and notification boundaries
// - adapters: concrete HTTP, memory, postgres, cache and event implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - RightToVote ids never leave the module; DTOs expose checksums only.
// - Every mutating use-case runs inside one ports.Transactor unit.
package liquiddemocracy
